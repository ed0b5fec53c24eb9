package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/frahmantamala/vacation-management/internal/core/events"
	"github.com/frahmantamala/vacation-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect vacation events: list the known event types or publish a test event`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test vacation event",
	Long:  `Publish a test event to an in-process event bus and print what subscribers receive`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(args[0])
	},
}

var listEventsCmd = &cobra.Command{
	Use:   "types",
	Short: "List the event types the service publishes",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range knownEventTypes {
			color.Cyan(t)
		}
	},
}

var knownEventTypes = []string{
	events.EventTypeVacationRequested,
	events.EventTypeVacationUpdated,
	events.EventTypeVacationApproved,
	events.EventTypeVacationRejected,
	events.EventTypeVacationDeleted,
	events.EventTypeUserDeleted,
}

var (
	eventRequestID int64
	eventUserID    int64
	eventActorID   int64
	eventStatus    string
)

func buildTestEvent(eventType string) (events.Event, error) {
	switch eventType {
	case events.EventTypeUserDeleted:
		return events.NewUserDeletedEvent(eventUserID, 0), nil
	case events.EventTypeVacationRequested, events.EventTypeVacationUpdated,
		events.EventTypeVacationApproved, events.EventTypeVacationRejected,
		events.EventTypeVacationDeleted:
		return events.NewVacationEvent(eventType, eventRequestID, eventUserID, eventActorID, eventStatus, "", ""), nil
	}
	return nil, fmt.Errorf("unknown event type %q, see 'event types'", eventType)
}

func publishTestEvent(eventType string) error {
	lg := logger.LoggerWrapper()

	event, err := buildTestEvent(eventType)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(lg)
	bus.Subscribe(events.AllEvents, func(ctx context.Context, e events.Event) error {
		payload, err := json.MarshalIndent(e.Payload(), "", "  ")
		if err != nil {
			return err
		}
		color.Green("received %s (%s)", e.EventType(), e.EventID())
		fmt.Println(string(payload))
		return nil
	})

	if err := bus.PublishSync(context.Background(), event); err != nil {
		color.Red("failed to publish event: %v", err)
		return err
	}
	return nil
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventRequestID, "request-id", 1, "vacation request id")
	publishEventCmd.Flags().Int64Var(&eventUserID, "user-id", 4, "owner user id")
	publishEventCmd.Flags().Int64Var(&eventActorID, "actor-id", 2, "acting user id")
	publishEventCmd.Flags().StringVar(&eventStatus, "status", "Pending", "request status carried by the event")

	eventCmd.AddCommand(publishEventCmd)
	eventCmd.AddCommand(listEventsCmd)

	rootCmd.AddCommand(eventCmd)
}
