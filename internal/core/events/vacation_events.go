package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeVacationRequested = "vacation.requested"
	EventTypeVacationUpdated   = "vacation.updated"
	EventTypeVacationApproved  = "vacation.approved"
	EventTypeVacationRejected  = "vacation.rejected"
	EventTypeVacationDeleted   = "vacation.deleted"
	EventTypeUserDeleted       = "user.deleted"
)

// VacationEvent describes a lifecycle change of a vacation request.
type VacationEvent struct {
	BaseEvent
	RequestID    int64  `json:"request_id"`
	UserID       int64  `json:"user_id"`
	ActingUserID int64  `json:"acting_user_id"`
	Status       string `json:"status"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

func NewVacationEvent(eventType string, requestID, userID, actingUserID int64, status, startDate, endDate string) *VacationEvent {
	return &VacationEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":     requestID,
				"user_id":        userID,
				"acting_user_id": actingUserID,
				"status":         status,
				"start_date":     startDate,
				"end_date":       endDate,
			},
		},
		RequestID:    requestID,
		UserID:       userID,
		ActingUserID: actingUserID,
		Status:       status,
		StartDate:    startDate,
		EndDate:      endDate,
	}
}

type UserDeletedEvent struct {
	BaseEvent
	UserID          int64 `json:"user_id"`
	RemovedRequests int64 `json:"removed_requests"`
}

func NewUserDeletedEvent(userID, removedRequests int64) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":          userID,
				"removed_requests": removedRequests,
			},
		},
		UserID:          userID,
		RemovedRequests: removedRequests,
	}
}

// SubjectUserID returns the user an event is about, or 0 when it has none.
func SubjectUserID(e Event) int64 {
	switch ev := e.(type) {
	case *VacationEvent:
		return ev.UserID
	case *UserDeletedEvent:
		return ev.UserID
	}
	if data, ok := e.Payload().(map[string]interface{}); ok {
		if id, ok := data["user_id"].(int64); ok {
			return id
		}
	}
	return 0
}
