package internal_test

import (
	"errors"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/vacation-management/internal"
)

var _ = Describe("AppError", func() {
	DescribeTable("IsDenied",
		func(err error, denied bool) {
			Expect(internal.IsDenied(err)).To(Equal(denied))
		},
		Entry("not owner", internal.ErrNotRequestOwner, true),
		Entry("not direct manager", internal.ErrNotDirectManager, true),
		Entry("overlap", internal.ErrOverlappingDates, true),
		Entry("finalized", internal.ErrRequestFinalized, true),
		Entry("date range", internal.ErrInvalidDateRange, true),
		Entry("field validation", internal.NewValidationFieldError("email", "bad", internal.ErrCodeValidationFailed), true),
		Entry("wrapped denial", fmt.Errorf("create: %w", internal.ErrOverlappingDates), true),
		Entry("not found", internal.ErrRequestNotFound, false),
		Entry("invalid operation", internal.ErrAdminUndeletable, false),
		Entry("unauthorized", internal.ErrInvalidPrincipal, false),
		Entry("internal", internal.NewInternalError("boom", nil), false),
		Entry("plain error", errors.New("boom"), false),
	)

	It("classifies not found and invalid operations", func() {
		Expect(internal.IsNotFound(internal.ErrUserNotFound)).To(BeTrue())
		Expect(internal.IsNotFound(internal.ErrAdminUndeletable)).To(BeFalse())
		Expect(internal.IsInvalidOperation(internal.ErrAdminRoleLocked)).To(BeTrue())
		Expect(internal.ErrAdminRoleLocked.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("keeps matching sentinels after adding a cause", func() {
		cause := errors.New("disk full")
		err := internal.ErrOverlappingDates.WithCause(cause)

		Expect(err).To(MatchError(internal.ErrOverlappingDates))
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(internal.ErrOverlappingDates.Cause).To(BeNil())
	})

	It("renders the error envelope without internal fields", func() {
		status, body := internal.ErrUserHasReports.WithDetails(map[string]int{"reports": 2}).ToHTTPResponse()

		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(BeAssignableToTypeOf(internal.Response{}))
		encoded, err := internal.ErrUserHasReports.MarshalJSON()
		Expect(err).NotTo(HaveOccurred())
		Expect(encoded).To(MatchJSON(`{"type":"INVALID_OPERATION","code":"USER_HAS_REPORTS","message":"user still manages other users"}`))
	})
})
