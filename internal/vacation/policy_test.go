package vacation_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/auth"
	"github.com/frahmantamala/vacation-management/internal/user"
	"github.com/frahmantamala/vacation-management/internal/vacation"
)

func june(day int) vacation.Date {
	return vacation.NewDate(2024, time.June, day)
}

var _ = Describe("Policy", func() {
	var (
		policy       vacation.Policy
		admin        auth.Principal
		manager2     auth.Principal
		manager3     auth.Principal
		collaborator auth.Principal
		owner        *user.User
	)

	BeforeEach(func() {
		policy = vacation.Policy{EnforceTerminalStatus: true}
		admin = auth.Principal{UserID: 1, Role: auth.RoleAdmin}
		manager2 = auth.Principal{UserID: 2, Role: auth.RoleManager}
		manager3 = auth.Principal{UserID: 3, Role: auth.RoleManager}
		collaborator = auth.Principal{UserID: 4, Role: auth.RoleCollaborator}
		owner = &user.User{ID: 4, Role: auth.RoleCollaborator, ManagerID: int64Ptr(2)}
	})

	Describe("Overlaps", func() {
		It("treats touching endpoints as overlapping", func() {
			Expect(vacation.Overlaps(june(10), june(15), june(15), june(20))).To(BeTrue())
			Expect(vacation.Overlaps(june(15), june(20), june(10), june(15))).To(BeTrue())
		})

		It("detects containment", func() {
			Expect(vacation.Overlaps(june(1), june(30), june(10), june(12))).To(BeTrue())
		})

		It("is false for disjoint ranges", func() {
			Expect(vacation.Overlaps(june(10), june(15), june(16), june(20))).To(BeFalse())
			Expect(vacation.Overlaps(june(16), june(20), june(10), june(15))).To(BeFalse())
		})
	})

	Describe("FirstOverlap", func() {
		var candidates []*vacation.VacationRequest

		BeforeEach(func() {
			candidates = []*vacation.VacationRequest{
				{ID: 1, UserID: 4, StartDate: june(1), EndDate: june(5), Status: vacation.StatusRejected},
				{ID: 2, UserID: 4, StartDate: june(10), EndDate: june(15), Status: vacation.StatusApproved},
				{ID: 3, UserID: 4, StartDate: june(20), EndDate: june(25), Status: vacation.StatusPending},
			}
		})

		It("ignores rejected requests", func() {
			Expect(vacation.FirstOverlap(candidates, june(2), june(4), nil)).To(BeNil())
		})

		It("returns the blocking request", func() {
			found := vacation.FirstOverlap(candidates, june(14), june(21), nil)
			Expect(found).NotTo(BeNil())
			Expect(found.ID).To(Equal(int64(2)))
		})

		It("skips the excluded request", func() {
			id := int64(2)
			Expect(vacation.FirstOverlap(candidates, june(11), june(12), &id)).To(BeNil())
		})
	})

	Describe("CheckCreate", func() {
		var existing []*vacation.VacationRequest

		BeforeEach(func() {
			existing = []*vacation.VacationRequest{
				{ID: 1, UserID: 4, StartDate: june(10), EndDate: june(15), Status: vacation.StatusApproved},
			}
		})

		It("denies a request overlapping an approved one", func() {
			err := policy.CheckCreate(collaborator, 4, june(14), june(20), existing)
			Expect(err).To(MatchError(internal.ErrOverlappingDates))
		})

		It("allows the adjacent range", func() {
			Expect(policy.CheckCreate(collaborator, 4, june(16), june(20), existing)).To(Succeed())
		})

		It("denies a collaborator creating for someone else", func() {
			err := policy.CheckCreate(collaborator, 5, june(16), june(20), nil)
			Expect(err).To(MatchError(internal.ErrNotRequestOwner))
		})

		It("lets managers and admins create for anyone", func() {
			Expect(policy.CheckCreate(manager3, 4, june(16), june(20), existing)).To(Succeed())
			Expect(policy.CheckCreate(admin, 4, june(16), june(20), existing)).To(Succeed())
		})

		DescribeTable("denies single-day ranges for every role",
			func(p auth.Principal) {
				err := policy.CheckCreate(p, 4, june(18), june(18), nil)
				Expect(err).To(MatchError(internal.ErrInvalidDateRange))
			},
			Entry("admin", auth.Principal{UserID: 1, Role: auth.RoleAdmin}),
			Entry("manager", auth.Principal{UserID: 2, Role: auth.RoleManager}),
			Entry("collaborator", auth.Principal{UserID: 4, Role: auth.RoleCollaborator}),
		)

		It("reports ownership before overlap and overlap before range", func() {
			Expect(policy.CheckCreate(collaborator, 5, june(15), june(12), existing)).
				To(MatchError(internal.ErrNotRequestOwner))
			Expect(policy.CheckCreate(collaborator, 4, june(15), june(12), existing)).
				To(MatchError(internal.ErrOverlappingDates))
		})
	})

	Describe("CheckUpdate", func() {
		var current *vacation.VacationRequest
		var existing []*vacation.VacationRequest

		BeforeEach(func() {
			current = &vacation.VacationRequest{ID: 1, UserID: 4, StartDate: june(1), EndDate: june(5), Status: vacation.StatusPending}
			existing = []*vacation.VacationRequest{
				current,
				{ID: 2, UserID: 4, StartDate: june(10), EndDate: june(15), Status: vacation.StatusApproved},
			}
		})

		It("ignores the request being updated", func() {
			Expect(policy.CheckUpdate(collaborator, current, june(2), june(6), existing)).To(Succeed())
		})

		It("denies moving onto another request", func() {
			Expect(policy.CheckUpdate(collaborator, current, june(8), june(10), existing)).
				To(MatchError(internal.ErrOverlappingDates))
		})

		It("denies collaborators editing requests of others", func() {
			other := auth.Principal{UserID: 5, Role: auth.RoleCollaborator}
			Expect(policy.CheckUpdate(other, current, june(2), june(6), existing)).
				To(MatchError(internal.ErrNotRequestOwner))
		})

		It("refuses edits of finalized requests", func() {
			current.Status = vacation.StatusApproved
			Expect(policy.CheckUpdate(admin, current, june(2), june(6), existing)).
				To(MatchError(internal.ErrRequestFinalized))
		})

		It("allows edits of finalized requests when the guard is off", func() {
			current.Status = vacation.StatusApproved
			open := vacation.Policy{}
			Expect(open.CheckUpdate(admin, current, june(2), june(6), existing)).To(Succeed())
		})
	})

	Describe("CheckTransition", func() {
		var req *vacation.VacationRequest

		BeforeEach(func() {
			req = &vacation.VacationRequest{ID: 1, UserID: 4, StartDate: june(1), EndDate: june(5), Status: vacation.StatusPending}
		})

		It("lets the direct manager act", func() {
			Expect(policy.CheckTransition(manager2, req, owner)).To(Succeed())
		})

		It("denies other managers", func() {
			Expect(policy.CheckTransition(manager3, req, owner)).To(MatchError(internal.ErrNotDirectManager))
		})

		It("lets admins act on anyone", func() {
			Expect(policy.CheckTransition(admin, req, owner)).To(Succeed())
		})

		It("denies collaborators, even on their own request", func() {
			Expect(policy.CheckTransition(collaborator, req, owner)).To(MatchError(internal.ErrApprovalForbidden))
		})

		It("refuses to move a finalized request", func() {
			req.Status = vacation.StatusRejected
			Expect(policy.CheckTransition(admin, req, owner)).To(MatchError(internal.ErrRequestFinalized))
		})
	})

	Describe("CheckDelete", func() {
		var req *vacation.VacationRequest

		BeforeEach(func() {
			req = &vacation.VacationRequest{ID: 1, UserID: 4, StartDate: june(1), EndDate: june(5), Status: vacation.StatusPending}
		})

		It("lets the owner delete a pending request", func() {
			Expect(policy.CheckDelete(collaborator, req, nil)).To(Succeed())
		})

		It("denies collaborators deleting requests of others", func() {
			other := auth.Principal{UserID: 5, Role: auth.RoleCollaborator}
			Expect(policy.CheckDelete(other, req, nil)).To(MatchError(internal.ErrNotRequestOwner))
		})

		It("denies the owner deleting a finalized request", func() {
			req.Status = vacation.StatusApproved
			Expect(policy.CheckDelete(collaborator, req, nil)).To(MatchError(internal.ErrRequestFinalized))
		})

		It("scopes managers to their direct reports", func() {
			Expect(policy.CheckDelete(manager2, req, owner)).To(Succeed())
			Expect(policy.CheckDelete(manager3, req, owner)).To(MatchError(internal.ErrNotDirectManager))
		})

		It("lets admins delete anything", func() {
			req.Status = vacation.StatusApproved
			Expect(policy.CheckDelete(admin, req, owner)).To(Succeed())
		})
	})

	Describe("DirectReportIDs", func() {
		It("is one level deep", func() {
			users := NewMockDirectory().users
			Expect(vacation.DirectReportIDs(users, 2)).To(Equal([]int64{4, 5}))
			Expect(vacation.DirectReportIDs(users, 1)).To(Equal([]int64{2, 3}))
			Expect(vacation.DirectReportIDs(users, 4)).To(BeEmpty())
		})
	})
})
