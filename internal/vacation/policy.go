package vacation

import (
	"github.com/frahmantamala/vacation-management/internal"
	"github.com/frahmantamala/vacation-management/internal/auth"
	"github.com/frahmantamala/vacation-management/internal/user"
)

// Overlaps reports whether the closed intervals [s1, e1] and [s2, e2] share
// at least one day. Touching endpoints overlap.
func Overlaps(s1, e1, s2, e2 Date) bool {
	return !s1.After(e2) && !e1.Before(s2)
}

// FirstOverlap returns the first candidate that blocks [start, end], skipping
// rejected requests and the request with id excludeID.
func FirstOverlap(candidates []*VacationRequest, start, end Date, excludeID *int64) *VacationRequest {
	for _, c := range candidates {
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		if !c.Status.BlocksOverlap() {
			continue
		}
		if Overlaps(start, end, c.StartDate, c.EndDate) {
			return c
		}
	}
	return nil
}

// Policy holds the business rules for vacation requests. Its methods are pure:
// callers supply everything a decision needs.
type Policy struct {
	// EnforceTerminalStatus rejects edits, transitions and collaborator
	// deletes of requests that are no longer Pending.
	EnforceTerminalStatus bool
}

// CheckCreate applies the creation rules in order; the first failure wins.
// existing holds the requests already owned by userID.
func (p Policy) CheckCreate(principal auth.Principal, userID int64, start, end Date, existing []*VacationRequest) error {
	if principal.IsCollaborator() && userID != principal.UserID {
		return internal.ErrNotRequestOwner
	}
	if FirstOverlap(existing, start, end, nil) != nil {
		return internal.ErrOverlappingDates
	}
	if !start.Before(end) {
		return internal.ErrInvalidDateRange
	}
	return nil
}

// CheckUpdate applies the update rules to current in order. existing holds
// the requests of current's owner; current itself is skipped.
func (p Policy) CheckUpdate(principal auth.Principal, current *VacationRequest, start, end Date, existing []*VacationRequest) error {
	if principal.IsCollaborator() && current.UserID != principal.UserID {
		return internal.ErrNotRequestOwner
	}
	if p.EnforceTerminalStatus && !current.IsPending() {
		return internal.ErrRequestFinalized
	}
	id := current.ID
	if FirstOverlap(existing, start, end, &id) != nil {
		return internal.ErrOverlappingDates
	}
	if !start.Before(end) {
		return internal.ErrInvalidDateRange
	}
	return nil
}

// CheckTransition decides whether principal may approve or reject req, whose
// owner is given. Managers only act on their direct reports.
func (p Policy) CheckTransition(principal auth.Principal, req *VacationRequest, owner *user.User) error {
	switch {
	case principal.IsAdmin():
	case principal.IsManager():
		if owner == nil || !owner.ReportsTo(principal.UserID) {
			return internal.ErrNotDirectManager
		}
	default:
		return internal.ErrApprovalForbidden
	}
	if p.EnforceTerminalStatus && !req.IsPending() {
		return internal.ErrRequestFinalized
	}
	return nil
}

// CheckDelete decides whether principal may delete req. Collaborators delete
// their own requests only, managers their own and their direct reports'.
func (p Policy) CheckDelete(principal auth.Principal, req *VacationRequest, owner *user.User) error {
	switch {
	case principal.IsAdmin():
		return nil
	case principal.IsManager():
		if req.UserID == principal.UserID {
			return nil
		}
		if owner == nil || !owner.ReportsTo(principal.UserID) {
			return internal.ErrNotDirectManager
		}
		return nil
	case principal.IsCollaborator():
		if req.UserID != principal.UserID {
			return internal.ErrNotRequestOwner
		}
		if p.EnforceTerminalStatus && !req.IsPending() {
			return internal.ErrRequestFinalized
		}
		return nil
	}
	return internal.ErrNotRequestOwner
}

// DirectReportIDs returns the ids of the users that report to managerID.
func DirectReportIDs(users []*user.User, managerID int64) []int64 {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		if u.ReportsTo(managerID) {
			ids = append(ids, u.ID)
		}
	}
	return ids
}
