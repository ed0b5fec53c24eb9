package user_test

import (
	"context"
	"sync"

	userDatamodel "github.com/frahmantamala/vacation-management/internal/core/datamodel/user"
	"github.com/frahmantamala/vacation-management/internal/core/events"
)

func int64Ptr(v int64) *int64 { return &v }

// MockUserRepository implements user.Repository in memory. Deleted users'
// request counts come from requests.
type MockUserRepository struct {
	mu         sync.Mutex
	users      []*userDatamodel.User
	requests   map[int64]int64
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: []*userDatamodel.User{
			{ID: 1, Name: "Admin User", Email: "admin@company.com", Role: "Admin"},
			{ID: 2, Name: "Manager One", Email: "manager1@company.com", Role: "Manager", ManagerID: int64Ptr(1)},
			{ID: 4, Name: "John Doe", Email: "john@company.com", Role: "Collaborator", ManagerID: int64Ptr(2)},
		},
		requests: map[int64]int64{4: 3},
		nextID:   10,
	}
}

func (m *MockUserRepository) List(ctx context.Context) ([]*userDatamodel.User, error) {
	return m.filter(func(*userDatamodel.User) bool { return true })
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, m.failError
	}
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) ListByManager(ctx context.Context, managerID int64) ([]*userDatamodel.User, error) {
	return m.filter(func(u *userDatamodel.User) bool {
		return u.ManagerID != nil && *u.ManagerID == managerID
	})
}

func (m *MockUserRepository) filter(keep func(*userDatamodel.User) bool) ([]*userDatamodel.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*userDatamodel.User
	for _, u := range m.users {
		if keep(u) {
			cp := *u
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MockUserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return m.failError
	}
	u.ID = m.nextID
	m.nextID++
	cp := *u
	m.users = append(m.users, &cp)
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, u *userDatamodel.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return m.failError
	}
	for i, existing := range m.users {
		if existing.ID == u.ID {
			cp := *u
			m.users[i] = &cp
		}
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return 0, m.failError
	}
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			removed := m.requests[id]
			delete(m.requests, id)
			return removed, nil
		}
	}
	return 0, nil
}

type MockPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *MockPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}
