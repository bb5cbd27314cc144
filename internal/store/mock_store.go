// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows middleware and handler tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu      sync.RWMutex
	users   map[string]*User   // keyed by user ID
	byEmail map[string]string  // email -> user ID
	tours   map[string]*Tour   // keyed by tour ID
	reviews map[string]*Review // keyed by review ID

	// Err, when set, is returned by every method. Lets tests simulate a
	// failing collaborator.
	Err error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
		tours:   make(map[string]*Tour),
		reviews: make(map[string]*Review),
	}
}

// CreateUser stores a new user.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}

	// Make a copy to avoid external modification
	u := *user
	m.users[u.ID] = &u
	m.byEmail[u.Email] = u.ID
	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(ctx context.Context, id string) (*User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

// GetUserByEmail retrieves a user by email.
func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := *m.users[id]
	return &u, nil
}

// ListUsers returns all users ordered by creation time.
func (m *MockStore) ListUsers(ctx context.Context) ([]*User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*User, 0, len(m.users))
	for _, user := range m.users {
		u := *user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// UpdateUserRole changes a user's role.
func (m *MockStore) UpdateUserRole(ctx context.Context, id string, role Role) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Role = role
	return nil
}

// SetUserPassword replaces a user's password hash.
func (m *MockStore) SetUserPassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.PasswordChangedAt = changedAt
	return nil
}

// CreateTour stores a new tour.
func (m *MockStore) CreateTour(ctx context.Context, tour *Tour) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t := *tour
	m.tours[t.ID] = &t
	return nil
}

// GetTour retrieves a tour by ID.
func (m *MockStore) GetTour(ctx context.Context, id string) (*Tour, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	tour, ok := m.tours[id]
	if !ok {
		return nil, ErrNotFound
	}
	t := *tour
	return &t, nil
}

// ListTours returns tours matching the filter, ordered by price.
func (m *MockStore) ListTours(ctx context.Context, filter TourFilter) ([]*Tour, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tours []*Tour
	for _, tour := range m.tours {
		if filter.Difficulty != "" && tour.Difficulty != filter.Difficulty {
			continue
		}
		if filter.MaxPrice > 0 && tour.Price > filter.MaxPrice {
			continue
		}
		t := *tour
		tours = append(tours, &t)
	}
	sort.Slice(tours, func(i, j int) bool {
		return tours[i].Price < tours[j].Price
	})
	if filter.Limit > 0 && len(tours) > filter.Limit {
		tours = tours[:filter.Limit]
	}
	return tours, nil
}

// UpdateTour updates an existing tour.
func (m *MockStore) UpdateTour(ctx context.Context, tour *Tour) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tours[tour.ID]; !ok {
		return ErrNotFound
	}
	t := *tour
	m.tours[t.ID] = &t
	return nil
}

// DeleteTour removes a tour and its reviews.
func (m *MockStore) DeleteTour(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tours[id]; !ok {
		return ErrNotFound
	}
	delete(m.tours, id)
	for rid, review := range m.reviews {
		if review.TourID == id {
			delete(m.reviews, rid)
		}
	}
	return nil
}

// CreateReview stores a new review.
func (m *MockStore) CreateReview(ctx context.Context, review *Review) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.reviews {
		if existing.TourID == review.TourID && existing.UserID == review.UserID {
			return ErrDuplicateReview
		}
	}
	r := *review
	m.reviews[r.ID] = &r
	return nil
}

// GetReview retrieves a review by ID.
func (m *MockStore) GetReview(ctx context.Context, id string) (*Review, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	review, ok := m.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	r := *review
	return &r, nil
}

// ListTourReviews returns all reviews for a tour, newest first.
func (m *MockStore) ListTourReviews(ctx context.Context, tourID string) ([]*Review, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var reviews []*Review
	for _, review := range m.reviews {
		if review.TourID == tourID {
			r := *review
			reviews = append(reviews, &r)
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

// DeleteReview removes a review.
func (m *MockStore) DeleteReview(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(m.reviews, id)
	return nil
}

// Close is a no-op for the mock.
func (m *MockStore) Close() error {
	return nil
}
