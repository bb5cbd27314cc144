// ABOUTME: Store interface and data types for trailhead persistence
// ABOUTME: Defines User, Tour, Review structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when creating a user with an email already in use
var ErrDuplicateEmail = errors.New("email already in use")

// ErrDuplicateReview is returned when a user reviews the same tour twice
var ErrDuplicateReview = errors.New("review already exists for this tour")

// Role is the closed set of user roles used by route access policies.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is a member of the closed role set.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// Tour difficulty values
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// User represents a registered account. It doubles as the identity store
// record the credential verifier resolves tokens against:
// PasswordChangedAt invalidates every token issued before it.
type User struct {
	ID                string
	Name              string
	Email             string
	Role              Role
	PasswordHash      string
	PasswordChangedAt time.Time
	CreatedAt         time.Time
}

// Tour represents a bookable tour
type Tour struct {
	ID              string
	Name            string
	Duration        int // days
	MaxGroupSize    int
	Difficulty      string
	Price           float64
	Summary         string
	Description     string // Markdown source, rendered to HTML on detail responses
	RatingsAverage  float64
	RatingsQuantity int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Review represents a user's review of a tour. One review per user per tour.
type Review struct {
	ID        string
	TourID    string
	UserID    string
	Rating    int // 1..5
	Content   string
	CreatedAt time.Time
}

// TourFilter narrows ListTours results. Zero values mean "no constraint".
type TourFilter struct {
	Difficulty string
	MaxPrice   float64
	Limit      int
}

// Store defines the interface for user, tour, and review persistence
type Store interface {
	// Users (identity store)
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUserRole(ctx context.Context, id string, role Role) error
	SetUserPassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error

	// Tours
	CreateTour(ctx context.Context, tour *Tour) error
	GetTour(ctx context.Context, id string) (*Tour, error)
	ListTours(ctx context.Context, filter TourFilter) ([]*Tour, error)
	UpdateTour(ctx context.Context, tour *Tour) error
	DeleteTour(ctx context.Context, id string) error

	// Reviews
	CreateReview(ctx context.Context, review *Review) error
	GetReview(ctx context.Context, id string) (*Review, error)
	ListTourReviews(ctx context.Context, tourID string) ([]*Review, error)
	DeleteReview(ctx context.Context, id string) error

	Close() error
}
