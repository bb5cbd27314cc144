// Package store provides persistence for trailhead users, tours, and reviews.
//
// # Overview
//
// The Store interface abstracts all database operations. The production
// implementation is SQLiteStore (modernc.org/sqlite, WAL mode, automatic
// schema creation); MockStore is an in-memory double for tests.
//
// # Identity Store
//
// The users table is also the identity store the credential verifier resolves
// bearer tokens against. Each user carries password_changed_at: any token
// whose issued-at time precedes it is rejected, so a password change revokes
// every previously issued token.
//
// # Entities
//
//   - User: account with a role from the closed set user/guide/lead-guide/admin
//   - Tour: bookable tour with difficulty, price, and rating aggregates
//   - Review: one per user per tour, rating 1-5
//
// # Errors
//
// Lookups return ErrNotFound for missing rows. Unique-constraint violations
// surface as ErrDuplicateEmail and ErrDuplicateReview so callers can map them
// to conflict responses.
package store
