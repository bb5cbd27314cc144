// ABOUTME: SQLite persistence for user accounts, the identity store behind authentication
// ABOUTME: Tracks password_changed_at so stale tokens can be rejected

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateUser inserts a new user.
// Returns ErrDuplicateEmail if the email is already registered.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, name, email, role, password_hash, password_changed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		string(user.Role),
		user.PasswordHash,
		user.PasswordChangedAt.UTC().Format(time.RFC3339),
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("created user", "id", user.ID, "role", user.Role)
	return nil
}

// GetUser retrieves a user by ID.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, name, email, role, password_hash, password_changed_at, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user by email address.
// Returns ErrNotFound if no user has that email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, role, password_hash, password_changed_at, created_at
		FROM users
		WHERE email = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// ListUsers returns all users ordered by creation time.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*User, error) {
	query := `
		SELECT id, name, email, role, password_hash, password_changed_at, created_at
		FROM users
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var user User
		var role, changedAtStr, createdAtStr string

		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &role, &user.PasswordHash, &changedAtStr, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		user.Role = Role(role)
		user.PasswordChangedAt, err = time.Parse(time.RFC3339, changedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing password_changed_at: %w", err)
		}
		user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		users = append(users, &user)
	}

	return users, rows.Err()
}

// UpdateUserRole changes a user's role.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) UpdateUserRole(ctx context.Context, id string, role Role) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated user role", "id", id, "role", role)
	return nil
}

// SetUserPassword replaces a user's password hash and records when it changed.
// Tokens issued before changedAt become invalid at the credential verifier.
func (s *SQLiteStore) SetUserPassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, password_changed_at = ? WHERE id = ?`,
		passwordHash, changedAt.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// scanUser reads a single user row.
func (s *SQLiteStore) scanUser(row *sql.Row) (*User, error) {
	var user User
	var role, changedAtStr, createdAtStr string

	err := row.Scan(&user.ID, &user.Name, &user.Email, &role, &user.PasswordHash, &changedAtStr, &createdAtStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.Role = Role(role)

	user.PasswordChangedAt, err = time.Parse(time.RFC3339, changedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing password_changed_at: %w", err)
	}

	user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &user, nil
}
