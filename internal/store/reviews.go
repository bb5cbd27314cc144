// ABOUTME: SQLite persistence for tour reviews
// ABOUTME: Enforces one review per user per tour via a unique constraint

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateReview inserts a new review.
// Returns ErrDuplicateReview if the user already reviewed the tour.
func (s *SQLiteStore) CreateReview(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (id, tour_id, user_id, rating, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		review.ID,
		review.TourID,
		review.UserID,
		review.Rating,
		review.Content,
		review.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("inserting review: %w", err)
	}

	s.logger.Debug("created review", "id", review.ID, "tour", review.TourID)
	return nil
}

// GetReview retrieves a review by ID.
// Returns ErrNotFound if the review doesn't exist.
func (s *SQLiteStore) GetReview(ctx context.Context, id string) (*Review, error) {
	query := `
		SELECT id, tour_id, user_id, rating, content, created_at
		FROM reviews
		WHERE id = ?
	`

	var review Review
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&review.ID,
		&review.TourID,
		&review.UserID,
		&review.Rating,
		&review.Content,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying review: %w", err)
	}

	review.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &review, nil
}

// ListTourReviews returns all reviews for a tour, newest first.
func (s *SQLiteStore) ListTourReviews(ctx context.Context, tourID string) ([]*Review, error) {
	query := `
		SELECT id, tour_id, user_id, rating, content, created_at
		FROM reviews
		WHERE tour_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, tourID)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		var review Review
		var createdAtStr string

		if err := rows.Scan(&review.ID, &review.TourID, &review.UserID, &review.Rating, &review.Content, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}

		review.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		reviews = append(reviews, &review)
	}

	return reviews, rows.Err()
}

// DeleteReview removes a review.
// Returns ErrNotFound if the review doesn't exist.
func (s *SQLiteStore) DeleteReview(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
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
