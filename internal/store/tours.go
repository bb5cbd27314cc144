// ABOUTME: SQLite persistence for tours
// ABOUTME: CRUD plus filtered listing by difficulty and price

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const tourColumns = `id, name, duration, max_group_size, difficulty, price, summary, description,
	ratings_average, ratings_quantity, created_at, updated_at`

// CreateTour inserts a new tour.
func (s *SQLiteStore) CreateTour(ctx context.Context, tour *Tour) error {
	query := `
		INSERT INTO tours (` + tourColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		tour.ID,
		tour.Name,
		tour.Duration,
		tour.MaxGroupSize,
		tour.Difficulty,
		tour.Price,
		tour.Summary,
		tour.Description,
		tour.RatingsAverage,
		tour.RatingsQuantity,
		tour.CreatedAt.UTC().Format(time.RFC3339),
		tour.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting tour: %w", err)
	}

	s.logger.Debug("created tour", "id", tour.ID, "name", tour.Name)
	return nil
}

// GetTour retrieves a tour by ID.
// Returns ErrNotFound if the tour doesn't exist.
func (s *SQLiteStore) GetTour(ctx context.Context, id string) (*Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE id = ?`
	return scanTour(s.db.QueryRowContext(ctx, query, id))
}

// ListTours returns tours matching the filter, ordered by price.
func (s *SQLiteStore) ListTours(ctx context.Context, filter TourFilter) ([]*Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE 1=1`
	var args []any

	if filter.Difficulty != "" {
		query += ` AND difficulty = ?`
		args = append(args, filter.Difficulty)
	}
	if filter.MaxPrice > 0 {
		query += ` AND price <= ?`
		args = append(args, filter.MaxPrice)
	}
	query += ` ORDER BY price`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tours: %w", err)
	}
	defer rows.Close()

	var tours []*Tour
	for rows.Next() {
		tour, err := scanTourRows(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, tour)
	}

	return tours, rows.Err()
}

// UpdateTour updates an existing tour.
// Returns ErrNotFound if the tour doesn't exist.
func (s *SQLiteStore) UpdateTour(ctx context.Context, tour *Tour) error {
	query := `
		UPDATE tours
		SET name = ?, duration = ?, max_group_size = ?, difficulty = ?, price = ?,
		    summary = ?, description = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		tour.Name,
		tour.Duration,
		tour.MaxGroupSize,
		tour.Difficulty,
		tour.Price,
		tour.Summary,
		tour.Description,
		tour.UpdatedAt.UTC().Format(time.RFC3339),
		tour.ID,
	)
	if err != nil {
		return fmt.Errorf("updating tour: %w", err)
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

// DeleteTour removes a tour and, via cascade, its reviews.
// Returns ErrNotFound if the tour doesn't exist.
func (s *SQLiteStore) DeleteTour(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tours WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting tour: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted tour", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTourFrom(sc rowScanner) (*Tour, error) {
	var tour Tour
	var createdAtStr, updatedAtStr string

	err := sc.Scan(
		&tour.ID,
		&tour.Name,
		&tour.Duration,
		&tour.MaxGroupSize,
		&tour.Difficulty,
		&tour.Price,
		&tour.Summary,
		&tour.Description,
		&tour.RatingsAverage,
		&tour.RatingsQuantity,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	tour.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	tour.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &tour, nil
}

func scanTour(row *sql.Row) (*Tour, error) {
	tour, err := scanTourFrom(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying tour: %w", err)
	}
	return tour, nil
}

func scanTourRows(rows *sql.Rows) (*Tour, error) {
	tour, err := scanTourFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning tour: %w", err)
	}
	return tour, nil
}
