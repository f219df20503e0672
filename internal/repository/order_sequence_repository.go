package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// OrderSequenceRepository hands out per-day order counters. Next is atomic:
// concurrent callers for the same day never receive the same value.
type OrderSequenceRepository interface {
	Next(ctx context.Context, day string) (int, error)
}

type orderSequenceRepository struct {
	db *sql.DB
}

func NewOrderSequenceRepository(db *sql.DB) OrderSequenceRepository {
	return &orderSequenceRepository{db: db}
}

func (r *orderSequenceRepository) Next(ctx context.Context, day string) (int, error) {
	var seq int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO order_sequences (day, last_seq) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last_seq = order_sequences.last_seq + 1
		RETURNING last_seq`,
		day,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate order sequence: %w", err)
	}
	return seq, nil
}
