package service

import (
	"context"
	"fmt"
	"time"

	"nana-store/internal/repository"
)

// OrderNumberGenerator builds numbers of the form PREFIX+YYMMDD+seq where seq
// restarts at 1 every day in the store's timezone.
type OrderNumberGenerator struct {
	sequences repository.OrderSequenceRepository
	prefix    string
	location  *time.Location
}

func NewOrderNumberGenerator(sequences repository.OrderSequenceRepository, prefix string, location *time.Location) *OrderNumberGenerator {
	if location == nil {
		location = time.UTC
	}
	return &OrderNumberGenerator{sequences: sequences, prefix: prefix, location: location}
}

func (g *OrderNumberGenerator) Next(ctx context.Context, now time.Time) (string, error) {
	day := now.In(g.location).Format("060102")
	seq, err := g.sequences.Next(ctx, day)
	if err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	return FormatOrderNumber(g.prefix, day, seq), nil
}

// FormatOrderNumber pads seq to three digits; larger values keep every digit.
func FormatOrderNumber(prefix, day string, seq int) string {
	return fmt.Sprintf("%s%s%03d", prefix, day, seq)
}
