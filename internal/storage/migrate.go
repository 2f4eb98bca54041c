package storage

import (
	"context"
	"fmt"
)

// MigrateOptions contains configuration for a backend migration.
type MigrateOptions struct {
	DryRun bool // Preview without writing to the destination
}

// MigrateResult contains statistics about a backend migration.
type MigrateResult struct {
	Habits int // habits copied
	Marks  int // recorded (non-empty) status marks copied
	Dates  int // date labels in the copied window
}

// Migrate copies the full grid document from one backend to another, for
// example from a legacy JSON data file into the sqlite backend. The source is
// never modified; the destination is fully overwritten unless DryRun is set.
func Migrate(ctx context.Context, src, dst Store, opts MigrateOptions) (*MigrateResult, error) {
	if src == nil {
		return nil, fmt.Errorf("source store cannot be nil")
	}
	if dst == nil {
		return nil, fmt.Errorf("destination store cannot be nil")
	}

	g, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load source %s store: %w", src.Type(), err)
	}

	result := &MigrateResult{
		Habits: len(g.Habits),
		Dates:  len(g.Dates),
	}
	for _, h := range g.Habits {
		for _, s := range h.DailyStatus {
			if s != "" {
				result.Marks++
			}
		}
	}

	if opts.DryRun {
		return result, nil
	}

	if err := dst.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to save into %s store: %w", dst.Type(), err)
	}
	return result, nil
}
