// Package migrate runs idempotent schema-and-data migrations. Each
// migration probes for its own target state and applies only when the
// probe fails, so the whole set is always safe to re-run. Migrations
// must run with no concurrent writers.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
)

// Report carries the before/after counts of one applied migration.
type Report struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

// Migration pairs a probe with its apply step. Probe returns true when
// the schema/data already satisfies the migration's target state.
type Migration struct {
	Name  string
	Probe func(ctx context.Context) (bool, error)
	Apply func(ctx context.Context) (*Report, error)
}

// Result records what RunAll did for one migration.
type Result struct {
	Name    string  `json:"name"`
	Applied bool    `json:"applied"`
	Report  *Report `json:"report,omitempty"`
}

type Runner struct {
	migrations []Migration
	logger     *slog.Logger
}

func NewRunner(logger *slog.Logger, migrations ...Migration) *Runner {
	return &Runner{
		migrations: migrations,
		logger:     logger,
	}
}

// RunAll probes and applies every migration in order. The first failure
// aborts the run; everything already applied stays applied.
func (r *Runner) RunAll(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(r.migrations))

	for _, m := range r.migrations {
		satisfied, err := m.Probe(ctx)
		if err != nil {
			return results, fmt.Errorf("probe %s: %w", m.Name, err)
		}
		if satisfied {
			r.logger.InfoContext(ctx, "migration already satisfied", "migration", m.Name)
			results = append(results, Result{Name: m.Name, Applied: false})
			continue
		}

		r.logger.InfoContext(ctx, "applying migration", "migration", m.Name)
		report, err := m.Apply(ctx)
		if err != nil {
			return results, fmt.Errorf("apply %s: %w", m.Name, err)
		}

		r.logger.InfoContext(ctx, "migration applied",
			"migration", m.Name, "before", report.Before, "after", report.After)
		results = append(results, Result{Name: m.Name, Applied: true, Report: report})
	}

	return results, nil
}
