package migrate

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRunAllSkipsSatisfiedMigrations(t *testing.T) {
	applied := false
	runner := NewRunner(testLogger(), Migration{
		Name:  "already_done",
		Probe: func(ctx context.Context) (bool, error) { return true, nil },
		Apply: func(ctx context.Context) (*Report, error) {
			applied = true
			return &Report{}, nil
		},
	})

	results, err := runner.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Applied)
	assert.False(t, applied)
}

func TestRunAllAppliesWhenProbeFails(t *testing.T) {
	runner := NewRunner(testLogger(), Migration{
		Name:  "needs_apply",
		Probe: func(ctx context.Context) (bool, error) { return false, nil },
		Apply: func(ctx context.Context) (*Report, error) {
			return &Report{Before: 3, After: 0}, nil
		},
	})

	results, err := runner.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Applied)
	assert.Equal(t, 3, results[0].Report.Before)
	assert.Equal(t, 0, results[0].Report.After)
}

func TestRunAllStopsOnApplyError(t *testing.T) {
	secondRan := false
	runner := NewRunner(testLogger(),
		Migration{
			Name:  "failing",
			Probe: func(ctx context.Context) (bool, error) { return false, nil },
			Apply: func(ctx context.Context) (*Report, error) {
				return nil, errors.New("boom")
			},
		},
		Migration{
			Name:  "never_reached",
			Probe: func(ctx context.Context) (bool, error) { return false, nil },
			Apply: func(ctx context.Context) (*Report, error) {
				secondRan = true
				return &Report{}, nil
			},
		},
	)

	results, err := runner.RunAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
	assert.Empty(t, results)
	assert.False(t, secondRan)
}

func TestRunAllIsRerunnable(t *testing.T) {
	satisfied := false
	applications := 0
	runner := NewRunner(testLogger(), Migration{
		Name:  "one_shot",
		Probe: func(ctx context.Context) (bool, error) { return satisfied, nil },
		Apply: func(ctx context.Context) (*Report, error) {
			applications++
			satisfied = true
			return &Report{Before: 1, After: 0}, nil
		},
	})

	_, err := runner.RunAll(context.Background())
	require.NoError(t, err)
	_, err = runner.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, applications)
}
