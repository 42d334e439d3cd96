package jobs

import (
	"context"
	"fmt"

	"github.com/hellogreencow/burch/internal/universe"
	"github.com/hellogreencow/burch/pkg/logger"
)

// RefreshJob appends a fresh week of observations to every brand and
// recomputes scorecards on a cron schedule.
type RefreshJob struct {
	manager      *universe.Manager
	targetBrands int
	enrichTopN   int
	schedule     string
	logger       *logger.Logger
}

func NewRefreshJob(manager *universe.Manager, targetBrands, enrichTopN int, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		manager:      manager,
		targetBrands: targetBrands,
		enrichTopN:   enrichTopN,
		schedule:     schedule,
		logger:       log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "universe_refresh"
}

// Schedule returns the cron schedule expression
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes the universe refresh
func (j *RefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled universe refresh")

	result, err := j.manager.Refresh(ctx, j.targetBrands, j.enrichTopN)
	if err != nil {
		return fmt.Errorf("refresh universe: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"brands":    result.Brands,
		"created":   result.Created,
		"updated":   result.Updated,
		"snapshots": result.Snapshots,
	}).Info("Universe refreshed successfully")

	return nil
}
