package jobs

import (
	"context"
	"fmt"

	"github.com/hellogreencow/burch/internal/report"
	"github.com/hellogreencow/burch/pkg/logger"
)

// ReportBatchJob renders investment briefs for the current top of the heat
// feed once a day, after the morning refresh.
type ReportBatchJob struct {
	composer *report.Composer
	limit    int
	logger   *logger.Logger
}

func NewReportBatchJob(composer *report.Composer, limit int, log *logger.Logger) *ReportBatchJob {
	return &ReportBatchJob{
		composer: composer,
		limit:    limit,
		logger:   log,
	}
}

// Name returns the job name
func (j *ReportBatchJob) Name() string {
	return "report_batch"
}

// Schedule returns the cron schedule (every day at 7 AM, after refresh)
func (j *ReportBatchJob) Schedule() string {
	return "0 0 7 * * *"
}

// Run renders the batch
func (j *ReportBatchJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled report batch")

	batch, err := j.composer.GenerateTopRanked(j.limit)
	if err != nil {
		return fmt.Errorf("generate report batch: %w", err)
	}

	j.logger.WithField("count", batch.Count).Info("Report batch generated successfully")
	return nil
}
