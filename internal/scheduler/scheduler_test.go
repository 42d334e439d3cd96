package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellogreencow/burch/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	runs     atomic.Int32
	err      error
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func newTestScheduler() *Scheduler {
	s := New(logger.NewNop())
	s.retryDelay = 0
	return s
}

func waitForHistory(t *testing.T, s *Scheduler, jobName string, want int) *JobHistory {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		history, err := s.GetJobHistory(jobName)
		require.NoError(t, err)
		if len(history.GetLatestResults(want)) >= want {
			return history
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s never recorded %d results", jobName, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestScheduler_AddJobRejectsDuplicates(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "universe_refresh", schedule: "0 0 * * * *"}

	require.NoError(t, s.AddJob(job))
	err := s.AddJob(&stubJob{name: "universe_refresh", schedule: "0 0 * * * *"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	assert.Equal(t, []string{"universe_refresh"}, s.GetAllJobs())
}

func TestScheduler_AddJobRejectsBadSchedule(t *testing.T) {
	s := newTestScheduler()

	err := s.AddJob(&stubJob{name: "broken", schedule: "whenever"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule")
}

func TestScheduler_RunJobRecordsSuccess(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "report_batch", schedule: "0 0 7 * * *"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("report_batch"))
	history := waitForHistory(t, s, "report_batch", 1)

	results := history.GetLatestResults(1)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Empty(t, results[0].Error)
	assert.Equal(t, int32(1), job.runs.Load())
	assert.Equal(t, 1.0, history.GetSuccessRate())
}

func TestScheduler_RunJobRetriesThenRecordsFailure(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "universe_refresh", schedule: "0 0 * * * *", err: errors.New("store busy")}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("universe_refresh"))
	history := waitForHistory(t, s, "universe_refresh", 1)

	results := history.GetLatestResults(1)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "store busy")
	assert.Equal(t, int32(4), job.runs.Load(), "one run plus three retries")

	failed := history.GetFailedResults()
	assert.Len(t, failed, 1)
}

func TestScheduler_RunJobUnknown(t *testing.T) {
	s := newTestScheduler()

	err := s.RunJob("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestScheduler_GetJobStats(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "report_batch", schedule: "0 0 7 * * *"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("report_batch"))
	waitForHistory(t, s, "report_batch", 1)

	stats := s.GetJobStats()
	require.Contains(t, stats, "report_batch")
	assert.Equal(t, 1, stats["report_batch"].TotalRuns)
	assert.Equal(t, 1, stats["report_batch"].SuccessCount)
	assert.Equal(t, 1.0, stats["report_batch"].SuccessRate)
	require.NotNil(t, stats["report_batch"].LastRun)
}

func TestJobHistory_CapsResults(t *testing.T) {
	history := &JobHistory{}
	for i := 0; i < 120; i++ {
		history.AddResult(JobResult{JobName: "x", Success: true})
	}
	assert.Len(t, history.Results, 100)
}
