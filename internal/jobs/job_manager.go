package jobs

import (
	"fmt"
	"log/slog"
)

// Job is a scheduled background task.
type Job interface {
	Start() error
	Stop()
}

// JobManager starts and stops the scheduled jobs together.
type JobManager struct {
	jobs    []Job
	started []Job
}

// NewJobManager wires the pool scan job, and the auto-batch job when
// autoBatchSchedule is set.
func NewJobManager(
	autoBatcher AutoBatcher,
	autoBatchSchedule string,
	summarizer DestinationSummarizer,
	logger *slog.Logger,
) *JobManager {
	jm := &JobManager{}
	jm.jobs = append(jm.jobs, NewPoolScanJob(summarizer, DefaultPoolScanSchedule, logger))
	if autoBatchSchedule != "" {
		jm.jobs = append(jm.jobs, NewAutoBatchJob(autoBatcher, autoBatchSchedule, logger))
	}
	return jm
}

// StartAll starts every job. If one fails to start, the ones already
// running are stopped.
func (jm *JobManager) StartAll() error {
	for _, job := range jm.jobs {
		if err := job.Start(); err != nil {
			jm.StopAll()
			return fmt.Errorf("failed to start %T: %w", job, err)
		}
		jm.started = append(jm.started, job)
	}
	return nil
}

// StopAll stops the running jobs in reverse start order.
func (jm *JobManager) StopAll() {
	for i := len(jm.started) - 1; i >= 0; i-- {
		jm.started[i].Stop()
	}
	jm.started = nil
}

// Len reports how many jobs are configured.
func (jm *JobManager) Len() int {
	return len(jm.jobs)
}
