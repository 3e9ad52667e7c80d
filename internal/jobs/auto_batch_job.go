package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/services"
	"consolidation/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// DefaultRunTimeout bounds a single scheduled run.
const DefaultRunTimeout = 2 * time.Minute

// AutoBatcher is the part of AutoBatchOrdersCommandHandler the job needs.
type AutoBatcher interface {
	Handle(ctx context.Context, cmd commands.AutoBatchOrdersCommand) (commands.AutoBatchResult, error)
}

// AutoBatchJob consolidates the whole unbatched pool on a cron schedule using
// the configured default batch weight.
type AutoBatchJob struct {
	handler  AutoBatcher
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	timeout  time.Duration
}

// NewAutoBatchJob accepts standard five-field cron specs, six-field specs
// with seconds, and descriptors such as "@every 5m".
func NewAutoBatchJob(handler AutoBatcher, schedule string, logger *slog.Logger) *AutoBatchJob {
	return &AutoBatchJob{
		handler:  handler,
		schedule: schedule,
		cron:     newCron(),
		logger:   logger.With("component", "auto_batch_job"),
		timeout:  DefaultRunTimeout,
	}
}

func (j *AutoBatchJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		j.RunOnce(ctx)
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Auto-batch job started", "schedule", j.schedule)
	return nil
}

// Stop waits for a running pass to finish.
func (j *AutoBatchJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Auto-batch job stopped")
}

// RunOnce performs one consolidation pass over every origin and destination.
func (j *AutoBatchJob) RunOnce(ctx context.Context) {
	cmd, err := commands.NewAutoBatchOrdersCommand(0, nil, nil)
	if err != nil {
		j.logger.ErrorContext(ctx, "Auto-batch job could not build command", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNothingToPlan):
		j.logger.WarnContext(ctx, "Auto-batch job has no batch weight configured", "error", err)
		return
	case errors.Is(err, ports.ErrBusy):
		// Busy destinations are picked up by the next run.
		j.logger.WarnContext(ctx, "Auto-batch job skipped busy destinations", "error", err)
	default:
		j.logger.ErrorContext(ctx, "Auto-batch job failed", "error", err)
	}

	if result.BatchesCreated > 0 {
		j.logger.InfoContext(ctx, "Auto-batch job created batches",
			"batches", result.BatchesCreated,
			"orders", result.OrdersProcessed,
			"oversize", result.OversizeOrders,
		)
	}
}

func newCron() *cron.Cron {
	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	return cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
}
