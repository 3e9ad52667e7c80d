package jobs

import (
	"context"
	"log/slog"
	"time"

	"consolidation/internal/core/application/usecases/queries"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// DefaultPoolScanSchedule refreshes the pool gauges every thirty seconds.
const DefaultPoolScanSchedule = "*/30 * * * * *"

type DestinationSummarizer interface {
	Handle(ctx context.Context, query queries.GetDestinationsWithUnbatchedOrdersQuery) ([]ports.DestinationSummary, error)
}

// PoolScanJob publishes the size and age of the unbatched pool as gauges.
type PoolScanJob struct {
	handler  DestinationSummarizer
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	clock    func() time.Time
}

func NewPoolScanJob(handler DestinationSummarizer, schedule string, logger *slog.Logger) *PoolScanJob {
	return &PoolScanJob{
		handler:  handler,
		schedule: schedule,
		cron:     newCron(),
		logger:   logger.With("component", "pool_scan_job"),
		clock:    time.Now,
	}
}

func (j *PoolScanJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultRunTimeout)
		defer cancel()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Pool scan job failed", "error", err)
		}
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Pool scan job started", "schedule", j.schedule)
	return nil
}

func (j *PoolScanJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Pool scan job stopped")
}

// PoolSnapshot is what one scan observed.
type PoolSnapshot struct {
	Destinations int
	Orders       int
	Weight       kernel.Weight
	OldestAge    time.Duration
}

// RunOnce summarizes the pool across all offices and updates the gauges.
func (j *PoolScanJob) RunOnce(ctx context.Context) (PoolSnapshot, error) {
	query, err := queries.NewGetDestinationsWithUnbatchedOrdersQuery(nil)
	if err != nil {
		return PoolSnapshot{}, err
	}
	summaries, err := j.handler.Handle(ctx, query)
	if err != nil {
		return PoolSnapshot{}, err
	}

	snapshot := PoolSnapshot{Destinations: len(summaries), Weight: kernel.ZeroWeight()}
	var oldest time.Time
	for _, s := range summaries {
		snapshot.Orders += s.OrderCount
		snapshot.Weight = snapshot.Weight.Add(s.TotalWeight)
		if !s.OldestCreatedAt.IsZero() && (oldest.IsZero() || s.OldestCreatedAt.Before(oldest)) {
			oldest = s.OldestCreatedAt
		}
	}
	if !oldest.IsZero() {
		snapshot.OldestAge = max(j.clock().Sub(oldest), 0)
	}

	metrics.UnbatchedPool(snapshot.Orders, snapshot.Weight.Kg(), snapshot.OldestAge)
	return snapshot, nil
}
