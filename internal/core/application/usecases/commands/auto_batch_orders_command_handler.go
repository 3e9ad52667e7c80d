package commands

import (
	"context"
	"errors"
	"fmt"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/services"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// DefaultAutoBatchParallelism bounds how many destinations are planned at once.
const DefaultAutoBatchParallelism = 8

// AutoBatchResult summarizes what an auto-batch run committed.
type AutoBatchResult struct {
	BatchesCreated  int
	OrdersProcessed int
	OversizeOrders  int
	Batches         []*batch.Batch
}

// AutoBatchOrdersCommandHandler runs the consolidation planner once per
// destination office.
//
// Each destination is planned under its own lock and committed in its own
// unit of work, in parallel with the others. A failing destination does not
// undo the ones already committed; the result reports what was committed and
// the error joins every failure.
type AutoBatchOrdersCommandHandler struct {
	coordinator      *DestinationCoordinator
	planner          services.ConsolidationPlanner
	defaultMaxWeight kernel.Weight
	parallelism      int
}

func NewAutoBatchOrdersCommandHandler(
	coordinator *DestinationCoordinator,
	defaultMaxWeight kernel.Weight,
	parallelism int,
) AutoBatchOrdersCommandHandler {
	if parallelism <= 0 {
		parallelism = DefaultAutoBatchParallelism
	}
	return AutoBatchOrdersCommandHandler{
		coordinator:      coordinator,
		planner:          services.NewConsolidationPlanner(),
		defaultMaxWeight: defaultMaxWeight,
		parallelism:      parallelism,
	}
}

func (h AutoBatchOrdersCommandHandler) Handle(ctx context.Context, cmd AutoBatchOrdersCommand) (AutoBatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return AutoBatchResult{}, err
	}

	maxWeight := cmd.MaxWeight()
	if maxWeight.IsZero() {
		maxWeight = h.defaultMaxWeight
	}
	if maxWeight.IsZero() {
		return AutoBatchResult{}, fmt.Errorf("%w: no default batch weight configured", services.ErrNothingToPlan)
	}

	destinations, err := h.destinations(ctx, cmd)
	if err != nil {
		return AutoBatchResult{}, err
	}

	results := make([]AutoBatchResult, len(destinations))
	failures := make([]error, len(destinations))

	var g errgroup.Group
	g.SetLimit(h.parallelism)
	for i, destination := range destinations {
		g.Go(func() error {
			results[i], failures[i] = h.planDestination(ctx, destination, cmd.OriginOfficeID(), maxWeight)
			if failures[i] != nil {
				failures[i] = fmt.Errorf("destination %s: %w", destination, failures[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	var total AutoBatchResult
	for _, r := range results {
		total.BatchesCreated += r.BatchesCreated
		total.OrdersProcessed += r.OrdersProcessed
		total.OversizeOrders += r.OversizeOrders
		total.Batches = append(total.Batches, r.Batches...)
	}

	metrics.BatchesCreated("auto", total.BatchesCreated)
	metrics.OversizeOrders(total.OversizeOrders)

	return total, errors.Join(failures...)
}

// destinations lists the offices to plan, oldest waiting order first. The
// unlocked read only decides which locks to take; each destination re-reads
// its pool under the lock.
func (h AutoBatchOrdersCommandHandler) destinations(ctx context.Context, cmd AutoBatchOrdersCommand) ([]kernel.UUID, error) {
	if d := cmd.DestinationOfficeID(); d != nil {
		return []kernel.UUID{*d}, nil
	}

	pool, err := h.coordinator.uowFactory.Create().OrderRepository().GetEligible(ctx, ports.EligibleOrdersFilter{
		OriginOfficeID: cmd.OriginOfficeID(),
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[kernel.UUID]struct{})
	var out []kernel.UUID
	for _, o := range pool {
		d := o.DestinationOfficeID()
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out, nil
}

func (h AutoBatchOrdersCommandHandler) planDestination(
	ctx context.Context,
	destination kernel.UUID,
	origin *kernel.UUID,
	maxWeight kernel.Weight,
) (AutoBatchResult, error) {
	var result AutoBatchResult
	err := h.coordinator.Execute(ctx, "auto_batch", destination, func(ctx context.Context, uow UoW) error {
		pool, err := uow.OrderRepository().GetEligible(ctx, ports.EligibleOrdersFilter{
			OriginOfficeID:      origin,
			DestinationOfficeID: &destination,
		})
		if err != nil {
			return err
		}

		plan, err := h.planner.Plan(pool, maxWeight)
		if errors.Is(err, services.ErrNothingToPlan) {
			return nil
		}
		if err != nil {
			return err
		}

		now := h.coordinator.Now()
		created := make([]*batch.Batch, 0, len(plan.Plans))
		for _, p := range plan.Plans {
			b, err := newBatchWithUniqueCode(ctx, uow.BatchRepository(), p.OriginOfficeID, p.DestinationOfficeID, p.MaxWeight, now)
			if err != nil {
				return err
			}
			if err = b.AddOrders(p.Orders, now); err != nil {
				return err
			}
			if err = persistBatch(ctx, uow, b, p.Orders, true); err != nil {
				return err
			}
			created = append(created, b)
		}

		result = AutoBatchResult{
			BatchesCreated:  len(created),
			OrdersProcessed: plan.OrdersPlanned,
			OversizeOrders:  plan.OversizeOrders,
			Batches:         created,
		}
		return nil
	})
	if err != nil {
		return AutoBatchResult{}, err
	}
	return result, nil
}
