package services

import (
	"errors"
	"slices"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/pkg/errs"
)

// ErrNothingToPlan is returned when the pool holds no eligible order.
var ErrNothingToPlan = errors.New("no eligible orders to plan")

// Plan is one batch the planner wants created. Orders keep FIFO order.
type Plan struct {
	OriginOfficeID      kernel.UUID
	DestinationOfficeID kernel.UUID
	MaxWeight           kernel.Weight
	TotalWeight         kernel.Weight
	Orders              []*order.Order
	Oversize            bool
}

// Result is the outcome of a planning run.
type Result struct {
	Plans          []Plan
	OrdersPlanned  int
	OversizeOrders int
}

// ConsolidationPlanner is a domain service that packs eligible orders into
// weight-bounded batches.
//
// Business rules:
//   - Only eligible orders (CREATED, unbatched) are planned; the rest are skipped
//   - Orders are grouped per (origin, destination) pair so a batch never mixes lanes
//   - Within a lane orders are taken oldest first, ties broken by id
//   - Packing is next-fit: when an order would overflow the open plan, that plan is
//     closed and a new one starts with the order
//   - An order heavier than the limit gets a plan of its own sized to its weight
//     and is counted in OversizeOrders
//
// Example usage:
//
//	planner := NewConsolidationPlanner()
//	result, err := planner.Plan(orders, maxWeight)
//	if errors.Is(err, ErrNothingToPlan) {
//	    // nothing to do
//	}
//	for _, p := range result.Plans {
//	    // create an OPEN batch for p and add p.Orders to it
//	}
type ConsolidationPlanner struct{}

func NewConsolidationPlanner() ConsolidationPlanner {
	return ConsolidationPlanner{}
}

// Plan splits orders into batch plans.
//
// Parameters:
//   - orders: candidate orders, in any order; ineligible ones are ignored
//   - maxWeight: per batch limit, must be greater than zero
//
// Returns:
//   - Result: plans grouped by lane, lanes ordered by their oldest order
//   - error: ErrNothingToPlan for an empty eligible pool, or validation errors
func (p ConsolidationPlanner) Plan(orders []*order.Order, maxWeight kernel.Weight) (Result, error) {
	if maxWeight.IsZero() {
		return Result{}, errs.NewValueIsInvalidErrorWithCause("maxWeightPerBatch", errors.New("must be greater than 0"))
	}

	eligible := make([]*order.Order, 0, len(orders))
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return Result{}, err
		}
		if o.IsEligible() {
			eligible = append(eligible, o)
		}
	}
	if len(eligible) == 0 {
		return Result{}, ErrNothingToPlan
	}

	slices.SortStableFunc(eligible, fifo)

	var result Result
	for _, laneOrders := range p.groupByLane(eligible) {
		plans, oversize := p.pack(laneOrders, maxWeight)
		result.Plans = append(result.Plans, plans...)
		result.OversizeOrders += oversize
		result.OrdersPlanned += len(laneOrders)
	}
	return result, nil
}

type lane struct {
	origin      kernel.UUID
	destination kernel.UUID
}

// groupByLane partitions sorted orders keeping the first-seen order of lanes.
func (p ConsolidationPlanner) groupByLane(sorted []*order.Order) [][]*order.Order {
	index := make(map[lane]int)
	var groups [][]*order.Order
	for _, o := range sorted {
		key := lane{origin: o.OriginOfficeID(), destination: o.DestinationOfficeID()}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], o)
	}
	return groups
}

func (p ConsolidationPlanner) pack(orders []*order.Order, maxWeight kernel.Weight) ([]Plan, int) {
	var (
		plans    []Plan
		current  *Plan
		oversize int
	)

	flush := func() {
		if current != nil && len(current.Orders) > 0 {
			plans = append(plans, *current)
		}
		current = nil
	}

	for _, o := range orders {
		if o.Weight().IsGreaterThan(maxWeight) {
			flush()
			plans = append(plans, Plan{
				OriginOfficeID:      o.OriginOfficeID(),
				DestinationOfficeID: o.DestinationOfficeID(),
				MaxWeight:           o.Weight(),
				TotalWeight:         o.Weight(),
				Orders:              []*order.Order{o},
				Oversize:            true,
			})
			oversize++
			continue
		}

		if current != nil && current.TotalWeight.Add(o.Weight()).IsGreaterThan(maxWeight) {
			flush()
		}
		if current == nil {
			current = &Plan{
				OriginOfficeID:      o.OriginOfficeID(),
				DestinationOfficeID: o.DestinationOfficeID(),
				MaxWeight:           maxWeight,
				TotalWeight:         kernel.ZeroWeight(),
			}
		}
		current.Orders = append(current.Orders, o)
		current.TotalWeight = current.TotalWeight.Add(o.Weight())
	}
	flush()

	return plans, oversize
}

func fifo(a, b *order.Order) int {
	if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
		return c
	}
	return a.ID().Compare(b.ID())
}
