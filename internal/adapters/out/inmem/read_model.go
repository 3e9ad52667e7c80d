package inmem

import (
	"context"
	"slices"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/errs"
)

// ReadModel answers queries from committed state only.
type ReadModel struct {
	store *Store
}

func NewReadModel(store *Store) *ReadModel {
	return &ReadModel{store: store}
}

func (m *ReadModel) GetBatch(_ context.Context, id kernel.UUID, includeOrders bool) (ports.BatchView, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	rec, ok := m.store.batches[id]
	if !ok {
		return ports.BatchView{}, errs.NewObjectNotFoundError("batch", id.String())
	}
	return m.view(rec, includeOrders), nil
}

func (m *ReadModel) GetBatchByCode(_ context.Context, code batch.Code, includeOrders bool) (ports.BatchView, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	for _, rec := range m.store.batches {
		if rec.code == code {
			return m.view(rec, includeOrders), nil
		}
	}
	return ports.BatchView{}, errs.NewObjectNotFoundError("batchCode", code.String())
}

func (m *ReadModel) ListBatches(_ context.Context, filter ports.BatchListFilter) (ports.Page[ports.BatchView], error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	var matched []batchRecord
	for _, rec := range m.store.batches {
		switch {
		case filter.OriginOfficeID != nil && !rec.origin.IsEqual(*filter.OriginOfficeID):
		case filter.DestinationOfficeID != nil && !rec.destination.IsEqual(*filter.DestinationOfficeID):
		case filter.Status != nil && rec.status != *filter.Status:
		default:
			matched = append(matched, rec)
		}
	}
	slices.SortFunc(matched, newestFirst)

	from := len(matched)
	if filter.Size > 0 && filter.Page <= len(matched)/filter.Size {
		from = filter.Page * filter.Size
	}
	to := min(from+filter.Size, len(matched))

	items := make([]ports.BatchView, 0, to-from)
	for _, rec := range matched[from:to] {
		items = append(items, m.view(rec, filter.IncludeOrders))
	}
	return ports.NewPage(items, filter.Page, filter.Size, int64(len(matched))), nil
}

func (m *ReadModel) UnbatchedOrders(_ context.Context, filter ports.EligibleOrdersFilter) ([]ports.OrderView, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	var recs []orderRecord
	for _, rec := range m.store.orders {
		if eligible(rec, filter) {
			recs = append(recs, rec)
		}
	}
	slices.SortFunc(recs, fifo)

	out := make([]ports.OrderView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, orderView(rec))
	}
	return out, nil
}

func (m *ReadModel) DestinationsWithUnbatchedOrders(
	_ context.Context,
	originOfficeID *kernel.UUID,
) ([]ports.DestinationSummary, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	filter := ports.EligibleOrdersFilter{OriginOfficeID: originOfficeID}
	byDestination := make(map[kernel.UUID]*ports.DestinationSummary)
	for _, rec := range m.store.orders {
		if !eligible(rec, filter) {
			continue
		}
		s, ok := byDestination[rec.destination]
		if !ok {
			s = &ports.DestinationSummary{
				DestinationOfficeID: rec.destination,
				TotalWeight:         kernel.ZeroWeight(),
				OldestCreatedAt:     rec.createdAt,
			}
			byDestination[rec.destination] = s
		}
		s.OrderCount++
		s.TotalWeight = s.TotalWeight.Add(rec.weight)
		if rec.createdAt.Before(s.OldestCreatedAt) {
			s.OldestCreatedAt = rec.createdAt
		}
	}

	for _, rec := range m.store.batches {
		if rec.status != batch.Open {
			continue
		}
		if originOfficeID != nil && !rec.origin.IsEqual(*originOfficeID) {
			continue
		}
		if s, ok := byDestination[rec.destination]; ok {
			s.OpenBatchCount++
		}
	}

	out := make([]ports.DestinationSummary, 0, len(byDestination))
	for _, s := range byDestination {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b ports.DestinationSummary) int {
		if c := a.OldestCreatedAt.Compare(b.OldestCreatedAt); c != 0 {
			return c
		}
		return a.DestinationOfficeID.Compare(b.DestinationOfficeID)
	})
	return out, nil
}

// view must be called with the store lock held.
func (m *ReadModel) view(rec batchRecord, includeOrders bool) ports.BatchView {
	v := ports.BatchView{
		ID:                  rec.id,
		Code:                rec.code,
		Status:              rec.status,
		OriginOfficeID:      rec.origin,
		DestinationOfficeID: rec.destination,
		MaxWeight:           rec.maxWeight,
		TotalWeight:         rec.totalWeight,
		OrderCount:          len(rec.members),
		CreatedAt:           rec.createdAt,
		UpdatedAt:           rec.updatedAt,
	}
	if !includeOrders {
		return v
	}

	members := make([]orderRecord, 0, len(rec.members))
	for _, mem := range rec.members {
		if o, ok := m.store.orders[mem.OrderID]; ok {
			members = append(members, o)
		}
	}
	slices.SortFunc(members, fifo)

	v.Orders = make([]ports.OrderView, 0, len(members))
	for _, o := range members {
		v.Orders = append(v.Orders, orderView(o))
	}
	return v
}

func orderView(rec orderRecord) ports.OrderView {
	return ports.OrderView{
		ID:                  rec.id,
		TrackingNumber:      rec.trackingNumber,
		Weight:              rec.weight,
		OriginOfficeID:      rec.origin,
		DestinationOfficeID: rec.destination,
		Status:              rec.status,
		CreatedAt:           rec.createdAt,
	}
}
