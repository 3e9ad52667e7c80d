package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"consolidation/internal/adapters/out/inmem"
	"consolidation/internal/adapters/out/locks/memlock"
	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/ports"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

type uowFactory func() commands.UoW

func (f uowFactory) Create() commands.UoW { return f() }

type recordingPublisher struct {
	mu     sync.Mutex
	events []batch.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...batch.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) Events() []batch.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]batch.DomainEvent(nil), p.events...)
}

// harness wires handlers over the in-memory store and the in-process locker.
type harness struct {
	store       *inmem.Store
	factory     uowFactory
	publisher   *recordingPublisher
	coordinator *commands.DestinationCoordinator
	origin      kernel.UUID
	destination kernel.UUID
}

func newHarness() *harness {
	store := inmem.NewStore()
	uows := inmem.NewUnitOfWorkFactory(store)
	factory := uowFactory(func() commands.UoW { return uows.Create() })
	publisher := &recordingPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &harness{
		store:     store,
		factory:   factory,
		publisher: publisher,
		coordinator: commands.NewDestinationCoordinator(
			factory,
			memlock.NewLocker(5*time.Second),
			publisher,
			logger,
			commands.WithClock(func() time.Time { return baseTime }),
		),
		origin:      kernel.NewUUID(),
		destination: kernel.NewUUID(),
	}
}

func (h *harness) seedOrder(t *testing.T, destination kernel.UUID, kg float64, createdAt time.Time) *order.Order {
	t.Helper()
	w, err := kernel.NewWeightFromKg(kg)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), "VN-"+kernel.NewUUID().Short(), w, h.origin, destination, createdAt)
	require.NoError(t, err)
	require.NoError(t, h.factory.Create().OrderRepository().Add(context.Background(), o))
	return o
}

func (h *harness) seedOrders(t *testing.T, kgs ...float64) []*order.Order {
	t.Helper()
	orders := make([]*order.Order, 0, len(kgs))
	for i, kg := range kgs {
		orders = append(orders, h.seedOrder(t, h.destination, kg, baseTime.Add(time.Duration(i)*time.Minute)))
	}
	return orders
}

func (h *harness) batch(t *testing.T, id kernel.UUID) *batch.Batch {
	t.Helper()
	b, err := h.factory.Create().BatchRepository().Get(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (h *harness) order(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	o, err := h.factory.Create().OrderRepository().Get(context.Background(), id)
	require.NoError(t, err)
	return o
}

func (h *harness) createBatch(t *testing.T, maxKg float64, orders ...*order.Order) *batch.Batch {
	t.Helper()
	cmd, err := commands.NewCreateBatchCommand(h.origin, h.destination, maxKg, idsOf(orders))
	require.NoError(t, err)
	b, err := commands.NewCreateBatchCommandHandler(h.coordinator, allOffices{}).Handle(t.Context(), cmd)
	require.NoError(t, err)
	return b
}

func (h *harness) changeStatus(t *testing.T, id kernel.UUID, actions ...commands.BatchAction) *batch.Batch {
	t.Helper()
	handler := commands.NewChangeBatchStatusCommandHandler(h.coordinator)
	var b *batch.Batch
	for _, action := range actions {
		cmd, err := commands.NewChangeBatchStatusCommand(id, action)
		require.NoError(t, err)
		b, err = handler.Handle(t.Context(), cmd)
		require.NoError(t, err)
	}
	return b
}

type allOffices struct{}

func (allOffices) Exists(context.Context, kernel.UUID) (bool, error) { return true, nil }

// batches lists every committed batch leaving the harness origin, newest first.
func (h *harness) batches(t *testing.T) []ports.BatchView {
	t.Helper()
	page, err := inmem.NewReadModel(h.store).ListBatches(context.Background(), ports.BatchListFilter{
		OriginOfficeID: &h.origin,
		Size:           10_000,
		IncludeOrders:  true,
	})
	require.NoError(t, err)
	return page.Items
}

func (h *harness) unbatched(t *testing.T) []ports.OrderView {
	t.Helper()
	views, err := inmem.NewReadModel(h.store).UnbatchedOrders(context.Background(), ports.EligibleOrdersFilter{
		OriginOfficeID: &h.origin,
	})
	require.NoError(t, err)
	return views
}

func idsOf(orders []*order.Order) []kernel.UUID {
	out := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID())
	}
	return out
}
