package commands_test

import (
	"context"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

// Mock implementations for testing.
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Add(ctx context.Context, aggregate *batch.Batch) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockBatchRepository) Update(ctx context.Context, aggregate *batch.Batch) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockBatchRepository) Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*batch.Batch)
	return b, args.Error(1)
}

func (m *MockBatchRepository) GetByCode(ctx context.Context, code batch.Code) (*batch.Batch, error) {
	args := m.Called(ctx, code)
	b, _ := args.Get(0).(*batch.Batch)
	return b, args.Error(1)
}

func (m *MockBatchRepository) CodeExists(ctx context.Context, code batch.Code) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, ids)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) GetByBatch(ctx context.Context, batchID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, batchID)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) GetEligible(ctx context.Context, filter ports.EligibleOrdersFilter) ([]*order.Order, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

type MockUoW struct {
	mock.Mock
}

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) BatchRepository() ports.BatchRepository {
	args := m.Called()
	return args.Get(0).(ports.BatchRepository)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) PendingEvents() []batch.DomainEvent {
	args := m.Called()
	events, _ := args.Get(0).([]batch.DomainEvent)
	return events
}

type MockUoWFactory struct {
	mock.Mock
}

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Lock(ctx context.Context, destinationOfficeID kernel.UUID) (func(), error) {
	args := m.Called(ctx, destinationOfficeID)
	unlock, _ := args.Get(0).(func())
	return unlock, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, events ...batch.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockOfficeDirectory struct {
	mock.Mock
}

func (m *MockOfficeDirectory) Exists(ctx context.Context, officeID kernel.UUID) (bool, error) {
	args := m.Called(ctx, officeID)
	return args.Bool(0), args.Error(1)
}
