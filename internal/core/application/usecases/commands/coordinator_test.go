package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CoordinatorTestSuite struct {
	suite.Suite

	factory     *MockUoWFactory
	uow         *MockUoW
	locker      *MockLocker
	publisher   *MockPublisher
	coordinator *commands.DestinationCoordinator
	destination kernel.UUID
	unlocked    int
}

func TestCoordinatorTestSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorTestSuite))
}

func (s *CoordinatorTestSuite) SetupTest() {
	s.factory = new(MockUoWFactory)
	s.uow = new(MockUoW)
	s.locker = new(MockLocker)
	s.publisher = new(MockPublisher)
	s.destination = kernel.NewUUID()
	s.unlocked = 0
	s.coordinator = commands.NewDestinationCoordinator(
		s.factory, s.locker, s.publisher,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func (s *CoordinatorTestSuite) TearDownTest() {
	s.factory.AssertExpectations(s.T())
	s.uow.AssertExpectations(s.T())
	s.locker.AssertExpectations(s.T())
	s.publisher.AssertExpectations(s.T())
}

func (s *CoordinatorTestSuite) expectLock() {
	s.locker.On("Lock", mock.Anything, s.destination).
		Return(func() { s.unlocked++ }, nil).Once()
	s.factory.On("Create").Return(s.uow).Once()
	s.uow.On("Begin", mock.Anything).Return(nil).Once()
	s.uow.On("Rollback", mock.Anything).Return(nil).Once()
}

func (s *CoordinatorTestSuite) TestBusyDestinationSkipsUnitOfWork() {
	s.locker.On("Lock", mock.Anything, s.destination).Return(nil, ports.ErrBusy).Once()
	called := false

	err := s.coordinator.Execute(s.T().Context(), "test", s.destination, func(context.Context, commands.UoW) error {
		called = true
		return nil
	})

	s.Require().ErrorIs(err, ports.ErrBusy)
	s.False(called)
	s.factory.AssertNotCalled(s.T(), "Create")
}

func (s *CoordinatorTestSuite) TestFailedMutationRollsBackWithoutPublishing() {
	s.expectLock()
	boom := errors.New("boom")

	err := s.coordinator.Execute(s.T().Context(), "test", s.destination, func(context.Context, commands.UoW) error {
		return boom
	})

	s.Require().ErrorIs(err, boom)
	s.uow.AssertNotCalled(s.T(), "Commit", mock.Anything)
	s.publisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
	s.Equal(1, s.unlocked)
}

func (s *CoordinatorTestSuite) TestInvariantViolationIsReturned() {
	s.expectLock()

	err := s.coordinator.Execute(s.T().Context(), "test", s.destination, func(context.Context, commands.UoW) error {
		return batch.ErrInvariantViolated
	})

	s.ErrorIs(err, batch.ErrInvariantViolated)
	s.Equal(1, s.unlocked)
}

func (s *CoordinatorTestSuite) TestCommitThenPublish() {
	s.expectLock()
	event := batch.StatusChanged{BatchID: kernel.NewUUID(), From: batch.Open, To: batch.Sealed, At: baseTime}
	s.uow.On("Commit", mock.Anything).Return(nil).Once()
	s.uow.On("PendingEvents").Return([]batch.DomainEvent{event}).Once()
	s.publisher.On("Publish", mock.Anything, []batch.DomainEvent{event}).Return(nil).Once()

	err := s.coordinator.Execute(s.T().Context(), "test", s.destination, func(context.Context, commands.UoW) error {
		return nil
	})

	s.Require().NoError(err)
	s.Equal(1, s.unlocked)
}

func (s *CoordinatorTestSuite) TestPublishFailureDoesNotFailCommittedOperation() {
	s.expectLock()
	event := batch.StatusChanged{BatchID: kernel.NewUUID(), From: batch.Sealed, To: batch.InTransit, At: baseTime}
	s.uow.On("Commit", mock.Anything).Return(nil).Once()
	s.uow.On("PendingEvents").Return([]batch.DomainEvent{event}).Once()
	s.publisher.On("Publish", mock.Anything, []batch.DomainEvent{event}).Return(errors.New("broker down")).Once()

	err := s.coordinator.Execute(s.T().Context(), "test", s.destination, func(context.Context, commands.UoW) error {
		return nil
	})

	s.NoError(err)
}

func (s *CoordinatorTestSuite) TestNoEventsNoPublish() {
	s.expectLock()
	s.uow.On("Commit", mock.Anything).Return(nil).Once()
	s.uow.On("PendingEvents").Return(nil).Once()

	err := s.coordinator.Execute(s.T().Context(), "test", s.destination, func(context.Context, commands.UoW) error {
		return nil
	})

	s.NoError(err)
	s.publisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *CoordinatorTestSuite) TestCommitFailureIsReturned() {
	s.expectLock()
	s.uow.On("Commit", mock.Anything).Return(errors.New("serialization failure")).Once()

	err := s.coordinator.Execute(s.T().Context(), "test", s.destination, func(context.Context, commands.UoW) error {
		return nil
	})

	s.EqualError(err, "serialization failure")
	s.Equal(1, s.unlocked)
}

func TestDestinationCoordinator_NowIsUTC(t *testing.T) {
	local := baseTime.In(mustLocation(t, "Asia/Ho_Chi_Minh"))
	c := commands.NewDestinationCoordinator(nil, nil, nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		commands.WithClock(func() time.Time { return local }))

	now := c.Now()

	assert.Equal(t, time.UTC, now.Location())
	assert.True(t, now.Equal(baseTime))
}

func TestDestinationCoordinator_DestinationOfBatch(t *testing.T) {
	h := newHarness()
	b := h.createBatch(t, 10)

	destination, err := h.coordinator.DestinationOfBatch(t.Context(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, h.destination, destination)

	_, err = h.coordinator.DestinationOfBatch(t.Context(), kernel.NewUUID())
	assert.Error(t, err)
}

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 7*60*60)
	}
	return loc
}
