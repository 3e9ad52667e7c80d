package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	httpadapter "consolidation/internal/adapters/in/http"
	kafkain "consolidation/internal/adapters/in/kafka"
	"consolidation/internal/adapters/out/eventlog"
	"consolidation/internal/adapters/out/inmem"
	kafkaout "consolidation/internal/adapters/out/kafka"
	"consolidation/internal/adapters/out/locks/memlock"
	"consolidation/internal/adapters/out/locks/redislock"
	"consolidation/internal/adapters/out/officedir"
	"consolidation/internal/adapters/out/postgres"
	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/application/usecases/queries"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"
	"consolidation/internal/jobs"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot owns the adapters picked by Config and builds the use
// cases on top of them.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	uowFactory  ports.UnitOfWorkFactory
	readModel   ports.BatchReadModel
	locker      ports.DestinationLocker
	publisher   ports.EventPublisher
	offices     ports.OfficeDirectory
	coordinator *commands.DestinationCoordinator

	closers []func() error
}

// NewCompositionRoot wires storage, locking and event publishing. gormDB is
// only used with the postgres storage driver and may be nil otherwise.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:     cfg,
		logger:  logger,
		offices: officedir.NewStatic(cfg.OfficeIDs),
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if gormDB == nil {
			return nil, errors.New("postgres storage needs a database connection")
		}
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB)
		c.readModel = postgres.NewReadModel(gormDB)
	case StorageDriverMemory:
		store := inmem.NewStore()
		c.uowFactory = inmem.NewUnitOfWorkFactory(store)
		c.readModel = inmem.NewReadModel(store)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	switch cfg.LockBackend {
	case LockBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		c.closers = append(c.closers, client.Close)
		c.locker = redislock.NewLocker(client, redislock.Config{Wait: cfg.LockWaitTimeout}, logger)
	default:
		c.locker = memlock.NewLocker(cfg.LockWaitTimeout)
	}

	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		publisher := kafkaout.NewEventPublisher(kafkaout.NewWriter(brokers, cfg.KafkaOrderEventsTopic))
		c.closers = append(c.closers, publisher.Close)
		c.publisher = publisher
	} else {
		c.publisher = eventlog.NewPublisher(logger)
	}

	c.coordinator = commands.NewDestinationCoordinator(
		FuncUoWFactory(func() commands.UoW { return c.uowFactory.Create() }),
		c.locker,
		c.publisher,
		logger,
	)
	return c, nil
}

// Close releases the connections opened by the root.
func (c *CompositionRoot) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *CompositionRoot) CreateCreateBatchCommandHandler() commands.CreateBatchCommandHandler {
	return commands.NewCreateBatchCommandHandler(c.coordinator, c.offices)
}

func (c *CompositionRoot) CreateAddOrdersToBatchCommandHandler() commands.AddOrdersToBatchCommandHandler {
	return commands.NewAddOrdersToBatchCommandHandler(c.coordinator)
}

func (c *CompositionRoot) CreateRemoveOrderFromBatchCommandHandler() commands.RemoveOrderFromBatchCommandHandler {
	return commands.NewRemoveOrderFromBatchCommandHandler(c.coordinator)
}

func (c *CompositionRoot) CreateChangeBatchStatusCommandHandler() commands.ChangeBatchStatusCommandHandler {
	return commands.NewChangeBatchStatusCommandHandler(c.coordinator)
}

func (c *CompositionRoot) CreateAutoBatchOrdersCommandHandler() (commands.AutoBatchOrdersCommandHandler, error) {
	weight, err := kernel.NewWeightFromKg(c.cfg.DefaultMaxBatchWeightKg)
	if err != nil {
		return commands.AutoBatchOrdersCommandHandler{}, fmt.Errorf("DEFAULT_MAX_BATCH_WEIGHT_KG: %w", err)
	}
	return commands.NewAutoBatchOrdersCommandHandler(c.coordinator, weight, commands.DefaultAutoBatchParallelism), nil
}

func (c *CompositionRoot) CreateRegisterOrderCommandHandler() commands.RegisterOrderCommandHandler {
	return commands.NewRegisterOrderCommandHandler(c.coordinator)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(c.coordinator)
}

func (c *CompositionRoot) CreateGetBatchQueryHandler() queries.GetBatchQueryHandler {
	return queries.NewGetBatchQueryHandler(c.readModel)
}

func (c *CompositionRoot) CreateListBatchesQueryHandler() queries.ListBatchesQueryHandler {
	return queries.NewListBatchesQueryHandler(c.readModel)
}

func (c *CompositionRoot) CreateGetUnbatchedOrdersQueryHandler() queries.GetUnbatchedOrdersQueryHandler {
	return queries.NewGetUnbatchedOrdersQueryHandler(c.readModel)
}

func (c *CompositionRoot) CreateGetDestinationsWithUnbatchedOrdersQueryHandler() queries.GetDestinationsWithUnbatchedOrdersQueryHandler {
	return queries.NewGetDestinationsWithUnbatchedOrdersQueryHandler(c.readModel)
}

// CreateRouter builds the echo instance serving the REST API.
func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	autoBatch, err := c.CreateAutoBatchOrdersCommandHandler()
	if err != nil {
		return nil, err
	}
	server := httpadapter.NewServer(httpadapter.Handlers{
		CreateBatch:          c.CreateCreateBatchCommandHandler(),
		AddOrdersToBatch:     c.CreateAddOrdersToBatchCommandHandler(),
		RemoveOrderFromBatch: c.CreateRemoveOrderFromBatchCommandHandler(),
		ChangeBatchStatus:    c.CreateChangeBatchStatusCommandHandler(),
		AutoBatchOrders:      autoBatch,
		RegisterOrder:        c.CreateRegisterOrderCommandHandler(),
		ChangeOrderStatus:    c.CreateChangeOrderStatusCommandHandler(),
		GetBatch:             c.CreateGetBatchQueryHandler(),
		ListBatches:          c.CreateListBatchesQueryHandler(),
		UnbatchedOrders:      c.CreateGetUnbatchedOrdersQueryHandler(),
		Destinations:         c.CreateGetDestinationsWithUnbatchedOrdersQueryHandler(),
	})
	return httpadapter.NewRouter(server, c.logger)
}

func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	autoBatch, err := c.CreateAutoBatchOrdersCommandHandler()
	if err != nil {
		return nil, err
	}
	return jobs.NewJobManager(
		autoBatch,
		c.cfg.AutoBatchCron,
		c.CreateGetDestinationsWithUnbatchedOrdersQueryHandler(),
		c.logger,
	), nil
}

// CreateOrderConsumer returns nil when no intake topic is configured.
func (c *CompositionRoot) CreateOrderConsumer() *kafkain.OrderConsumer {
	brokers := c.cfg.KafkaBrokers()
	if len(brokers) == 0 || c.cfg.KafkaOrderIntakeTopic == "" {
		return nil
	}
	reader := kafkain.NewReader(brokers, c.cfg.KafkaOrderIntakeTopic, c.cfg.KafkaConsumerGroup)
	return kafkain.NewOrderConsumer(
		reader,
		c.CreateRegisterOrderCommandHandler(),
		c.CreateChangeOrderStatusCommandHandler(),
		c.logger,
	)
}

// FuncUoWFactory adapts a function to commands.UoWFactory.
type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
