package main

import (
	"context"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/railseat/internal/adapter/cache"
	"github.com/srgjo27/railseat/internal/adapter/handler"
	"github.com/srgjo27/railseat/internal/adapter/repository/memory"
	"github.com/srgjo27/railseat/internal/adapter/repository/postgres"
	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/core/ports"
	"github.com/srgjo27/railseat/internal/core/services"
	"github.com/srgjo27/railseat/internal/platform/config"
	"github.com/srgjo27/railseat/internal/platform/database"
	"github.com/srgjo27/railseat/internal/platform/database/migrations"
	"github.com/srgjo27/railseat/internal/platform/logging"
)

const serviceName = "railseat"

var version = "dev"

type tripStore interface {
	ports.TripRegistry
	UpsertTrip(ctx context.Context, trip domain.Trip) error
}

type stores struct {
	trips        tripStore
	reservations ports.ReservationLedger
	orders       ports.OrderLedger
	close        func()
}

func openStores(ctx context.Context, cfg *config.Config, logger log.Logger) (*stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		store := memory.New(cfg.MemoryReplicas)
		return &stores{
			trips:        store,
			reservations: store.Reservations(),
			orders:       store.Orders(),
			close:        func() {},
		}, nil
	}

	cluster, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := migrations.Apply(ctx, cluster.Primary()); err != nil {
		cluster.Close()
		return nil, err
	}
	return &stores{
		trips:        postgres.NewTripRepository(cluster),
		reservations: postgres.NewReservationRepository(cluster),
		orders:       postgres.NewOrderRepository(cluster),
		close:        func() { cluster.Close() },
	}, nil
}

// connectCache returns nil when Redis is unreachable; snapshots are then
// computed on every request.
func connectCache(ctx context.Context, cfg *config.Config, helper *log.Helper) (ports.AvailabilityCache, func()) {
	helper.Infow("msg", "connecting to redis", "addr", cfg.RedisAddr)
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: 0})
	if err := client.Ping(ctx).Err(); err != nil {
		helper.Warnw("msg", "redis unavailable, availability cache disabled", "error", err)
		client.Close()
		return nil, func() {}
	}
	helper.Info("redis connected")
	return cache.NewAvailabilityCache(client, cfg.SnapshotTTL), func() { client.Close() }
}

func main() {
	bootstrap := log.NewHelper(log.NewStdLogger(os.Stderr))
	if err := config.LoadEnv(".env"); err != nil {
		bootstrap.Warnw("msg", "reading .env failed, using process environment", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		bootstrap.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(os.Stdout, serviceName, version, cfg.LogLevel)
	helper := log.NewHelper(log.With(logger, "module", "main"))
	ctx := context.Background()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		helper.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer st.close()

	for _, trip := range cfg.SeedTrips {
		if err := st.trips.UpsertTrip(domain.WithConsistency(ctx, domain.ConsistencyAll), trip); err != nil {
			helper.Fatalf("failed to seed trip %s: %v", trip.Key(), err)
		}
		helper.Infow("msg", "trip registered", "trip", trip.Key().String(), "cars", trip.Cars, "seats_per_car", trip.SeatsPerCar)
	}

	availabilityCache, closeCache := connectCache(ctx, cfg, helper)
	defer closeCache()

	query := services.NewCapacityQuery(st.trips, st.reservations, st.orders)

	// Trimming reads and writes at ALL so it sees every hold the planners
	// placed, whatever their own levels.
	resolverOpts := []services.ResolverOption{
		services.WithResolverConsistency(domain.ConsistencyAll, domain.ConsistencyAll),
		services.WithResolverOpTimeout(cfg.OpTimeout),
	}
	if availabilityCache != nil {
		resolverOpts = append(resolverOpts, services.WithResolverCache(availabilityCache))
	}
	resolver := services.NewResolver(query, st.reservations, logger, resolverOpts...)
	worker := services.NewResolverWorker(resolver, st.trips, cfg.ResolveInterval, logger)

	plannerOpts := []services.PlannerOption{
		services.WithReadConsistency(cfg.ReadConsistency),
		services.WithWriteConsistency(cfg.WriteConsistency),
		services.WithHoldTTL(cfg.HoldTTL),
		services.WithOpTimeout(cfg.OpTimeout),
		services.WithAttemptsPerCar(cfg.AttemptsPerCar),
		services.WithTripNotifier(worker.Notify),
	}
	if availabilityCache != nil {
		plannerOpts = append(plannerOpts, services.WithAvailabilityCache(availabilityCache))
	}
	planner := services.NewPlanner(query, st.reservations, st.orders, logger, plannerOpts...)
	availability := services.NewAvailabilityService(query, st.orders, availabilityCache, cfg.ReadConsistency, logger)

	router := handler.NewRouter(
		handler.NewPurchaseHandler(planner),
		handler.NewTripHandler(resolver, availability),
	)

	httpSrv := khttp.NewServer(
		khttp.Address(cfg.HTTPAddr),
		khttp.Timeout(cfg.RequestTimeout),
	)
	httpSrv.HandlePrefix("/", router)

	workerCtx, stopWorker := context.WithCancel(ctx)
	go worker.Run(workerCtx)

	app := kratos.New(
		kratos.Name(serviceName),
		kratos.Version(version),
		kratos.Logger(logger),
		kratos.Server(httpSrv),
	)

	helper.Infow("msg", "server starting", "addr", cfg.HTTPAddr, "driver", cfg.StoreDriver,
		"read_consistency", cfg.ReadConsistency.String(), "write_consistency", cfg.WriteConsistency.String())
	if err := app.Run(); err != nil {
		helper.Errorw("msg", "server stopped with error", "error", err)
	}
	stopWorker()
	helper.Info("server exiting")
}
