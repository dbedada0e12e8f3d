package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/nikolayk812/storefront/internal/messaging"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/nikolayk812/storefront/internal/telemetry"
	"github.com/nikolayk812/storefront/internal/transport/http/handler"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}

	l, err := logger.New(logger.Config{Level: cfg.LogLevel, Env: cfg.Env})
	if err != nil {
		log.Fatalf("logger.New: %v", err)
	}
	defer func() { _ = l.Sync() }()

	if err := run(cfg, l); err != nil {
		l.Error("storefront stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, l *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName, version)
		if err != nil {
			return fmt.Errorf("telemetry.InitTracerProvider: %w", err)
		}
		defer shutdownWithTimeout(l, "tracer provider", shutdownTracer)
	}

	metricsHandler, meterProvider, err := telemetry.InitMeterProvider(cfg.Telemetry.ServiceName, version)
	if err != nil {
		return fmt.Errorf("telemetry.InitMeterProvider: %w", err)
	}
	defer shutdownWithTimeout(l, "meter provider", meterProvider.Shutdown)

	metrics, err := telemetry.NewMetrics(meterProvider)
	if err != nil {
		return fmt.Errorf("telemetry.NewMetrics: %w", err)
	}

	cur, err := cfg.Store.CurrencyUnit()
	if err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.Postgres.URL,
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	if err != nil {
		return fmt.Errorf("db.NewPool: %w", err)
	}
	defer pool.Close()

	products, closeProducts, err := newProductRepository(ctx, cfg, pool, l)
	if err != nil {
		return err
	}
	defer closeProducts()

	var events port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := producer.Close(); err != nil {
				l.Warn("failed to close kafka producer", zap.Error(err))
			}
		}()
		events = producer
		l.Info("order events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	cartService := service.NewCartService(repository.NewCart(pool, cur), products, metrics, l)
	orderService := service.NewOrderService(repository.NewOrder(pool), repository.NewUnitOfWork(pool, cur), events, metrics, l)

	h := handler.NewHandler(cartService, orderService, pool, l)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler.NewRouter(h, []byte(cfg.Auth.JWTSecret), metricsHandler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		l.Info("starting storefront", zap.String("addr", cfg.HTTP.Addr), zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}

	return nil
}

// newProductRepository reads products from Postgres unless a remote catalog is
// configured, and puts a Redis cache in front when Redis is configured.
func newProductRepository(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, l *zap.Logger) (port.ProductRepository, func(), error) {
	var products port.ProductRepository

	if cfg.Catalog.URL != "" {
		client, err := catalog.NewClient(cfg.Catalog.URL, cfg.Catalog.Timeout, l)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog.NewClient: %w", err)
		}
		products = client
		l.Info("using remote catalog", zap.String("url", cfg.Catalog.URL))
	} else {
		products = repository.NewProduct(pool)
	}

	if cfg.Redis.Addr == "" {
		return products, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		l.Warn("redis is unreachable, product lookups will bypass the cache", zap.Error(err))
	}

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			l.Warn("failed to close redis client", zap.Error(err))
		}
	}

	return catalog.NewCached(products, rdb, cfg.Redis.TTL, l), closeFn, nil
}

func shutdownWithTimeout(l *zap.Logger, name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		l.Warn("shutdown failed", zap.String("component", name), zap.Error(err))
	}
}
