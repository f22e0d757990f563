package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/asquebay/order-query-service/internal/config"
	"github.com/asquebay/order-query-service/internal/filter"
	"github.com/asquebay/order-query-service/internal/lib/fileio"
	"github.com/asquebay/order-query-service/internal/lib/logger"
	"github.com/asquebay/order-query-service/internal/metrics"
	"github.com/asquebay/order-query-service/internal/repository/cache"
	"github.com/asquebay/order-query-service/internal/repository/memory"
	"github.com/asquebay/order-query-service/internal/repository/postgres"
	"github.com/asquebay/order-query-service/internal/service"
	httptransport "github.com/asquebay/order-query-service/internal/transport/http"
	"github.com/asquebay/order-query-service/internal/transport/kafka"
	"github.com/asquebay/order-query-service/internal/validation"
)

func main() {
	// 1. Инициализация конфигурации
	cfg := config.MustLoad(config.Path("config/config.yaml"))

	// 2. Инициализация логгера
	log := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	log.Info("starting order-query-service",
		slog.String("log_level", cfg.Logger.Level),
		slog.String("storage", cfg.Storage.Driver),
	)

	// 3. Инициализация хранилищ
	orderRepo, customerRepo, closeStorage, err := newRepositories(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to init storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStorage()

	// 4. Инициализация кэша, валидации и метрик
	orderCache := cache.NewOrderCache()
	engine := validation.New(customerRepo, validation.WithMessages(cfg.Validation.Messages))
	registry := prometheus.NewRegistry()
	importMetrics := metrics.NewImportMetrics(registry)
	decoder := fileio.NewJSONDecoder()

	// 5. Инициализация сервисного слоя
	orderSvc := service.NewOrderService(orderRepo, customerRepo, orderCache, engine, decoder, importMetrics, log)
	customerSvc := service.NewCustomerService(customerRepo, orderCache, engine, log)

	// 6. Восстановление кэша при старте
	if err := orderSvc.RestoreCache(context.Background()); err != nil {
		// не фатальная ошибка, сервис может работать и с пустым кэшем
		log.Error("failed to restore cache", slog.String("error", err.Error()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	// 7. Kafka-консьюмер пакетов импорта
	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		consumer = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, orderSvc, decoder, log)
		g.Go(func() error {
			consumer.Run(gctx)
			return nil
		})
	}

	// 8. HTTP-сервер
	handler := httptransport.NewHandler(orderSvc, customerSvc, httptransport.Options{
		Filter:          filter.ParseOptions{RejectUnknown: cfg.Filter.RejectUnknownKeys},
		DefaultPageSize: cfg.Pagination.DefaultSize,
		MaxUploadSize:   cfg.HTTPServer.MaxUploadSize,
		Metrics:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		MetricsPath:     cfg.Metrics.Path,
	}, log)
	httpServer := httptransport.NewServer(cfg.HTTPServer.Port, handler, cfg.HTTPServer.Timeout)

	g.Go(func() error {
		log.Info("starting http server", slog.String("port", cfg.HTTPServer.Port))
		if err := httpServer.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 9. Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down application")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("http server shutdown failed", slog.String("error", err.Error()))
		}
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				log.Error("error closing kafka consumer", slog.String("error", err.Error()))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("application stopped with error", slog.String("error", err.Error()))
		closeStorage()
		os.Exit(1)
	}

	log.Info("application stopped")
}

// newRepositories выбирает реализацию хранилищ по storage.driver
func newRepositories(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
) (service.OrderRepository, service.CustomerRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		log.Info("using in-memory storage")
		return memory.NewOrderRepository(store),
			memory.NewCustomerRepository(store),
			func() {},
			nil
	default:
		dbpool, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info("successfully connected to postgres")
		return postgres.NewOrderRepository(dbpool),
			postgres.NewCustomerRepository(dbpool),
			dbpool.Close,
			nil
	}
}
