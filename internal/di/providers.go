package di

import (
	"context"
	"fmt"
	"os"
	"time"

	domrepo "FinDash/internal/domain/repository"
	"FinDash/internal/handler/api"
	mid "FinDash/internal/middleware"
	internalrepo "FinDash/internal/repository"
	icache "FinDash/internal/service/cache"
	"FinDash/internal/service/live"
	"FinDash/internal/service/ratelimit"
	"FinDash/internal/services/provider"
	"FinDash/internal/usecase"
	pkgcache "FinDash/pkg/cache"
	pkgch "FinDash/pkg/clickhouse"
	"FinDash/pkg/config"
	xhttp "FinDash/pkg/http"
	pkgkafka "FinDash/pkg/kafka"
	applogger "FinDash/pkg/logger"
	"FinDash/pkg/metrics"
	pkgmongo "FinDash/pkg/mongo"
	"FinDash/pkg/server"

	kafkago "github.com/segmentio/kafka-go"
)

const initTimeout = 10 * time.Second

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New(nil)
}

// ProvideMongoClient connects to the document store.
func ProvideMongoClient(cfg *config.Config) (*pkgmongo.Client, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout+initTimeout)
	defer cancel()

	client, err := pkgmongo.NewClient(ctx,
		pkgmongo.WithURI(cfg.Mongo.URI),
		pkgmongo.WithDatabase(cfg.Mongo.Database),
		pkgmongo.WithConnectTimeout(cfg.Mongo.ConnectTimeout),
		pkgmongo.WithMaxPoolSize(cfg.Mongo.MaxPoolSize),
		pkgmongo.WithAppName("findash-"+cfg.Environment),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo client: %w", err)
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		_ = client.Close(ctx)
	}
	return client, cleanup, nil
}

// ProvideDashboardStore creates the MongoDB-backed dashboard store.
func ProvideDashboardStore(client *pkgmongo.Client, l *applogger.Logger) domrepo.DashboardStore {
	return internalrepo.NewMongoStore(client, l)
}

// ProvideCacheBackend builds the query cache backend: in-memory, layered
// over Redis when Redis is enabled.
func ProvideCacheBackend(cfg *config.Config) (pkgcache.Service, func(), error) {
	if !cfg.Redis.Enabled {
		mem := pkgcache.NewMemoryCache(
			pkgcache.WithMemoryMaxSize(cfg.Cache.MaxEntries),
			pkgcache.WithMemoryCleanup(cfg.Cache.CleanupInterval),
			pkgcache.WithMemoryDefaultTTL(cfg.Cache.TTL),
		)
		return mem, func() { _ = mem.Close() }, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	rc, err := pkgcache.NewRedisCache(ctx,
		pkgcache.WithRedisAddr(cfg.Redis.Addr),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
		pkgcache.WithRedisPool(cfg.Redis.Pool.Size, cfg.Redis.Pool.MinIdle, cfg.Redis.Pool.Timeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	layered := pkgcache.NewLayeredCache(rc,
		pkgcache.WithLayeredMemorySize(cfg.Cache.MaxEntries),
		pkgcache.WithLayeredMemoryTTL(cfg.Cache.LocalTTL),
	)
	return layered, func() { _ = layered.Close() }, nil
}

func ProvideQueryCache(backend pkgcache.Service, m domrepo.Metrics, l *applogger.Logger) *icache.QueryCache {
	return icache.NewQueryCache(backend, m, l)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// forecast archive is not backed by ClickHouse.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled || !cfg.Forecast.Archive {
		return nil, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideForecastArchive picks ClickHouse when available, otherwise an
// in-process archive. Archiving can be switched off entirely.
func ProvideForecastArchive(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (domrepo.ForecastArchive, error) {
	if !cfg.Forecast.Archive {
		return nil, nil
	}
	if ch == nil {
		return internalrepo.NewMemoryArchive(100), nil
	}

	archive := internalrepo.NewCHForecastArchive(ch, l)
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := archive.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return archive, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideKafkaConsumer creates a Kafka consumer, or nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.ConsumerGroupID(os.Hostname)),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetHook(pkgkafka.HookFuncs{
		After: func(_ context.Context, km kafkago.Message, err error) {
			if err != nil {
				l.Warn("change event failed",
					applogger.String("topic", km.Topic),
					applogger.String("reason", pkgkafka.Header(km, internalrepo.ReasonHeader)),
					applogger.Int64("offset", km.Offset),
					applogger.Error(err))
			}
		},
	})
	return consumer, nil
}

// ProvideRevenueProvider reads revenue from the local store or from a
// remote dashboard instance.
func ProvideRevenueProvider(cfg *config.Config, store domrepo.DashboardStore) provider.RevenueProvider {
	if cfg.Provider.Type == "http" {
		return provider.NewHTTPProvider(xhttp.NewClient(
			xhttp.WithBaseURL(cfg.Provider.BaseURL),
			xhttp.WithTimeout(cfg.Provider.Timeout),
		))
	}
	return provider.NewStoreProvider(store)
}

// ProvideForecastPublisher announces forecasts on Kafka; nil without Kafka.
func ProvideForecastPublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.ForecastPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topics.Changes, cfg.Kafka.Topics.Forecasts)
}

func ProvideLiveHub(cfg *config.Config, l *applogger.Logger) *live.Hub {
	return live.NewHub(l, cfg.Live.PingInterval, cfg.Live.WriteTimeout)
}

func ProvideForecastUseCase(
	cfg *config.Config,
	p provider.RevenueProvider,
	cache *icache.QueryCache,
	archive domrepo.ForecastArchive,
	publisher domrepo.ForecastPublisher,
	m domrepo.Metrics,
	hub *live.Hub,
	l *applogger.Logger,
) *usecase.ForecastUseCase {
	uc := usecase.NewForecastUseCase(p, cache, archive, publisher, m, usecase.ForecastConfig{
		DefaultOffset: cfg.Forecast.Offset,
		CacheTTL:      cfg.Forecast.CacheTTL,
	}, l)
	uc.SetBroadcaster(hub)
	return uc
}

func ProvideDashboardUseCase(cfg *config.Config, store domrepo.DashboardStore, cache *icache.QueryCache) *usecase.DashboardUseCase {
	return usecase.NewDashboardUseCase(store, cache, cfg.Cache.TTL)
}

func ProvideChangesHandler(cfg *config.Config, cache *icache.QueryCache, f *usecase.ForecastUseCase, l *applogger.Logger) *usecase.ChangesHandler {
	return usecase.NewChangesHandler(cfg.Kafka.Topics.Changes, cache, f, l)
}

// ProvideChangePublisher sends change events through Kafka, or applies them
// in process when Kafka is disabled.
func ProvideChangePublisher(cfg *config.Config, producer *pkgkafka.Producer, h *usecase.ChangesHandler) domrepo.ChangePublisher {
	if producer == nil {
		return internalrepo.NewLocalPublisher(h)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topics.Changes, cfg.Kafka.Topics.Forecasts)
}

func ProvideSeedUseCase(store domrepo.DashboardStore, p domrepo.ChangePublisher, l *applogger.Logger) *usecase.SeedUseCase {
	return usecase.NewSeedUseCase(store, p, l)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
}

// ProvideHTTPServer builds the echo server with every API handler.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	dash *usecase.DashboardUseCase,
	f *usecase.ForecastUseCase,
	hub *live.Hub,
	limiter *ratelimit.Limiter,
) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(metricsPath),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
	}
	if limiter != nil {
		opts = append(opts, xhttp.WithMiddleware(mid.RateLimit(limiter, "/healthz", metricsPath)))
	}

	return xhttp.NewServer(l, []xhttp.Handler{
		api.NewDashboardHandler(l, dash),
		api.NewForecastHandler(l, f, hub),
	}, opts...)
}

// ProvideApp assembles the application and attaches the error log collector
// when it is enabled.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	hub *live.Hub,
	consumer *pkgkafka.Consumer,
	changes *usecase.ChangesHandler,
	seed *usecase.SeedUseCase,
	producer *pkgkafka.Producer,
	limiter *ratelimit.Limiter,
) *server.App {
	if cfg.Logging.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.CountThreshold,
			Topic:          cfg.Logging.Collector.Topic,
			Publisher:      producer,
		})
	}
	return server.New(cfg, l, srv, hub, consumer, changes, seed, limiter)
}
