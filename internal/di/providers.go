package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	kafkago "github.com/segmentio/kafka-go"

	"BetPulse/internal/domain/repository"
	"BetPulse/internal/handler/api"
	internalrepo "BetPulse/internal/repository"
	svcmetrics "BetPulse/internal/service/metrics"
	"BetPulse/internal/service/ratelimit"
	"BetPulse/internal/usecase"
	"BetPulse/pkg/cache"
	pkgch "BetPulse/pkg/clickhouse"
	"BetPulse/pkg/config"
	xhttp "BetPulse/pkg/http"
	pkgkafka "BetPulse/pkg/kafka"
	"BetPulse/pkg/logger"
	"BetPulse/pkg/metrics"
	"BetPulse/pkg/server"
)

// ProvideLogger creates the root structured logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
		Compress:   cfg.Logger.Compress,
	})
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.New(reg)
}

// ProvideDomainMetrics exposes the recorder as the domain Metrics capability.
func ProvideDomainMetrics(r *metrics.Recorder) repository.Metrics {
	return r
}

// ProvideAPIMetrics creates the analytics endpoint collectors.
func ProvideAPIMetrics(reg *prometheus.Registry) *svcmetrics.APIMetrics {
	return svcmetrics.NewAPIMetrics(reg)
}

// ProvideCacheStore builds the fetch client's response cache.
func ProvideCacheStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "redis", "layered":
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
			cache.WithRedisPool(cfg.Cache.Redis.PoolSize, cfg.Cache.Redis.PoolSize/2, 30*time.Second),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if cfg.Cache.Backend == "redis" {
			return rc, nil
		}
		return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize)), nil
	default:
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}
}

// ProvideFetchClient creates the resilient client for the betting backend.
func ProvideFetchClient(cfg *config.Config, store cache.Store, l *logger.Logger, rec *metrics.Recorder) *xhttp.Client {
	opts := []xhttp.ClientOption{
		xhttp.WithBaseURL(cfg.Fetch.BaseURL),
		xhttp.WithTimeout(cfg.Fetch.Timeout),
		xhttp.WithRetries(cfg.Fetch.Retries),
		xhttp.WithRetryDelay(cfg.Fetch.RetryDelay),
		xhttp.WithCacheTTL(cfg.Fetch.CacheTTL),
		xhttp.WithHealthPath(cfg.Fetch.HealthPath),
		xhttp.WithCache(store),
		xhttp.WithLogger(l.With(logger.String("component", "fetch_client"))),
		xhttp.WithObserver(rec),
	}
	if cfg.Fetch.RateLimit.RPS > 0 {
		opts = append(opts, xhttp.WithRateLimit(cfg.Fetch.RateLimit.RPS, cfg.Fetch.RateLimit.Burst))
	}
	return xhttp.NewClient(opts...)
}

// ProvideHealthClient creates a single-attempt client for /health so a down
// backend is reported within one timeout instead of after the retry schedule.
func ProvideHealthClient(cfg *config.Config, l *logger.Logger) api.HealthChecker {
	timeout := cfg.Fetch.Timeout
	if timeout <= 0 || timeout > healthTimeout {
		timeout = healthTimeout
	}
	return xhttp.NewClient(
		xhttp.WithBaseURL(cfg.Fetch.BaseURL),
		xhttp.WithTimeout(timeout),
		xhttp.WithRetries(0),
		xhttp.WithHealthPath(cfg.Fetch.HealthPath),
		xhttp.WithLogger(l.With(logger.String("component", "health_client"))),
	)
}

const healthTimeout = 5 * time.Second

// ProvideClickHouseClient connects to ClickHouse; nil when no host is configured.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled() {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithAuth(cfg.ClickHouse.Database, cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5, 5*time.Minute),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideRecordStore wraps the ClickHouse client and creates its tables.
// It returns nil without ClickHouse.
func ProvideRecordStore(ch *pkgch.Client) (*internalrepo.ClickHouseStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseStore(ch)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideHTTPSource creates the backend-backed record source.
func ProvideHTTPSource(cfg *config.Config, client *xhttp.Client, l *logger.Logger) *internalrepo.HTTPSource {
	return internalrepo.NewHTTPSource(client, internalrepo.HTTPPaths{
		Bets:                cfg.Source.BetsPath,
		RecentBets:          cfg.Source.RecentBetsPath,
		Predictions:         cfg.Source.PredictionsPath,
		RecentPredictions:   cfg.Source.RecentPredictionPath,
		RecentOpportunities: cfg.Source.OpportunitiesPath,
	}, l)
}

// ProvideBetSource selects the bet source named by source.type.
func ProvideBetSource(cfg *config.Config, httpSrc *internalrepo.HTTPSource, store *internalrepo.ClickHouseStore) repository.BetSource {
	if cfg.Source.Type == "clickhouse" && store != nil {
		return store
	}
	return httpSrc
}

// ProvidePredictionSource selects the prediction source named by source.type.
func ProvidePredictionSource(cfg *config.Config, httpSrc *internalrepo.HTTPSource, store *internalrepo.ClickHouseStore) repository.PredictionSource {
	if cfg.Source.Type == "clickhouse" && store != nil {
		return store
	}
	return httpSrc
}

// ProvidePerformanceAggregator creates the analytics aggregator.
func ProvidePerformanceAggregator(cfg *config.Config, bets repository.BetSource, preds repository.PredictionSource, l *logger.Logger, m repository.Metrics) *usecase.PerformanceAggregator {
	return usecase.NewPerformanceAggregator(bets, preds, l.With(logger.String("component", "aggregator")),
		usecase.WithAggregatorMetrics(m),
		usecase.WithAggregatorTimeout(cfg.Server.AggregateTimeout),
	)
}

// ProvideKafkaProducer creates a Kafka producer; nil without brokers.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled() {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideRecordIngestHandler creates the records topic handler; nil without
// a record store.
func ProvideRecordIngestHandler(cfg *config.Config, store *internalrepo.ClickHouseStore, m repository.Metrics, l *logger.Logger) *usecase.RecordIngestHandler {
	if store == nil {
		return nil
	}
	return usecase.NewRecordIngestHandler(cfg.Kafka.RecordsTopic, store, m, l)
}

// ProvideKafkaConsumer creates the records consumer when enabled.
func ProvideKafkaConsumer(cfg *config.Config, h *usecase.RecordIngestHandler, m repository.Metrics, l *logger.Logger, reg *prometheus.Registry) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled || h == nil {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
		pkgkafka.WithConsumerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	hook := pkgkafka.RejectEmpty()
	hook.Err = func(_ context.Context, topic string, _ kafkago.Message, _ []byte, _ error) {
		m.RecordError("consumer_" + topic)
	}
	consumer.WithConsumerHook(hook)
	consumer.RegisterHandler(h)
	return consumer, nil
}

// ProvideMetricsExporter creates the snapshot exporter when enabled.
func ProvideMetricsExporter(cfg *config.Config, agg *usecase.PerformanceAggregator, producer *pkgkafka.Producer, m repository.Metrics, l *logger.Logger) (*usecase.MetricsExporter, error) {
	if !cfg.Exporter.Enabled || producer == nil {
		return nil, nil
	}
	pub := internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.MetricsTopic)
	return usecase.NewMetricsExporter(agg, pub, m, l, cfg.Exporter.Interval, cfg.Exporter.Ranges)
}

// ProvideRateLimiter creates the per-client API limiter; nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if cfg.Server.RateLimit.RPS <= 0 {
		return nil
	}
	return ratelimit.New(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst, cfg.Server.RateLimit.IdleTTL)
}

// ProvideHTTPHandler creates the analytics API handler.
func ProvideHTTPHandler(l *logger.Logger, agg *usecase.PerformanceAggregator, health api.HealthChecker, m *svcmetrics.APIMetrics) xhttp.Handler {
	return api.NewPerformanceEchoHandler(l.With(logger.String("component", "api")), agg, health, m)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, l *logger.Logger, reg *prometheus.Registry, limiter *ratelimit.Limiter) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS, cfg.Server.CORSOrigins...),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithRegistry(reg),
		xhttp.WithMetricsEndpoint(cfg.Metrics.Enabled),
	}
	if limiter != nil {
		opts = append(opts, xhttp.WithRateLimiter(limiter))
	}
	return xhttp.NewServer(h, l, opts...)
}

// ProvideApp assembles the application. Disabled components stay nil.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	srv *xhttp.Server,
	client *xhttp.Client,
	consumer *pkgkafka.Consumer,
	producer *pkgkafka.Producer,
	exporter *usecase.MetricsExporter,
	store *internalrepo.ClickHouseStore,
	responses cache.Store,
) *server.App {
	c := server.Components{
		HTTPServer:  srv,
		FetchClient: client,
		Consumer:    consumer,
		Producer:    producer,
	}
	if exporter != nil {
		c.Exporter = exporter
	}
	if store != nil {
		c.Closers = append(c.Closers, store)
	}
	if cl, ok := responses.(io.Closer); ok {
		c.Closers = append(c.Closers, cl)
	}
	return server.New(cfg, l, c)
}
