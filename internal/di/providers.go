package di

import (
	"context"
	"fmt"
	"time"

	"TrendPulse/internal/domain/models"
	domrepo "TrendPulse/internal/domain/repository"
	domsvc "TrendPulse/internal/domain/service"
	"TrendPulse/internal/handler/api"
	internalrepo "TrendPulse/internal/repository"
	"TrendPulse/internal/service/preprocess"
	"TrendPulse/internal/service/trends"
	"TrendPulse/internal/services/anomaly"
	"TrendPulse/internal/usecase"
	"TrendPulse/pkg/cache"
	pkgch "TrendPulse/pkg/clickhouse"
	"TrendPulse/pkg/config"
	pkgkafka "TrendPulse/pkg/kafka"
	"TrendPulse/pkg/logger"
	"TrendPulse/pkg/metrics"
	"TrendPulse/pkg/server"

	kafkago "github.com/segmentio/kafka-go"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.NewRecorder()
}

// ProvideClickHouseClient creates the ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideSeriesStore creates the ClickHouse-backed series store and ensures
// its schema exists.
func ProvideSeriesStore(ch *pkgch.Client, l *logger.Logger) (*internalrepo.CHSeriesStore, error) {
	store := internalrepo.NewCHSeriesStore(ch, l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("series store schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates the alert topic producer.
func ProvideKafkaProducer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(l,
		pkgkafka.WithBrokers(cfg.Kafka.Brokers...),
		pkgkafka.WithTopic(cfg.Kafka.AlertTopic),
		pkgkafka.WithRequiredAcks(kafkago.RequiredAcks(cfg.Kafka.RequiredAcks)),
		pkgkafka.WithBatch(cfg.Kafka.BatchSize, cfg.Kafka.BatchTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideCache creates the report cache backend named in the config.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(
			cache.WithAddr(cfg.Cache.Addr),
			cache.WithPassword(cfg.Cache.Password),
			cache.WithDB(cfg.Cache.DB),
		)
	}
	return cache.NewMemoryCache(), nil
}

// ProvideTrendsClient creates the trends API client.
func ProvideTrendsClient(cfg *config.Config, l *logger.Logger) (domrepo.SeriesProvider, error) {
	return trends.NewClient(trends.Config{
		BaseURL:        cfg.Trends.BaseURL,
		ChunkDays:      cfg.Trends.ChunkDays,
		Retries:        cfg.Trends.Retries,
		RequestsPerMin: cfg.Trends.RequestsPerMin,
		Timeout:        cfg.Trends.Timeout,
	}, l)
}

// ProvidePreprocessor creates the series preprocessor.
func ProvidePreprocessor() domsvc.Preprocessor {
	return preprocess.Preprocessor{}
}

// ProvideAssembler builds the anomaly engine from the config.
func ProvideAssembler(cfg *config.Config) (*anomaly.Assembler, error) {
	engineCfg, err := anomalyConfig(cfg)
	if err != nil {
		return nil, err
	}

	cal := anomaly.DefaultEventCalendar()
	if len(cfg.Anomaly.Events) > 0 {
		cal, err = anomaly.NewEventCalendar(cfg.Anomaly.Events)
		if err != nil {
			return nil, err
		}
	}
	return anomaly.NewAssembler(engineCfg, cal)
}

// ProvideAlertHub creates the websocket alert hub.
func ProvideAlertHub(l *logger.Logger) *api.AlertHub {
	return api.NewAlertHub(l)
}

// ProvideAlertPublishers fans alerts out to Kafka and websocket subscribers.
func ProvideAlertPublishers(producer *pkgkafka.Producer, hub *api.AlertHub) []domrepo.AlertPublisher {
	return []domrepo.AlertPublisher{
		internalrepo.NewKafkaAlertPublisher(producer),
		hub,
	}
}

// ProvideTrendCollector creates the collection loop.
func ProvideTrendCollector(
	provider domrepo.SeriesProvider,
	pre domsvc.Preprocessor,
	store *internalrepo.CHSeriesStore,
	m domrepo.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) (*usecase.TrendCollector, error) {
	start, err := models.ParseDay(cfg.Trends.StartDate)
	if err != nil {
		return nil, fmt.Errorf("trends start date: %w", err)
	}
	return usecase.NewTrendCollector(provider, pre, store, m, l,
		cfg.Trends.Terms, start, cfg.Trends.FetchInterval), nil
}

// ProvideReportAnalyzer creates the report pipeline.
func ProvideReportAnalyzer(
	store *internalrepo.CHSeriesStore,
	assembler *anomaly.Assembler,
	publishers []domrepo.AlertPublisher,
	cacheSvc cache.Service,
	m domrepo.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.ReportAnalyzer {
	return usecase.NewReportAnalyzer(store, store, assembler, publishers,
		cacheSvc, m, l, cfg.Trends.Terms, cfg.Cache.ReportTTL)
}

// ProvideReportsHandler creates the HTTP API handler.
func ProvideReportsHandler(l *logger.Logger, analyzer *usecase.ReportAnalyzer, hub *api.AlertHub) *api.ReportsHandler {
	return api.NewReportsHandler(l, analyzer, hub)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	collector *usecase.TrendCollector,
	handler *api.ReportsHandler,
	hub *api.AlertHub,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	cacheSvc cache.Service,
) *server.App {
	return server.New(cfg, l, collector, handler, hub, chClient, producer, cacheSvc)
}

// anomalyConfig maps the YAML anomaly section onto the engine config.
func anomalyConfig(cfg *config.Config) (anomaly.Config, error) {
	start, err := models.ParseDay(cfg.Anomaly.BaselineStart)
	if err != nil {
		return anomaly.Config{}, fmt.Errorf("baseline start: %w", err)
	}
	cutoff, err := models.ParseDay(cfg.Anomaly.BaselineCutoff)
	if err != nil {
		return anomaly.Config{}, fmt.Errorf("baseline cutoff: %w", err)
	}
	return anomaly.Config{
		ZScoreThreshold:    cfg.Anomaly.ZScoreThreshold,
		ModifiedZThreshold: cfg.Anomaly.ModifiedZThreshold,
		Contamination:      cfg.Anomaly.Contamination,
		Seed:               cfg.Anomaly.Seed,
		RollingWindow:      cfg.Anomaly.RollingWindow,
		RollingThreshold:   cfg.Anomaly.RollingThreshold,
		Quorum:             cfg.Anomaly.Quorum,
		BaselineStart:      start,
		BaselineCutoff:     cutoff,
		EventWindowDays:    cfg.Anomaly.EventWindowDays,
	}, nil
}
