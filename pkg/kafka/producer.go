package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	"TrendPulse/pkg/logger"
)

var (
	producerRegisterOnce sync.Once
	messagesPublished    *prometheus.CounterVec
	publishErrors        *prometheus.CounterVec
	publishDuration      *prometheus.HistogramVec
)

func registerProducerMetrics() {
	producerRegisterOnce.Do(func() {
		messagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trendpulse_kafka_messages_published_total",
			Help: "Total messages published to Kafka",
		}, []string{"topic"})
		publishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trendpulse_kafka_publish_errors_total",
			Help: "Total Kafka publish errors",
		}, []string{"topic"})
		publishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trendpulse_kafka_publish_duration_seconds",
			Help:    "Kafka publish latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"})
	})
}

// Message aliases the kafka-go message so callers avoid a direct import.
type Message = kafka.Message

// Producer wraps a kafka-go writer with metrics and logging.
type Producer struct {
	writer *kafka.Writer
	topic  string
	log    *logger.Logger
}

// NewProducer creates a Kafka producer for the given topic.
func NewProducer(log *logger.Logger, opts ...ProducerOption) (*Producer, error) {
	cfg := &ProducerConfig{
		BatchSize:    100,
		BatchTimeout: time.Second,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	registerProducerMetrics()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: cfg.RequiredAcks,
		Async:        cfg.Async,
	}

	return &Producer{writer: writer, topic: cfg.Topic, log: log}, nil
}

// Publish sends a single keyed message.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	return p.PublishBatch(ctx, []kafka.Message{{Key: key, Value: value}})
}

// PublishBatch sends a batch of messages in one write.
func (p *Producer) PublishBatch(ctx context.Context, msgs []kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	start := time.Now()
	err := p.writer.WriteMessages(ctx, msgs...)
	publishDuration.WithLabelValues(p.topic).Observe(time.Since(start).Seconds())

	if err != nil {
		publishErrors.WithLabelValues(p.topic).Inc()
		p.log.Error("kafka publish failed",
			logger.String("topic", p.topic),
			logger.Int("messages", len(msgs)),
			logger.Error(err))
		return fmt.Errorf("kafka write: %w", err)
	}

	messagesPublished.WithLabelValues(p.topic).Add(float64(len(msgs)))
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
