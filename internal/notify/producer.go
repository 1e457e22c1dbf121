package notify

import (
	"context"
	"fmt"
	"log/slog"

	"college-erp/internal/config"
	"college-erp/internal/metrics"
)

// Producer publishes domain events to the configured backend. A nil
// Producer value is not used; disabled config yields the noop producer
// so call sites never branch.
type Producer interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// New selects the producer from config. An empty backend disables
// publishing.
func New(cfg config.NotifyConfig, logger *slog.Logger, m *metrics.Metrics) (Producer, error) {
	switch cfg.Backend {
	case "nats":
		return newNATSProducer(cfg.NATS.URL, cfg.NATS.Subject, logger, m)
	case "kafka":
		return newKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger, m)
	case "":
		logger.Info("event publishing disabled")
		return noopProducer{}, nil
	}
	return nil, fmt.Errorf("unknown notify backend %q", cfg.Backend)
}

// Noop returns a producer that drops every event. Used as the fallback
// when the configured backend cannot be reached.
func Noop() Producer { return noopProducer{} }

type noopProducer struct{}

func (noopProducer) Publish(context.Context, Event) error { return nil }
func (noopProducer) Close() error                         { return nil }
