package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"college-erp/internal/metrics"

	"github.com/nats-io/nats.go"
)

type natsProducer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func newNATSProducer(url, subject string, logger *slog.Logger, m *metrics.Metrics) (*natsProducer, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &natsProducer{
		conn:    nc,
		subject: subject,
		logger:  logger,
		metrics: m,
	}, nil
}

func (p *natsProducer) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event to NATS", "error", err)
		return err
	}

	p.metrics.RecordNotificationPublished(ctx)
	p.logger.InfoContext(ctx, "event published to NATS", "subject", p.subject, "type", event.Type)
	return nil
}

func (p *natsProducer) Close() error {
	p.conn.Close()
	return nil
}
