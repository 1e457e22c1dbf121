package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"college-erp/internal/metrics"

	"github.com/IBM/sarama"
)

type kafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func newKafkaProducer(brokers []string, topic string, logger *slog.Logger, m *metrics.Metrics) (*kafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)

	return &kafkaProducer{
		producer: producer,
		topic:    topic,
		logger:   logger,
		metrics:  m,
	}, nil
}

func (p *kafkaProducer) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		// Key by student so all events for one student land in order.
		Key:   sarama.StringEncoder(event.StudentUniqueID),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event to kafka", "error", err)
		return err
	}

	p.metrics.RecordNotificationPublished(ctx)
	p.logger.InfoContext(ctx, "event published to kafka",
		"topic", p.topic, "partition", partition, "offset", offset, "type", event.Type)
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.producer.Close()
}
