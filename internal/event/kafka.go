package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// KafkaProducer implements Producer using segmentio/kafka-go.
type KafkaProducer struct {
	writer *kafka.Writer
	log    *logrus.Logger
}

// NewKafkaProducer creates a Kafka producer that writes security events to
// the given topic. Returns (nil, nil) when brokers or topic are empty, so
// callers can fall back to NopProducer. Call Close when shutting down.
func NewKafkaProducer(brokers []string, topic string, log *logrus.Logger) (*KafkaProducer, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaProducer{writer: writer, log: log}, nil
}

// Emit serializes the event as JSON and writes it to the topic. A short
// timeout keeps slow brokers from stalling the request path.
func (p *KafkaProducer) Emit(ctx context.Context, e *SecurityEvent) error {
	if p == nil || p.writer == nil || e == nil {
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, kafka.Message{Value: payload}); err != nil {
		p.log.WithError(err).Warn("security event emit failed")
		return err
	}
	return nil
}

// Close closes the Kafka writer. Safe to call multiple times.
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
