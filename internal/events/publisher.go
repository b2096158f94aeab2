// Package events publishes stock events from the transactional outbox.
package events

import (
	"context"
	"strconv"
	"time"

	"github.com/fejiro0/gomart/internal/config"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher delivers one outbox event to the outside world.
type Publisher interface {
	Publish(ctx context.Context, ev models.OutboxEvent) error
	Close() error
}

// KafkaPublisher writes events keyed by product id, so every change to one
// product lands on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(cfg config.KafkaConfig, log *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    10,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Sugar().Warnf("kafka: "+msg, args...)
		}),
	}
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev models.OutboxEvent) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ProductID, 10)),
		Value: ev.Payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.EventID)},
			{Key: "event_type", Value: []byte(ev.EventType)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher stands in for Kafka when no brokers are configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, ev models.OutboxEvent) error {
	p.log.Info("event",
		zap.String("event_id", ev.EventID),
		zap.String("type", ev.EventType),
		zap.Int64("product_id", ev.ProductID),
		zap.ByteString("payload", ev.Payload),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// NewPublisher picks Kafka when brokers are configured.
func NewPublisher(cfg config.KafkaConfig, log *zap.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		log.Info("no kafka brokers configured, events will be logged")
		return NewLogPublisher(log)
	}
	return NewKafkaPublisher(cfg, log)
}
