package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	return &KafkaPublisher{writer: writer, topic: topic}
}

// NewPublisher returns a Kafka publisher, or a NopPublisher when brokers is empty.
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	message, err := encodeMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		logger.Error("kafka_publish_failed", err, map[string]interface{}{
			"topic":       p.topic,
			"event_type":  event.Type,
			"resource_id": event.ResourceID,
		})
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// encodeMessage keys by resource id so all changes to one resource land on
// the same partition in order.
func encodeMessage(event Event) (kafka.Message, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.ResourceID),
		Value: value,
		Time:  event.Timestamp,
	}, nil
}
