package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"dingauth/internal/platform/kafka"
)

// MessageProducer publishes a single record.
type MessageProducer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
}

// KafkaStore publishes events as JSON, keyed by app key so events for one
// DingTalk app stay ordered within a partition.
type KafkaStore struct {
	producer MessageProducer
	topic    string
}

func NewKafkaStore(producer MessageProducer, topic string) *KafkaStore {
	return &KafkaStore{producer: producer, topic: topic}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	return s.producer.Produce(ctx, &kafka.Message{
		Topic: s.topic,
		Key:   []byte(event.AppKey),
		Value: value,
		Headers: map[string]string{
			"action": string(event.Action),
		},
	})
}
