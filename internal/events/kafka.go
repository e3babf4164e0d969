package events

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	sdk "github.com/segmentio/kafka-go"
)

// KafkaSink publishes events to a Kafka topic. Messages are keyed by
// record id so consumers see each record's history in order.
type KafkaSink struct {
	writer *sdk.Writer
}

// NewKafkaSink creates a sink producing to topic on the given brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	return &KafkaSink{
		writer: &sdk.Writer{
			Addr:         sdk.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: sdk.RequireAll,
			Balancer:     &sdk.LeastBytes{},
		},
	}, nil
}

func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	serialized, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	err = s.writer.WriteMessages(ctx, sdk.Message{
		Key:   []byte(event.RecordID),
		Value: serialized,
	})
	if err != nil {
		return fmt.Errorf("producing event: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
