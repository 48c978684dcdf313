package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/segmentio/kafka-go"
)

// Producer publishes task events. Messages are keyed by task id so events
// for one task stay ordered within a partition.
// publishBatchTimeout bounds how long a single event waits for a batch to
// fill. Publish runs on the request path and sends one message at a time.
const publishBatchTimeout = 10 * time.Millisecond

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(broker, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(broker),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: publishBatchTimeout,
			WriteTimeout: 5 * time.Second,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, event models.TaskEvent) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func NewMessage(event models.TaskEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode task event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.TaskID.String()),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}, nil
}
