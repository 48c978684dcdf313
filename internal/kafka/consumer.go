package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/segmentio/kafka-go"
)

// Consumer reads task events as part of a consumer group.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(broker, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{broker},
			Topic:   topic,
			GroupID: groupID,
		}),
	}
}

// Run hands every decoded event to handle until ctx is cancelled. Messages
// that cannot be decoded are passed to onError and skipped.
func (c *Consumer) Run(ctx context.Context, handle func(models.TaskEvent), onError func(error)) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			onError(fmt.Errorf("read message: %w", err))
			continue
		}

		event, err := DecodeEvent(m.Value)
		if err != nil {
			onError(fmt.Errorf("offset %d: %w", m.Offset, err))
			continue
		}
		handle(event)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func DecodeEvent(value []byte) (models.TaskEvent, error) {
	var event models.TaskEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return models.TaskEvent{}, fmt.Errorf("decode task event: %w", err)
	}
	if event.Type == "" {
		return models.TaskEvent{}, errors.New("decode task event: missing type")
	}
	return event, nil
}
