package kafka

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	at := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	task := models.NewTask(models.TaskFormData{Title: "evented", Priority: models.PriorityHigh}, at)
	event := models.TaskEvent{
		Type:       models.EventTaskCreated,
		TaskID:     task.ID,
		Task:       &task,
		Actor:      "henry",
		OccurredAt: at,
	}

	msg, err := NewMessage(event)
	require.NoError(t, err)
	assert.Equal(t, task.ID.String(), string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "task.created", string(msg.Headers[0].Value))

	decoded, err := DecodeEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, models.EventTaskCreated, decoded.Type)
	assert.Equal(t, "henry", decoded.Actor)
	require.NotNil(t, decoded.Task)
	assert.Equal(t, "evented", decoded.Task.Title)
	assert.Equal(t, models.StatusTodo, decoded.Task.Status)
}

func TestNewProducerFlushesSingleEventsPromptly(t *testing.T) {
	p := NewProducer("localhost:9092", "task-events")
	defer p.Close()

	assert.Equal(t, publishBatchTimeout, p.writer.BatchTimeout)
	assert.Less(t, p.writer.BatchTimeout, 100*time.Millisecond)
	assert.IsType(t, &kafka.Hash{}, p.writer.Balancer)
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	_, err := DecodeEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"taskId":"` + uuid.NewString() + `"}`))
	assert.Error(t, err)
}
