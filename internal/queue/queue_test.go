package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() Event {
	return Event{
		ID:          "4f1c2a8e-0000-4000-8000-000000000001",
		Type:        RoomAllocated,
		OccurredAt:  time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		ActorUserID: 1,
		ActorRole:   "ADMIN",
		RoomID:      7,
		StudentIDs:  []uint64{3, 4},
	}
}

func TestFormatLine(t *testing.T) {
	line := FormatLine(sampleEvent())
	assert.Equal(t, "[2025-03-01T09:30:00Z] room.allocated | id=4f1c2a8e-0000-4000-8000-000000000001 | actor=ADMIN:1 | room_id=7 | students=[3,4]\n", line)

	ev := Event{Type: BookingDecided, OccurredAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), ActorRole: "ADMIN", ActorUserID: 1, RequestID: 9, Status: "APPROVED"}
	assert.Contains(t, FormatLine(ev), "| request_id=9 | status=APPROVED")
	assert.NotContains(t, FormatLine(ev), "room_id")
}

func TestHandleMessageAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)

	require.NoError(t, HandleMessage(dir, body))
	require.NoError(t, HandleMessage(dir, body))

	data, err := os.ReadFile(filepath.Join(dir, AuditLogName))
	require.NoError(t, err)
	assert.Equal(t, 2*len(FormatLine(sampleEvent())), len(data))
}

func TestHandleMessageRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, HandleMessage(dir, []byte("not json")))
	assert.Error(t, HandleMessage(dir, []byte(`{"id":"x"}`)))
	_, err := os.Stat(filepath.Join(dir, AuditLogName))
	assert.True(t, os.IsNotExist(err))
}

func TestEncode(t *testing.T) {
	ev := sampleEvent()
	msg, err := encode(ev)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, ev.ID, msg.MessageId)
	assert.Equal(t, RoomAllocated, msg.Type)

	var back Event
	require.NoError(t, json.Unmarshal(msg.Body, &back))
	assert.Equal(t, ev.StudentIDs, back.StudentIDs)
}

func TestPublishBuffersAndStamps(t *testing.T) {
	p := newPublisher("amqp://unused", "", 1, nil)
	assert.Equal(t, DefaultQueue, p.queue)

	require.NoError(t, p.Publish(context.Background(), Event{Type: BookingSubmitted}))
	assert.ErrorIs(t, p.Publish(context.Background(), Event{Type: BookingSubmitted}), ErrBufferFull)

	ev := <-p.events
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.OccurredAt.IsZero())

	// run was never started, so release done by hand before Close waits on it
	close(p.done)
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), Event{Type: BookingSubmitted}), ErrClosed)
}
