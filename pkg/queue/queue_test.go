package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQueue(client, nil), mr
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	payload := BatchMirrorPayload{BatchID: "batch-1", BatchDir: "/tmp/batch-1", Files: []string{"metadata.json", "1_image_0.jpg"}}
	require.NoError(t, q.EnqueueBatchMirror(ctx, payload))

	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, JobTypeBatchMirror, job.Type)
	assert.Equal(t, 0, job.Attempts)
	assert.NotEmpty(t, job.ID)

	var got BatchMirrorPayload
	require.NoError(t, json.Unmarshal(job.Payload, &got))
	assert.Equal(t, payload, got)
}

func TestQueue_DequeueSkipsInvalidPayload(t *testing.T) {
	q, mr := newTestQueue(t)
	_, err := mr.Lpush(QueueBatchMirror, "{not json")
	require.NoError(t, err)

	job, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestQueue_RetryThenDLQ(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()
	job := &Job{ID: "j1", Type: JobTypeBatchMirror, Payload: json.RawMessage(`{}`)}

	for i := 1; i < MaxAttempts; i++ {
		require.NoError(t, q.Retry(ctx, job))
		assert.Equal(t, i, job.Attempts)
		items, err := mr.List(QueueBatchMirror)
		require.NoError(t, err)
		assert.Len(t, items, 1)

		again, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.NotNil(t, again)
		job = again
	}

	require.NoError(t, q.Retry(ctx, job))
	assert.Equal(t, MaxAttempts, job.Attempts)
	assert.False(t, mr.Exists(QueueBatchMirror))
	dlq, err := mr.List(QueueDLQ)
	require.NoError(t, err)
	assert.Len(t, dlq, 1)
}
