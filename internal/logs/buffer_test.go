package logs

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscout/backend/internal/models"
)

func entry(i int) models.LogEntry {
	return models.LogEntry{Type: "info", Message: fmt.Sprintf("m%d", i), Timestamp: time.Unix(int64(i), 0)}
}

func TestBuffer_KeepsInsertionOrderBelowCapacity(t *testing.T) {
	b := NewBuffer(5)
	for i := 0; i < 3; i++ {
		b.Append(entry(i))
	}
	got := b.Entries()
	require.Len(t, got, 3)
	assert.Equal(t, "m0", got[0].Message)
	assert.Equal(t, "m2", got[2].Message)
}

func TestBuffer_OverwritesOldestWhenFull(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 7; i++ {
		b.Append(entry(i))
	}
	got := b.Entries()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"m4", "m5", "m6"}, []string{got[0].Message, got[1].Message, got[2].Message})
	assert.Equal(t, 3, b.Len())
}

func TestBuffer_SubscribeReceivesNewEntries(t *testing.T) {
	b := NewBuffer(2)
	b.Append(entry(0))

	ch, cancel := b.Subscribe(4)
	b.Append(entry(1))

	select {
	case e := <-ch:
		assert.Equal(t, "m1", e.Message)
	case <-time.After(time.Second):
		t.Fatal("no entry delivered")
	}

	cancel()
	cancel() // idempotent
	_, open := <-ch
	assert.False(t, open)
	b.Append(entry(2)) // must not panic after unsubscribe
}

func TestBuffer_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBuffer(10)
	_, cancel := b.Subscribe(1)
	defer cancel()
	for i := 0; i < 10; i++ {
		b.Append(entry(i))
	}
	assert.Equal(t, 10, b.Len())
}
