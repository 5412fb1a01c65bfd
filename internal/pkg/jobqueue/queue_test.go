package jobqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Zero workers so Start spawns no goroutines that would hit Redis.
func newIdleQueue() *Queue {
	return &Queue{stopCh: make(chan struct{})}
}

func stopChannelClosed(q *Queue) bool {
	select {
	case <-q.stopCh:
		return true
	default:
		return false
	}
}

func TestQueueRestartRecreatesStopChannel(t *testing.T) {
	q := newIdleQueue()

	q.Start()
	assert.True(t, q.running)
	assert.False(t, stopChannelClosed(q))

	q.Stop()
	assert.False(t, q.running)
	assert.True(t, stopChannelClosed(q))

	// A restart must hand new workers an open stop channel.
	q.Start()
	assert.True(t, q.running)
	assert.False(t, stopChannelClosed(q))

	q.Stop()
}

func TestQueueStartIsIdempotent(t *testing.T) {
	q := newIdleQueue()

	q.Start()
	first := q.stopCh
	q.Start()
	assert.Equal(t, first, q.stopCh, "second Start must not replace the channel of a running queue")

	q.Stop()
	q.Stop()
	assert.False(t, q.running)
}
