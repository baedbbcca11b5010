package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alertrelay/internal/alert"
)

func mustNotification(t *testing.T, title string) Notification {
	t.Helper()
	n, err := New(testRecipients, alert.Normal, "", "Grafana", title, "body")
	require.NoError(t, err)
	return n
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Enqueue(mustNotification(t, "first")))
	require.NoError(t, q.Enqueue(mustNotification(t, "second")))
	require.NoError(t, q.Enqueue(mustNotification(t, "third")))
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"first", "second", "third"} {
		n, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, n.Title)
	}
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestQueueEnqueueAfterClose(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Enqueue(mustNotification(t, "queued")))
	q.Close()

	err := q.Enqueue(mustNotification(t, "late"))
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Items queued before the close still drain.
	n, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "queued", n.Title)
	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func TestQueueDequeueBlocksUntilEnqueue(t *testing.T) {
	q := NewQueue()
	got := make(chan Notification, 1)
	go func() {
		n, ok := q.Dequeue()
		if ok {
			got <- n
		}
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.Enqueue(mustNotification(t, "wake up")))

	select {
	case n := <-got:
		assert.Equal(t, "wake up", n.Title)
	case <-time.After(time.Second):
		t.Fatal("consumer never woke up")
	}
}

// flakySubmitter fails each notification a fixed number of times before
// accepting it, recording every attempt.
type flakySubmitter struct {
	failuresPerItem int
	failures        map[string]int
	attempts        []string
	delivered       []string
}

func (f *flakySubmitter) Submit(n Notification) error {
	f.attempts = append(f.attempts, n.Title)
	if f.failures == nil {
		f.failures = make(map[string]int)
	}
	if f.failures[n.Title] < f.failuresPerItem {
		f.failures[n.Title]++
		return errors.New("transient failure")
	}
	f.delivered = append(f.delivered, n.Title)
	return nil
}

func TestWorkerDeliversInOrder(t *testing.T) {
	q := NewQueue()
	submitter := &flakySubmitter{}
	worker := NewWorker(q, submitter, time.Second, time.Minute)
	var slept []time.Duration
	worker.sleep = func(d time.Duration) { slept = append(slept, d) }

	require.NoError(t, q.Enqueue(mustNotification(t, "first")))
	require.NoError(t, q.Enqueue(mustNotification(t, "second")))
	q.Close()
	worker.Run()

	assert.Equal(t, []string{"first", "second"}, submitter.delivered)
	// One pacing sleep per successful delivery.
	assert.Equal(t, []time.Duration{time.Second, time.Second}, slept)
}

func TestWorkerRetriesHeadOfLine(t *testing.T) {
	q := NewQueue()
	submitter := &flakySubmitter{failuresPerItem: 2}
	worker := NewWorker(q, submitter, time.Second, time.Minute)
	var slept []time.Duration
	worker.sleep = func(d time.Duration) { slept = append(slept, d) }

	require.NoError(t, q.Enqueue(mustNotification(t, "first")))
	require.NoError(t, q.Enqueue(mustNotification(t, "second")))
	q.Close()
	worker.Run()

	// The head is retried to success before the next item is touched.
	assert.Equal(t, []string{"first", "first", "first", "second", "second", "second"}, submitter.attempts)
	assert.Equal(t, []string{"first", "second"}, submitter.delivered)
	assert.Equal(t, []time.Duration{
		time.Minute, time.Minute, time.Second,
		time.Minute, time.Minute, time.Second,
	}, slept)
}
