package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobsRunInOrder(t *testing.T) {
	box := New(1, time.Millisecond)

	var mu sync.Mutex
	var got []int
	for i := 0; i < 20; i++ {
		i := i
		box.Enqueue("job", func(ctx context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		})
	}
	box.Close()

	require.Len(t, got, 20)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
	assert.True(t, box.Synced())
}

func TestRetryThenSucceed(t *testing.T) {
	box := New(3, time.Millisecond)

	attempts := 0
	box.Enqueue("flaky", func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	box.Close()

	assert.Equal(t, 3, attempts)
	assert.True(t, box.Synced())
}

func TestGiveUpMarksOutOfSync(t *testing.T) {
	box := New(2, time.Millisecond)

	attempts := 0
	box.Enqueue("broken", func(ctx context.Context) error {
		attempts++
		return errors.New("permanent")
	})
	box.Close()

	assert.Equal(t, 2, attempts)
	assert.False(t, box.Synced())
}

func TestFailureDoesNotStopLaterJobs(t *testing.T) {
	box := New(1, time.Millisecond)

	ran := false
	box.Enqueue("broken", func(ctx context.Context) error {
		return errors.New("permanent")
	})
	box.Enqueue("after", func(ctx context.Context) error {
		ran = true
		return nil
	})
	box.Close()

	assert.True(t, ran)
	assert.False(t, box.Synced())
}

func TestSyncedWhileWorkPending(t *testing.T) {
	box := New(1, time.Millisecond)

	release := make(chan struct{})
	box.Enqueue("slow", func(ctx context.Context) error {
		<-release
		return nil
	})

	assert.False(t, box.Synced())
	close(release)
	box.Close()
	assert.True(t, box.Synced())
}
