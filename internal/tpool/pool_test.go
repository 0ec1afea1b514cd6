package tpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadCountAtLeastOne(t *testing.T) {
	p := New(nil)
	defer p.Close()
	assert.GreaterOrEqual(t, p.ThreadCount(), 1)
	assert.LessOrEqual(t, p.ThreadCount(), MaxThreads)
}

func TestIdleBarrier(t *testing.T) {
	p := New(nil)
	defer p.Close()

	const n = 16
	var done atomic.Int64
	for i := 0; i < n; i++ {
		p.AddTask(func(any) {
			time.Sleep(5 * time.Millisecond)
			done.Add(1)
		}, nil, nil)
	}

	p.Wait()
	assert.Equal(t, int64(n), done.Load(), "Wait must return only after all tasks completed")

	// a second Wait with nothing queued returns immediately
	p.Wait()
	assert.Equal(t, int64(n), done.Load())
}

func TestCleanupAlwaysRunsAfterWork(t *testing.T) {
	p := New(nil)
	defer p.Close()

	var order []string
	var mu sync.Mutex
	p.AddTask(
		func(data any) {
			mu.Lock()
			order = append(order, "work:"+data.(string))
			mu.Unlock()
		},
		func(data any) {
			mu.Lock()
			order = append(order, "cleanup:"+data.(string))
			mu.Unlock()
		},
		"t1",
	)
	p.Wait()

	require.Equal(t, []string{"work:t1", "cleanup:t1"}, order)
}

func TestCancelRunsCleanupExactlyOnceWithoutWork(t *testing.T) {
	p := New(nil)
	defer p.Close()

	// occupy every worker so queued tasks cannot start
	release := make(chan struct{})
	started := make(chan struct{}, p.ThreadCount())
	for i := 0; i < p.ThreadCount(); i++ {
		p.AddTask(func(any) {
			started <- struct{}{}
			<-release
		}, nil, nil)
	}
	for i := 0; i < p.ThreadCount(); i++ {
		<-started
	}

	var workRuns, cleanupRuns atomic.Int64
	const pending = 8
	for i := 0; i < pending; i++ {
		p.AddTask(
			func(any) { workRuns.Add(1) },
			func(any) { cleanupRuns.Add(1) },
			nil,
		)
	}

	p.Cancel()
	close(release)
	p.Wait()

	assert.Equal(t, int64(0), workRuns.Load(), "cancelled tasks must never run work")
	assert.Equal(t, int64(pending), cleanupRuns.Load(), "each cancelled task gets exactly one cleanup")
}

func TestTasksRunConcurrently(t *testing.T) {
	p := New(nil)
	defer p.Close()
	if p.ThreadCount() < 2 {
		t.Skip("needs at least two workers")
	}

	barrier := make(chan struct{})
	var met atomic.Bool
	// two tasks that can only finish if both are running at once
	p.AddTask(func(any) {
		select {
		case barrier <- struct{}{}:
			met.Store(true)
		case <-time.After(2 * time.Second):
		}
	}, nil, nil)
	p.AddTask(func(any) {
		select {
		case <-barrier:
		case <-time.After(2 * time.Second):
		}
	}, nil, nil)

	p.Wait()
	assert.True(t, met.Load())
}

func TestCloseJoinsWorkers(t *testing.T) {
	p := New(nil)
	var ran atomic.Int64
	p.AddTask(func(any) { ran.Add(1) }, nil, nil)
	p.Close()
	assert.Equal(t, int64(1), ran.Load(), "queued work drains before the poison tasks")
}
