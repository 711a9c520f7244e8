package telegram

import (
	"sync"

	"go.uber.org/zap"
)

// dispatcher runs jobs sequentially per key. A worker goroutine exists only
// while its key has pending jobs.
type dispatcher struct {
	mu      sync.Mutex
	pending map[int64][]func()
	wg      sync.WaitGroup
	log     *zap.Logger
}

func newDispatcher(log *zap.Logger) *dispatcher {
	return &dispatcher{pending: make(map[int64][]func()), log: log}
}

func (d *dispatcher) dispatch(key int64, job func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	queue, running := d.pending[key]
	d.pending[key] = append(queue, job)
	if !running {
		d.wg.Add(1)
		go d.drain(key)
	}
}

func (d *dispatcher) drain(key int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		queue := d.pending[key]
		if len(queue) == 0 {
			delete(d.pending, key)
			d.mu.Unlock()
			return
		}
		job := queue[0]
		d.pending[key] = queue[1:]
		d.mu.Unlock()

		d.run(key, job)
	}
}

func (d *dispatcher) run(key int64, job func()) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("update handler panicked", zap.Int64("user_id", key), zap.Any("panic", r))
		}
	}()
	job()
}

// wait blocks until every queued job has run.
func (d *dispatcher) wait() { d.wg.Wait() }
