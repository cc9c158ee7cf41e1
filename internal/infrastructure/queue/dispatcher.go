package queue

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ResultHook observes the outcome of every delivery attempt.
type ResultHook func(n ports.Notification, err error)

// Dispatcher routes notifications to a fixed set of workers using consistent
// hashing on the recipient, so mail to one address goes out in order over a
// single connection at a time.
type Dispatcher struct {
	workers  []chan ports.Notification
	notifier ports.Notifier
	log      zerolog.Logger
	onResult ResultHook

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.Notification, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	return d
}

// OnResult installs a hook called after each send. Call before Start.
func (d *Dispatcher) OnResult(hook ResultHook) {
	d.onResult = hook
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Close has drained their queue.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands n to the worker responsible for its recipient. The call
// blocks only when that worker's buffer is full. Notifications enqueued after
// Close are dropped.
func (d *Dispatcher) Enqueue(n ports.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("to", n.To).Msg("dispatcher closed, notification dropped")
		return
	}
	d.workers[d.shardIndex(n.To)] <- n
}

// Close stops accepting notifications and waits for queued ones to be sent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(recipient)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Notification) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			err := d.notifier.Send(ctx, n)
			if err != nil {
				d.log.Error().Err(err).
					Str("to", n.To).
					Int("worker_id", id).
					Msg("notification delivery failed")
			} else {
				d.log.Info().Str("to", n.To).Str("subject", n.Subject).Msg("notification sent")
			}
			if d.onResult != nil {
				d.onResult(n, err)
			}
		}
	}
}
