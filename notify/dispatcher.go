package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snap-point/follow-api/metrics"
)

const deliveryTimeout = 30 * time.Second

// Dispatcher hands notices to a pool of workers. Enqueue never blocks; when
// the queue is full the notice is dropped and counted.
type Dispatcher struct {
	notifier Notifier
	workers  int
	queue    chan FollowRequestNotice

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(notifier Notifier, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Dispatcher{
		notifier: notifier,
		workers:  workers,
		queue:    make(chan FollowRequestNotice, queueSize),
	}
}

// Start launches the workers. Cancelling ctx aborts in-flight deliveries; it
// does not stop the workers, Close does.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for notice := range d.queue {
				d.deliver(ctx, notice)
			}
		}()
	}
}

func (d *Dispatcher) Enqueue(notice FollowRequestNotice) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.Notifications.WithLabelValues("dropped").Inc()
		return false
	}

	select {
	case d.queue <- notice:
		return true
	default:
		metrics.Notifications.WithLabelValues("dropped").Inc()
		logrus.WithFields(logrus.Fields{
			"notice_id": notice.ID,
			"to_user":   notice.ToUserID,
		}).Warn("notification queue full, dropping follow request notice")
		return false
	}
}

// Close stops accepting notices and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, notice FollowRequestNotice) {
	entry := logrus.WithFields(logrus.Fields{
		"notice_id": notice.ID,
		"from_user": notice.FromUserID,
		"to_user":   notice.ToUserID,
	})

	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := d.safeNotify(ctx, notice); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		entry.WithError(err).Error("follow request notification failed")
		return
	}

	metrics.Notifications.WithLabelValues("sent").Inc()
	entry.Debug("follow request notification sent")
}

func (d *Dispatcher) safeNotify(ctx context.Context, notice FollowRequestNotice) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panicked: %v", r)
		}
	}()
	return d.notifier.NotifyFollowRequest(ctx, notice)
}
