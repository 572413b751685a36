package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []FollowRequestNotice
	err     error
}

func (r *recordingNotifier) NotifyFollowRequest(_ context.Context, notice FollowRequestNotice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
	return r.err
}

func (r *recordingNotifier) received() []FollowRequestNotice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FollowRequestNotice(nil), r.notices...)
}

type panickingNotifier struct{}

func (panickingNotifier) NotifyFollowRequest(context.Context, FollowRequestNotice) error {
	panic("smtp exploded")
}

func TestDispatcherDeliversQueuedNotices(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(notifier, 3, 10)
	d.Start(context.Background())

	for i := 1; i <= 5; i++ {
		require.True(t, d.Enqueue(FollowRequestNotice{FromUserID: uint(i), ToUserID: 99}))
	}
	d.Close()

	assert.Len(t, notifier.received(), 5)
}

func TestDispatcherSurvivesFailingNotifier(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("connection refused")}
	d := NewDispatcher(notifier, 1, 4)
	d.Start(context.Background())

	assert.True(t, d.Enqueue(FollowRequestNotice{ID: "a"}))
	assert.True(t, d.Enqueue(FollowRequestNotice{ID: "b"}))
	d.Close()

	assert.Len(t, notifier.received(), 2)
}

func TestDispatcherRecoversFromPanics(t *testing.T) {
	d := NewDispatcher(panickingNotifier{}, 1, 1)
	d.Start(context.Background())

	assert.True(t, d.Enqueue(FollowRequestNotice{ID: "boom"}))
	assert.NotPanics(t, d.Close)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := NewDispatcher(&recordingNotifier{}, 1, 1)

	// Workers are not started, so the single slot fills up.
	assert.True(t, d.Enqueue(FollowRequestNotice{ID: "first"}))
	assert.False(t, d.Enqueue(FollowRequestNotice{ID: "second"}))

	d.Start(context.Background())
	d.Close()
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(&recordingNotifier{}, 1, 1)
	d.Start(context.Background())
	d.Close()

	assert.False(t, d.Enqueue(FollowRequestNotice{ID: "late"}))
	assert.NotPanics(t, d.Close)
}
