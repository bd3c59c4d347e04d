package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk-news/kiosk/internal/entities"
)

type fakeSource struct {
	items []*entities.Notification
	err   error
	polls int
}

func (f *fakeSource) Refresh(context.Context) error {
	f.polls++
	return f.err
}

func (f *fakeSource) List() []*entities.Notification {
	return f.items
}

type fakeToaster struct {
	infos []string
}

func (f *fakeToaster) Success(msg string) {}
func (f *fakeToaster) Info(msg string)    { f.infos = append(f.infos, msg) }
func (f *fakeToaster) Error(msg string)   {}

func TestWatcher_poll(t *testing.T) {
	src := &fakeSource{
		items: []*entities.Notification{
			{ID: "n1", Title: "old", Message: "m", Read: false},
		},
	}
	tr := &fakeToaster{}

	w := New(src, tr, time.Minute, time.Second)

	// the first poll primes the seen set without toasting
	require.NoError(t, w.poll(context.Background()))
	assert.Empty(t, tr.infos)

	src.items = append(src.items,
		&entities.Notification{ID: "n2", Title: "breaking", Message: "news", Read: false},
		&entities.Notification{ID: "n3", Title: "seen on another device", Read: true},
	)

	require.NoError(t, w.poll(context.Background()))

	// only the new unread notification is surfaced
	require.Len(t, tr.infos, 1)
	assert.Equal(t, "breaking: news", tr.infos[0])

	// a notification is surfaced at most once
	require.NoError(t, w.poll(context.Background()))
	assert.Len(t, tr.infos, 1)
}

func TestWatcher_poll_error(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	w := New(src, &fakeToaster{}, time.Minute, time.Second)

	require.Error(t, w.poll(context.Background()))
}

func TestWatcher_Run_stops(t *testing.T) {
	src := &fakeSource{}
	w := New(src, &fakeToaster{}, 10*time.Millisecond, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}

	assert.Greater(t, src.polls, 1)
}
