// Package watcher contains a notification poller.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kiosk-news/kiosk/internal/entities"
	"github.com/kiosk-news/kiosk/internal/toast"
)

var log = logrus.WithField("package", "watcher")

// Source is the notification store the watcher polls.
type Source interface {
	Refresh(ctx context.Context) error
	List() []*entities.Notification
}

// Watcher polls the notification store and surfaces newly seen unread
// notifications as toasts.
type Watcher struct {
	src Source
	t   toast.Toaster

	interval      time.Duration
	retryInterval time.Duration

	seen   map[string]struct{}
	primed bool
}

// New creates new instance of Watcher.
func New(src Source, t toast.Toaster, interval, retryInterval time.Duration) *Watcher {
	return &Watcher{
		src:           src,
		t:             t,
		interval:      interval,
		retryInterval: retryInterval,
		seen:          map[string]struct{}{},
	}
}

// Run polls until ctx is done. Poll errors are logged and retried after the
// retry interval.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			if err := w.poll(ctx); err != nil {
				log.WithError(err).Error("failed to poll notifications")
				timer.Reset(w.retryInterval)
				continue
			}

			timer.Reset(w.interval)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) error {
	if err := w.src.Refresh(ctx); err != nil {
		return err
	}

	items := w.src.List()

	for _, v := range items {
		if _, ok := w.seen[v.ID]; ok {
			continue
		}
		w.seen[v.ID] = struct{}{}

		// the first poll only primes the seen set
		if !w.primed || v.Read {
			continue
		}

		w.t.Info(fmt.Sprintf("%s: %s", v.Title, v.Message))
	}

	w.primed = true

	return nil
}
