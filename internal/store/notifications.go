package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kiosk-news/kiosk/internal/entities"
	"github.com/kiosk-news/kiosk/internal/newsapi"
	"github.com/kiosk-news/kiosk/internal/toast"
)

// Notifications mirrors the backend's notification list for the current
// session. Server order is preserved, consumers sort for presentation.
type Notifications struct {
	api     newsapi.Client
	session *Session
	t       toast.Toaster

	mu    sync.Mutex
	items []*entities.Notification
}

// NewNotifications creates new instance of Notifications.
func NewNotifications(api newsapi.Client, session *Session, t toast.Toaster) *Notifications {
	return &Notifications{
		api:     api,
		session: session,
		t:       t,
	}
}

// Refresh replaces the local list with the server's current one.
// Without a session it is a no-op.
func (n *Notifications) Refresh(ctx context.Context) error {
	token, err := n.session.Token()
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil
		}
		return err
	}

	items, err := n.api.ListNotifications(ctx, token)
	if err != nil {
		n.t.Error(fmt.Sprintf("Failed to fetch notifications: %s", err))
		return fmt.Errorf("failed to fetch notifications: %w", err)
	}

	n.mu.Lock()
	n.items = items
	n.mu.Unlock()

	return nil
}

// List returns a snapshot of the list in server order.
func (n *Notifications) List() []*entities.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]*entities.Notification, len(n.items))
	for i, v := range n.items {
		c := *v
		out[i] = &c
	}

	return out
}

// UnreadCount returns the number of unread notifications.
func (n *Notifications) UnreadCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	var c int
	for _, v := range n.items {
		if !v.Read {
			c++
		}
	}

	return c
}

// MarkRead flips the local read flag immediately and reports the read to the
// backend. A failed report is surfaced but the local flag is never rolled
// back, the read flag only moves towards true.
func (n *Notifications) MarkRead(ctx context.Context, id string) error {
	token, err := n.session.Token()
	if err != nil {
		return err
	}

	n.mu.Lock()
	for _, v := range n.items {
		if v.ID == id {
			v.Read = true
			break
		}
	}
	n.mu.Unlock()

	if err := n.api.MarkNotificationRead(ctx, token, id); err != nil {
		n.t.Error(fmt.Sprintf("Failed to mark notification as read: %s", err))
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	return nil
}

// MarkAllRead applies MarkRead to each id independently, partial failures are
// not aggregated.
func (n *Notifications) MarkAllRead(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := n.MarkRead(ctx, id); err != nil {
			log.WithError(err).WithField("id", id).Error("failed to mark notification as read")
		}
	}
}

// Delete removes the given notifications from the backend and, once the
// server confirms, drops them from the local list in a single update.
func (n *Notifications) Delete(ctx context.Context, ids []string) error {
	token, err := n.session.Token()
	if err != nil {
		return err
	}

	if err := n.api.DeleteNotifications(ctx, token, ids); err != nil {
		n.t.Error(fmt.Sprintf("Failed to delete notifications: %s", err))
		return fmt.Errorf("failed to delete notifications: %w", err)
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	n.mu.Lock()
	out := n.items[:0]
	for _, v := range n.items {
		if _, ok := drop[v.ID]; !ok {
			out = append(out, v)
		}
	}
	n.items = out
	n.mu.Unlock()

	return nil
}
