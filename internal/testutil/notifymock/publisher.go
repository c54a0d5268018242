package notifymock

import (
	"context"
	"sync"

	"sacco-ledger/internal/domain/notification"
)

var _ notification.Publisher = (*Publisher)(nil)

// Publisher records every published notification; PublishFn, when set,
// decides the returned error.
type Publisher struct {
	PublishFn func(ctx context.Context, n *notification.Notification) error

	mu   sync.Mutex
	sent []notification.Notification
}

func (p *Publisher) Publish(ctx context.Context, n *notification.Notification) error {
	p.mu.Lock()
	p.sent = append(p.sent, *n)
	p.mu.Unlock()
	if p.PublishFn != nil {
		return p.PublishFn(ctx, n)
	}
	return nil
}

// Sent returns a copy of what has been published so far.
func (p *Publisher) Sent() []notification.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notification.Notification(nil), p.sent...)
}

// Types lists the types of published notifications in order.
func (p *Publisher) Types() []notification.Type {
	var out []notification.Type
	for _, n := range p.Sent() {
		out = append(out, n.Type)
	}
	return out
}

var _ notification.Repository = (*Repo)(nil)

// Repo is a function-backed notification.Repository; unset Create records
// into Created.
type Repo struct {
	CreateFn     func(ctx context.Context, n *notification.Notification) error
	ListByUserFn func(ctx context.Context, userID string, limit int) ([]notification.Notification, error)

	Created []notification.Notification
}

func (m *Repo) Create(ctx context.Context, n *notification.Notification) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, n)
	}
	m.Created = append(m.Created, *n)
	return nil
}

func (m *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, limit)
	}
	return m.Created, nil
}
