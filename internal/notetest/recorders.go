package notetest

import (
	"context"
	"sync"

	"notekeeper-be/pkg/events"
)

// ActivityRecorder captures published activity events.
type ActivityRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *ActivityRecorder) Publish(_ context.Context, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *ActivityRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType()
	}
	return types
}

func (r *ActivityRecorder) Last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

// Mailbox captures welcome mails.
type Mailbox struct {
	mu   sync.Mutex
	sent []string
}

func (m *Mailbox) SendWelcome(toEmail, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, toEmail)
	return nil
}

func (m *Mailbox) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}
