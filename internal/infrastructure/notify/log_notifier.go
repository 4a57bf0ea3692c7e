// Package notify delivers user-facing notifications.
package notify

import (
	"sync"

	"github.com/rs/zerolog"
)

// LogNotifier writes notifications to the structured log. It is the default
// sink when no push channel is attached.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(title, body string) {
	n.log.Info().Str("title", title).Str("body", body).Msg("notification")
}

// Async wraps a notifier so Notify never blocks the caller. Notifications that
// arrive while the buffer is full are dropped.
type Async struct {
	next  Notifier
	queue chan [2]string
	log   zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// Notifier is the delivery side wrapped by Async.
type Notifier interface {
	Notify(title, body string)
}

func NewAsync(next Notifier, buffer int, log zerolog.Logger) *Async {
	if buffer <= 0 {
		buffer = 32
	}
	a := &Async{next: next, queue: make(chan [2]string, buffer), log: log}
	go a.run()
	return a
}

func (a *Async) Notify(title, body string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	select {
	case a.queue <- [2]string{title, body}:
	default:
		a.log.Warn().Str("title", title).Msg("notification dropped, queue full")
	}
}

// Close stops delivery after the queued notifications are sent.
func (a *Async) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
}

func (a *Async) run() {
	for n := range a.queue {
		a.next.Notify(n[0], n[1])
	}
}
