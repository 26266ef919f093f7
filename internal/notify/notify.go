// Package notify delivers user-facing messages such as "out of stock" toasts.
package notify

import (
	"sync"

	"github.com/nikolayk812/cartstore-demo/internal/port"
	"github.com/sirupsen/logrus"
)

type logNotifier struct {
	log logrus.FieldLogger
}

func NewLogger(log logrus.FieldLogger) port.Notifier {
	return &logNotifier{log: log.WithField("channel", "toast")}
}

func (n *logNotifier) Notify(message string) {
	n.log.Warn(message)
}

const DefaultBuffer = 100

// Recorder keeps the newest messages in delivery order until drained.
// Past its limit the oldest message is dropped.
type Recorder struct {
	mu       sync.Mutex
	limit    int
	messages []string
}

type RecorderOption func(*Recorder)

// WithLimit caps how many undrained messages are kept. Non-positive values keep the default.
func WithLimit(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.limit = n
		}
	}
}

func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{limit: DefaultBuffer}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Recorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.messages) >= r.limit {
		r.messages = append(r.messages[:0], r.messages[len(r.messages)-r.limit+1:]...)
	}
	r.messages = append(r.messages, message)
}

func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.messages))
	copy(out, r.messages)

	return out
}

// Drain returns pending messages and forgets them.
func (r *Recorder) Drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.messages
	r.messages = nil

	if out == nil {
		return []string{}
	}

	return out
}

type multi []port.Notifier

func Multi(notifiers ...port.Notifier) port.Notifier {
	return multi(notifiers)
}

func (m multi) Notify(message string) {
	for _, n := range m {
		n.Notify(message)
	}
}
