package tools

import (
	"context"
	"sync"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notifier is the progress/error side channel toward the caller.
type Notifier interface {
	Info(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// Notification is one message sent on the side channel.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Recorder is a Notifier that keeps every message in order.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Info(_ context.Context, msg string) {
	r.add(LevelInfo, msg)
}

func (r *Recorder) Error(_ context.Context, msg string) {
	r.add(LevelError, msg)
}

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	r.items = append(r.items, Notification{Level: level, Message: msg})
	r.mu.Unlock()
}

// Notifications returns a copy of the recorded messages.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Errors returns the recorded error messages.
func (r *Recorder) Errors() []string {
	var out []string
	for _, n := range r.Notifications() {
		if n.Level == LevelError {
			out = append(out, n.Message)
		}
	}
	return out
}

type nopNotifier struct{}

func (nopNotifier) Info(context.Context, string)  {}
func (nopNotifier) Error(context.Context, string) {}

// NopNotifier discards every message.
func NopNotifier() Notifier {
	return nopNotifier{}
}
