package session

import (
	"log/slog"
	"sync"
)

// Notification is one user-facing status message (the toast equivalent).
type Notification struct {
	Level   string `json:"level"` // "success" or "info"
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Notifier surfaces human-readable status messages to the presentation layer.
type Notifier interface {
	Success(message, detail string)
	Info(message, detail string)
}

// SlogNotifier logs notifications through the default structured logger.
type SlogNotifier struct{}

func (SlogNotifier) Success(message, detail string) {
	slog.Info("notification", "level", "success", "message", message, "detail", detail)
}

func (SlogNotifier) Info(message, detail string) {
	slog.Info("notification", "level", "info", "message", message, "detail", detail)
}

// MemoryNotifier records notifications for tests and for the API layer to
// drain toward the client.
type MemoryNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{notes: []Notification{}}
}

func (n *MemoryNotifier) Success(message, detail string) {
	n.append(Notification{Level: "success", Message: message, Detail: detail})
}

func (n *MemoryNotifier) Info(message, detail string) {
	n.append(Notification{Level: "info", Message: message, Detail: detail})
}

func (n *MemoryNotifier) append(note Notification) {
	n.mu.Lock()
	n.notes = append(n.notes, note)
	n.mu.Unlock()
}

// Notifications returns a copy of everything recorded so far.
func (n *MemoryNotifier) Notifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification{}, n.notes...)
}

// Drain returns recorded notifications and clears the buffer.
func (n *MemoryNotifier) Drain() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.notes
	n.notes = []Notification{}
	return out
}
