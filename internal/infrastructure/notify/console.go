package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"offramp/internal/app/port"
)

// Level of a rendered notification.
type Level string

const (
	LevelLoading Level = "loading"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

var prefixes = map[Level]string{
	LevelLoading: "…",
	LevelSuccess: "✔",
	LevelError:   "✖",
}

// ConsoleNotifier renders notifications as lines on a terminal.
// A loading notification stays "open" under its id until it is updated or replaced.
type ConsoleNotifier struct {
	out    io.Writer
	logger port.Logger
	now    func() time.Time

	mu      sync.Mutex
	loading map[string]string
}

func NewConsoleNotifier(out io.Writer, logger port.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, logger: logger, now: time.Now, loading: make(map[string]string)}
}

func (n *ConsoleNotifier) ShowError(msg string) {
	n.render(LevelError, "", msg)
}

func (n *ConsoleNotifier) ShowSuccess(msg string) {
	n.render(LevelSuccess, "", msg)
}

// ShowLoading opens a loading notification; reusing an id replaces the previous one.
func (n *ConsoleNotifier) ShowLoading(msg, id string) {
	n.mu.Lock()
	n.loading[id] = msg
	n.mu.Unlock()
	n.render(LevelLoading, id, msg)
}

func (n *ConsoleNotifier) UpdateToSuccess(id, msg string) {
	n.close(id)
	n.render(LevelSuccess, id, msg)
}

func (n *ConsoleNotifier) UpdateToError(id, msg string) {
	n.close(id)
	n.render(LevelError, id, msg)
}

// Pending returns the ids of loading notifications that were never resolved.
func (n *ConsoleNotifier) Pending() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]string, 0, len(n.loading))
	for id := range n.loading {
		ids = append(ids, id)
	}
	return ids
}

func (n *ConsoleNotifier) close(id string) {
	n.mu.Lock()
	_, open := n.loading[id]
	delete(n.loading, id)
	n.mu.Unlock()
	if !open {
		n.logger.Debug("Updating a notification that is not loading", "id", id)
	}
}

func (n *ConsoleNotifier) render(level Level, id, msg string) {
	n.logger.Debug("Notification", "level", string(level), "id", id, "message", msg)

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := fmt.Fprintf(n.out, "%s %s %s\n", n.now().Format("15:04:05"), prefixes[level], msg); err != nil {
		n.logger.Warn("Failed to write notification", "error", err)
	}
}

var _ port.Notifier = (*ConsoleNotifier)(nil)
