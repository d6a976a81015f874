package notify

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"offramp/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func newTestNotifier() (*ConsoleNotifier, *bytes.Buffer) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf, logger.NewNop())
	n.now = func() time.Time { return time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC) }
	return n, &buf
}

func TestConsoleNotifierLifecycle(t *testing.T) {
	n, buf := newTestNotifier()

	n.ShowLoading("Waiting for approval...", "approve")
	assert.Equal(t, []string{"approve"}, n.Pending())

	n.UpdateToSuccess("approve", "USDT approved successfully!")
	assert.Empty(t, n.Pending())

	n.ShowLoading("Converting USDT to GHS...", "convert")
	n.UpdateToError("convert", "Transaction cancelled by user")
	n.ShowError("Please connect your wallet")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"12:30:00 … Waiting for approval...",
		"12:30:00 ✔ USDT approved successfully!",
		"12:30:00 … Converting USDT to GHS...",
		"12:30:00 ✖ Transaction cancelled by user",
		"12:30:00 ✖ Please connect your wallet",
	}, lines)
}

func TestConsoleNotifierReplacesLoadingWithSameID(t *testing.T) {
	n, _ := newTestNotifier()
	n.ShowLoading("first", "withdraw")
	n.ShowLoading("second", "withdraw")
	assert.Len(t, n.Pending(), 1)

	n.UpdateToSuccess("unknown", "done")
	assert.Len(t, n.Pending(), 1)
}
