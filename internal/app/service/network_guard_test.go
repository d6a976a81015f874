package service

import (
	"testing"

	"offramp/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mismatchToast = "error::Please switch to Lisk Sepolia network"

func TestNetworkGuardIsCorrectChain(t *testing.T) {
	for _, chainID := range []uint64{1, 1135, 11155111, 4201} {
		g := newGateFixture(chainID).guard
		assert.False(t, g.IsCorrectChain(), "chain %d", chainID)
	}
	assert.True(t, newGateFixture(liskSepolia).guard.IsCorrectChain())

	w := newFakeWallet(liskSepolia)
	w.connected = false
	g := NewNetworkGuard(w, liskSepolia, "Lisk Sepolia", &recordingNotifier{}, logger.NewNop())
	assert.False(t, g.IsCorrectChain())
}

func TestNetworkGuardNotifiesOncePerMismatch(t *testing.T) {
	f := newGateFixture(1)
	f.guard.Start()
	defer f.guard.Stop()

	// Same mismatch observed repeatedly.
	f.wallet.emit(1, true)
	f.guard.Observe(1, true)
	assert.Equal(t, []string{mismatchToast}, f.notifier.all())

	// Another wrong chain is a new detection.
	f.wallet.emit(8453, true)
	assert.Len(t, f.notifier.all(), 2)

	// Back on target re-arms the notification.
	f.wallet.emit(liskSepolia, true)
	f.wallet.emit(8453, true)
	assert.Len(t, f.notifier.all(), 3)
}

func TestNetworkGuardReconnectOnWrongChainNotifiesAgain(t *testing.T) {
	f := newGateFixture(1)
	f.guard.Start()
	defer f.guard.Stop()
	require.Equal(t, []string{mismatchToast}, f.notifier.all())

	f.wallet.emit(0, false)
	f.wallet.emit(1, true)
	assert.Equal(t, []string{mismatchToast, mismatchToast}, f.notifier.all())
}

func TestNetworkGuardDisconnectedIsNotAMismatch(t *testing.T) {
	f := newGateFixture(liskSepolia)
	f.guard.Start()
	defer f.guard.Stop()

	f.wallet.emit(0, false)
	assert.False(t, f.guard.IsCorrectChain())
	assert.Empty(t, f.notifier.all())

	state := f.guard.State()
	assert.False(t, state.Connected)
	assert.Equal(t, uint64(liskSepolia), state.TargetChainID)
}

func TestNetworkGuardStopUnsubscribes(t *testing.T) {
	f := newGateFixture(liskSepolia)
	f.guard.Start()
	f.guard.Stop()

	f.wallet.emit(1, true)
	assert.True(t, f.guard.IsCorrectChain())
	assert.Empty(t, f.notifier.all())
}
