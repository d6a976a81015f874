package entity

// ChainState is the wallet's view of the network it is connected to.
// CurrentChainID is meaningful only while Connected is true.
type ChainState struct {
	CurrentChainID uint64
	Connected      bool
	TargetChainID  uint64
}

// IsCorrectChain reports whether the connected wallet sits on the target chain.
// A disconnected wallet is never on the correct chain.
func (s ChainState) IsCorrectChain() bool {
	return s.Connected && s.CurrentChainID == s.TargetChainID
}

// IsMismatch reports whether a connected wallet sits on some other chain.
func (s ChainState) IsMismatch() bool {
	return s.Connected && s.CurrentChainID != s.TargetChainID
}
