package port

import "offramp/internal/domain/entity"

// TokenProvider defines the interface for fetching token definitions.
type TokenProvider interface {
	// GetTokensByNetwork returns tokens keyed by chain ID for the given networks.
	GetTokensByNetwork(networkDefs []entity.NetworkDefinition) (map[uint64][]entity.TokenInfo, error)
}
