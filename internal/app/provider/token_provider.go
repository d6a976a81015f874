package provider

import (
	"sync"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
)

type tokenProviderImpl struct {
	source port.TokenProvider
	logger port.Logger

	mu    sync.Mutex
	cache map[uint64][]entity.TokenInfo
}

// NewTokenProvider wraps source and keeps the first successful result for the process lifetime.
func NewTokenProvider(source port.TokenProvider, logger port.Logger) port.TokenProvider {
	return &tokenProviderImpl{source: source, logger: logger, cache: make(map[uint64][]entity.TokenInfo)}
}

// GetTokensByNetwork loads tokens for networks not seen before and serves the rest from memory.
func (p *tokenProviderImpl) GetTokensByNetwork(networkDefs []entity.NetworkDefinition) (map[uint64][]entity.TokenInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var missing []entity.NetworkDefinition
	for _, def := range networkDefs {
		if _, ok := p.cache[def.ChainID]; !ok {
			missing = append(missing, def)
		}
	}

	if len(missing) > 0 {
		p.logger.Debug("Loading tokens", "networks", len(missing))
		loaded, err := p.source.GetTokensByNetwork(missing)
		if err != nil {
			p.logger.Error("Failed to load tokens", "error", err)
			return nil, err
		}
		for _, def := range missing {
			p.cache[def.ChainID] = loaded[def.ChainID]
		}
	} else {
		p.logger.Debug("Returning cached tokens by network")
	}

	result := make(map[uint64][]entity.TokenInfo, len(networkDefs))
	for _, def := range networkDefs {
		if tokens := p.cache[def.ChainID]; len(tokens) > 0 {
			result[def.ChainID] = tokens
		}
	}
	return result, nil
}
