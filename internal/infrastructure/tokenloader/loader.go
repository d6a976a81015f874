package tokenloader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

const defaultTokenDirectoryPath = "data/tokens"

// TokenFileLoader reads <network identifier>.json token lists from a directory.
type TokenFileLoader struct {
	tokenDirPath string
	logger       port.Logger
}

// NewTokenLoader creates a loader for dir; an empty dir means data/tokens.
func NewTokenLoader(dir string, logger port.Logger) *TokenFileLoader {
	if dir == "" {
		dir = defaultTokenDirectoryPath
	}
	return &TokenFileLoader{tokenDirPath: dir, logger: logger}
}

// GetTokensByNetwork returns the tokens of every requested network, keyed by chain ID.
// A missing directory yields no tokens; broken files and tokens for another chain are skipped.
func (l *TokenFileLoader) GetTokensByNetwork(networkDefs []entity.NetworkDefinition) (map[uint64][]entity.TokenInfo, error) {
	tokensByChainID := make(map[uint64][]entity.TokenInfo)

	files, err := os.ReadDir(l.tokenDirPath)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("Token directory not found, no extra tokens will be loaded", "path", l.tokenDirPath)
			return tokensByChainID, nil
		}
		return nil, fmt.Errorf("failed to read token directory %s: %w", l.tokenDirPath, err)
	}

	byIdentifier := make(map[string]entity.NetworkDefinition, len(networkDefs))
	for _, def := range networkDefs {
		byIdentifier[def.Identifier] = def
	}

	for _, file := range files {
		if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".json") {
			continue
		}
		identifier := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
		def, ok := byIdentifier[identifier]
		if !ok {
			l.logger.Debug("Token file for an untracked network, skipping", "file", file.Name())
			continue
		}

		path := filepath.Join(l.tokenDirPath, file.Name())
		tokens, err := utils.LoadTokensFromJSON(path)
		if err != nil {
			l.logger.Warn("Failed to load token file, skipping", "path", path, "error", err)
			continue
		}

		valid := make([]entity.TokenInfo, 0, len(tokens))
		for _, token := range tokens {
			if token.ChainID != def.ChainID {
				l.logger.Warn("Token has mismatched chain id, skipping",
					"file", path, "token_symbol", token.Symbol, "token_chain_id", token.ChainID, "expected_chain_id", def.ChainID)
				continue
			}
			if !common.IsHexAddress(token.Address) {
				l.logger.Warn("Token has invalid address, skipping", "file", path, "token_symbol", token.Symbol, "address", token.Address)
				continue
			}
			valid = append(valid, token)
		}
		if len(valid) > 0 {
			tokensByChainID[def.ChainID] = append(tokensByChainID[def.ChainID], valid...)
			l.logger.Info("Loaded tokens for network", "network", def.Identifier, "count", len(valid))
		}
	}

	return tokensByChainID, nil
}

var _ port.TokenProvider = (*TokenFileLoader)(nil)
