package walletloader

import (
	"bufio"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"offramp/internal/app/port"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoKey is returned when neither a raw key nor a key file is configured.
var ErrNoKey = errors.New("no signing key configured: set OFFRAMP_PRIVATE_KEY or wallet.keyFile")

// KeyFileLoader loads the signing key of the local wallet.
type KeyFileLoader struct {
	loggerInfo func(msg string, args ...any)
}

// NewKeyFileLoader creates a new KeyFileLoader.
func NewKeyFileLoader(logger port.Logger) *KeyFileLoader {
	return &KeyFileLoader{loggerInfo: logger.Info}
}

// Load returns the private key from rawHex when set, otherwise from keyFile.
// keyFile may be a go-ethereum keystore JSON (decrypted with password) or a plain
// text file holding a hex key; in the latter, blank lines and "#" comments are skipped.
func (l *KeyFileLoader) Load(rawHex, keyFile, password string) (*ecdsa.PrivateKey, error) {
	if rawHex != "" {
		key, err := parseHexKey(rawHex)
		if err != nil {
			return nil, err
		}
		l.loaded("env", key)
		return key, nil
	}
	if keyFile == "" {
		return nil, ErrNoKey
	}

	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %s: %w", keyFile, err)
	}

	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		k, err := keystore.DecryptKey(data, password)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt keystore %s: %w", keyFile, err)
		}
		l.loaded(keyFile, k.PrivateKey)
		return k.PrivateKey, nil
	}

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, err := parseHexKey(line)
		if err != nil {
			return nil, fmt.Errorf("invalid key in %s: %w", keyFile, err)
		}
		l.loaded(keyFile, key)
		return key, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning key file %s: %w", keyFile, err)
	}
	return nil, fmt.Errorf("key file %s holds no key", keyFile)
}

func (l *KeyFileLoader) loaded(source string, key *ecdsa.PrivateKey) {
	if l.loggerInfo != nil {
		l.loggerInfo("Signing key loaded", "source", source, "address", crypto.PubkeyToAddress(key.PublicKey).Hex())
	}
}

func parseHexKey(s string) (*ecdsa.PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	key, err := crypto.HexToECDSA(s)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// AddressOf returns the account address of key.
func AddressOf(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
