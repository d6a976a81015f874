package utils

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBigInt(t *testing.T) {
	v, _ := new(big.Int).SetString("1234500000000000000", 10)
	s, err := FormatBigInt(v, 18)
	require.NoError(t, err)
	assert.Equal(t, "1.2345", s)

	s, err = FormatBigInt(big.NewInt(0), 18)
	require.NoError(t, err)
	assert.Equal(t, "0", s)

	s, err = FormatBigInt(big.NewInt(42), 0)
	require.NoError(t, err)
	assert.Equal(t, "42", s)

	s, err = FormatBigInt(nil, 6)
	require.NoError(t, err)
	assert.Equal(t, "0", s)
}

func TestParseUnits(t *testing.T) {
	got, err := ParseUnits("12.5", 18)
	require.NoError(t, err)
	want, _ := new(big.Int).SetString("12500000000000000000", 10)
	assert.Equal(t, want, got)

	got, err = ParseUnits(".25", 2)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(25), got)

	got, err = ParseUnits("7", 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), got)

	for _, bad := range []string{"", "abc", "1.2.3", "1.", "1.234"} {
		_, err := ParseUnits(bad, 2)
		assert.Error(t, err, bad)
	}
}

func TestUnitsAndToFloat(t *testing.T) {
	assert.Equal(t, "100000000000000000000", Units(100, 18).String())
	assert.InDelta(t, 12.5, ToFloat(big.NewInt(1250), 2), 1e-9)
	assert.Zero(t, ToFloat(nil, 18))
}

func TestBatchBlockRanges(t *testing.T) {
	assert.Equal(t, []BlockRange{{0, 9}, {10, 19}, {20, 25}}, BatchBlockRanges(0, 25, 10))
	assert.Equal(t, []BlockRange{{5, 5}}, BatchBlockRanges(5, 5, 10))
	assert.Equal(t, []BlockRange{{1, 100}}, BatchBlockRanges(1, 100, 0))
	assert.Empty(t, BatchBlockRanges(10, 1, 5))
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "0xabcd...7890", ShortHash("0xabcdef0000000000000000000000000000000000000000000000000000007890"))
	assert.Equal(t, "0x12", ShortHash("0x12"))
}

func TestLoadTokensFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lisk-sepolia.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"chainId":4202,"address":"0xAE134a846a92CA8E7803Ca075A1a0EE854Cd6168","name":"Tether USD","symbol":"USDT","decimals":18}]`), 0o600))

	tokens, err := LoadTokensFromJSON(path)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, uint64(4202), tokens[0].ChainID)
	assert.Equal(t, "USDT", tokens[0].Symbol)
	assert.Equal(t, uint8(18), tokens[0].Decimals)
}
