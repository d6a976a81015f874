package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintHash(t *testing.T) {
	t.Run("mined", func(t *testing.T) {
		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)

		hash := common.HexToHash("0xbeef")
		require.NoError(t, printHash(cmd, hash))
		assert.Equal(t, "Transaction: "+hash.Hex()+"\n", out.String())
	})

	t.Run("aborted action fails the command", func(t *testing.T) {
		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)

		require.ErrorIs(t, printHash(cmd, common.Hash{}), errSilent)
		assert.Equal(t, "No transaction sent.\n", out.String())
	})
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(" 123456 \n"))

	code, err := prompt(cmd, "Enter the OTP code: ")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.Equal(t, "Enter the OTP code: ", out.String())
}

func TestWithdrawHasNoOTPFlag(t *testing.T) {
	cmd := newWithdrawCommand(func() *app { return nil })
	assert.Nil(t, cmd.Flags().Lookup("otp"))
	assert.NotNil(t, cmd.Flags().Lookup("phone"))
}
