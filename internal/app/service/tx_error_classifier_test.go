package service

import (
	"errors"
	"fmt"
	"testing"

	"offramp/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		category entity.ErrorCategory
		text     string
	}{
		{"user rejected", "MetaMask Tx Signature: user rejected transaction", entity.ErrorUserRejected, "Transaction cancelled by user"},
		{"insufficient funds", "insufficient funds for gas * price + value", entity.ErrorInsufficientFunds, "Insufficient funds for transaction"},
		{"reverted", "execution reverted: ERC20: transfer amount exceeds balance", entity.ErrorReverted, "Transaction reverted. Please check your balance and try again"},
		{"gas allowance", "gas required exceeds allowance (30000000)", entity.ErrorInsufficientGas, "Insufficient gas for transaction"},
		{"fallback", "weird custom node error", entity.ErrorUnknown, "Transaction failed: weird custom node error"},
		{"empty", "", entity.ErrorUnknown, "Transaction failed: Please try again"},
		{"case sensitive", "User Rejected the request", entity.ErrorUnknown, "Transaction failed: User Rejected the request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyMessage(tt.msg)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.text, got.Message)
		})
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	got := ClassifyMessage("insufficient funds, and then the user rejected it")
	assert.Equal(t, entity.ErrorUserRejected, got.Category)

	got = ClassifyMessage("execution reverted: gas required exceeds allowance")
	assert.Equal(t, entity.ErrorReverted, got.Category)
}

func TestClassifyIsPure(t *testing.T) {
	msg := "execution reverted"
	assert.Equal(t, ClassifyMessage(msg), ClassifyMessage(msg))
}

func TestClassifyError(t *testing.T) {
	wrapped := fmt.Errorf("send offRamp: %w", errors.New("user rejected the request"))
	assert.Equal(t, entity.ErrorUserRejected, ClassifyError(wrapped).Category)
	assert.Equal(t, "Transaction failed: Please try again", ClassifyError(nil).Message)
}

func TestRulesReturnsCopy(t *testing.T) {
	rules := Rules()
	assert.Len(t, rules, 4)
	assert.Equal(t, "user rejected", rules[0].Substring)

	rules[0].Substring = "mutated"
	assert.Equal(t, "user rejected", Rules()[0].Substring)
}
