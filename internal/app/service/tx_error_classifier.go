package service

import (
	"strings"

	"offramp/internal/domain/entity"
)

// ClassificationRule maps a substring of a failure message to a category and user message.
type ClassificationRule struct {
	Substring string
	Category  entity.ErrorCategory
	Message   string
}

const fallbackFailureDetail = "Please try again"

// transactionErrorRules are evaluated in order; the first match wins.
var transactionErrorRules = []ClassificationRule{
	{Substring: "user rejected", Category: entity.ErrorUserRejected, Message: "Transaction cancelled by user"},
	{Substring: "insufficient funds", Category: entity.ErrorInsufficientFunds, Message: "Insufficient funds for transaction"},
	{Substring: "execution reverted", Category: entity.ErrorReverted, Message: "Transaction reverted. Please check your balance and try again"},
	{Substring: "gas required exceeds allowance", Category: entity.ErrorInsufficientGas, Message: "Insufficient gas for transaction"},
}

// Rules returns a copy of the ordered rule table.
func Rules() []ClassificationRule {
	rules := make([]ClassificationRule, len(transactionErrorRules))
	copy(rules, transactionErrorRules)
	return rules
}

// ClassifyMessage maps a raw failure message to a user-facing classification.
// Matching is case-sensitive.
func ClassifyMessage(msg string) entity.Classification {
	for _, rule := range transactionErrorRules {
		if strings.Contains(msg, rule.Substring) {
			return entity.Classification{Category: rule.Category, Message: rule.Message}
		}
	}
	detail := msg
	if detail == "" {
		detail = fallbackFailureDetail
	}
	return entity.Classification{Category: entity.ErrorUnknown, Message: "Transaction failed: " + detail}
}

// ClassifyError classifies err by its full message chain. A nil error is Unknown.
func ClassifyError(err error) entity.Classification {
	if err == nil {
		return ClassifyMessage("")
	}
	return ClassifyMessage(err.Error())
}
