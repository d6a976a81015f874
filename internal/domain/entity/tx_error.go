package entity

// ErrorCategory is the user-facing class of a failed transaction.
type ErrorCategory int

const (
	// ErrorUnknown covers every failure no rule matched.
	ErrorUnknown ErrorCategory = iota
	ErrorUserRejected
	ErrorInsufficientFunds
	ErrorReverted
	ErrorInsufficientGas
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrorUserRejected:
		return "user_rejected"
	case ErrorInsufficientFunds:
		return "insufficient_funds"
	case ErrorReverted:
		return "reverted"
	case ErrorInsufficientGas:
		return "insufficient_gas"
	default:
		return "unknown"
	}
}

// Classification pairs a category with the message shown to the user.
type Classification struct {
	Category ErrorCategory
	Message  string
}
