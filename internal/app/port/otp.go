package port

import "context"

// OTPVerifier sends and checks one-time SMS codes for a phone number.
type OTPVerifier interface {
	// SendCode texts a code to phoneE164 and returns the session that must accompany the answer.
	SendCode(ctx context.Context, phoneE164 string) (session string, err error)
	// VerifyCode checks the code and returns the verified phone number.
	VerifyCode(ctx context.Context, session, code string) (phoneE164 string, err error)
}
