package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"offramp/internal/app/port"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrSessionExpired  = errors.New("verification session expired")
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrTooManyAttempts = errors.New("too many attempts, try again later")
	ErrMissingAPIKey   = errors.New("firebase api key is not configured")
)

type sendCodeRequest struct {
	PhoneNumber    string `json:"phoneNumber"`
	RecaptchaToken string `json:"recaptchaToken,omitempty"`
}

type sendCodeResponse struct {
	SessionInfo string `json:"sessionInfo"`
}

type verifyCodeRequest struct {
	SessionInfo string `json:"sessionInfo"`
	Code        string `json:"code"`
}

type verifyCodeResponse struct {
	PhoneNumber string `json:"phoneNumber"`
	IDToken     string `json:"idToken"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FirebaseClient sends and verifies SMS codes through the Identity Toolkit REST API.
type FirebaseClient struct {
	client         *fasthttp.Client
	baseURL        string
	apiKey         string
	recaptchaToken string
	timeout        time.Duration
	logger         *zap.Logger
}

func NewFirebaseClient(baseURL, apiKey, recaptchaToken string, timeout time.Duration, logger *zap.Logger) *FirebaseClient {
	return &FirebaseClient{
		client:         &fasthttp.Client{},
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		recaptchaToken: recaptchaToken,
		timeout:        timeout,
		logger:         logger.Named("FirebaseOTPClient"),
	}
}

// SendCode implements port.OTPVerifier.
func (c *FirebaseClient) SendCode(ctx context.Context, phoneE164 string) (string, error) {
	var resp sendCodeResponse
	if err := c.post(ctx, "accounts:sendVerificationCode", sendCodeRequest{
		PhoneNumber:    phoneE164,
		RecaptchaToken: c.recaptchaToken,
	}, &resp); err != nil {
		return "", err
	}
	if resp.SessionInfo == "" {
		return "", fmt.Errorf("firebase returned no session for %s", phoneE164)
	}
	c.logger.Info("Verification code sent", zap.String("phone", phoneE164))
	return resp.SessionInfo, nil
}

// VerifyCode implements port.OTPVerifier.
func (c *FirebaseClient) VerifyCode(ctx context.Context, session, code string) (string, error) {
	var resp verifyCodeResponse
	if err := c.post(ctx, "accounts:signInWithPhoneNumber", verifyCodeRequest{SessionInfo: session, Code: code}, &resp); err != nil {
		return "", err
	}
	c.logger.Info("Phone number verified", zap.String("phone", resp.PhoneNumber))
	return resp.PhoneNumber, nil
}

func (c *FirebaseClient) post(ctx context.Context, method string, body, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	requestURL := fmt.Sprintf("%s/%s", c.baseURL, method)
	c.logger.Debug("Calling Identity Toolkit", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.URI().QueryArgs().Set("key", c.apiKey)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Identity Toolkit request failed", zap.String("method", method), zap.Error(err))
		return fmt.Errorf("failed to execute %s request: %w", method, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		var apiErr apiErrorResponse
		_ = json.Unmarshal(rawBody, &apiErr)
		c.logger.Warn("Identity Toolkit returned an error",
			zap.String("method", method),
			zap.Int("statusCode", resp.StatusCode()),
			zap.String("message", apiErr.Error.Message))
		return mapAPIError(resp.StatusCode(), apiErr.Error.Message)
	}

	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return nil
}

func mapAPIError(status int, message string) error {
	// Сообщения вида "INVALID_CODE" или "TOO_MANY_ATTEMPTS_TRY_LATER : ..."
	code, _, _ := strings.Cut(message, " ")
	switch code {
	case "INVALID_CODE":
		return ErrInvalidCode
	case "SESSION_EXPIRED", "INVALID_SESSION_INFO", "CODE_EXPIRED":
		return ErrSessionExpired
	case "INVALID_PHONE_NUMBER", "MISSING_PHONE_NUMBER":
		return ErrInvalidPhone
	case "TOO_MANY_ATTEMPTS_TRY_LATER", "QUOTA_EXCEEDED":
		return ErrTooManyAttempts
	}
	if message == "" {
		message = "no error message"
	}
	return fmt.Errorf("identity toolkit request failed with status %d: %s", status, message)
}

var _ port.OTPVerifier = (*FirebaseClient)(nil)
