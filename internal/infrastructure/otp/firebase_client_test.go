package otp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"
)

type identityToolkitStub struct {
	session string
	code    string
	lastKey string
}

func (s *identityToolkitStub) handle(ctx *fasthttp.RequestCtx) {
	s.lastKey = string(ctx.QueryArgs().Peek("key"))
	ctx.SetContentType("application/json")

	switch string(ctx.Path()) {
	case "/v1/accounts:sendVerificationCode":
		var req sendCodeRequest
		_ = json.Unmarshal(ctx.PostBody(), &req)
		if req.PhoneNumber != "+233241234567" {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			ctx.SetBodyString(`{"error":{"code":400,"message":"INVALID_PHONE_NUMBER : Invalid format."}}`)
			return
		}
		ctx.SetBodyString(`{"sessionInfo":"` + s.session + `"}`)
	case "/v1/accounts:signInWithPhoneNumber":
		var req verifyCodeRequest
		_ = json.Unmarshal(ctx.PostBody(), &req)
		if req.Code != s.code {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			ctx.SetBodyString(`{"error":{"code":400,"message":"INVALID_CODE"}}`)
			return
		}
		ctx.SetBodyString(`{"idToken":"token","phoneNumber":"+233241234567"}`)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func newStubbedClient(t *testing.T, stub *identityToolkitStub, apiKey string) *FirebaseClient {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: stub.handle}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() { _ = server.Shutdown() })

	c := NewFirebaseClient("http://identitytoolkit.test/v1/", apiKey, "", time.Second, zap.NewNop())
	c.client = &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	return c
}

func TestSendAndVerifyCode(t *testing.T) {
	stub := &identityToolkitStub{session: "session-1", code: "123456"}
	c := newStubbedClient(t, stub, "api-key")
	ctx := context.Background()

	session, err := c.SendCode(ctx, "+233241234567")
	require.NoError(t, err)
	assert.Equal(t, "session-1", session)
	assert.Equal(t, "api-key", stub.lastKey)

	phone, err := c.VerifyCode(ctx, session, "123456")
	require.NoError(t, err)
	assert.Equal(t, "+233241234567", phone)
}

func TestAPIErrorsAreMapped(t *testing.T) {
	stub := &identityToolkitStub{session: "session-1", code: "123456"}
	c := newStubbedClient(t, stub, "api-key")
	ctx := context.Background()

	_, err := c.SendCode(ctx, "+10000")
	require.ErrorIs(t, err, ErrInvalidPhone)

	_, err = c.VerifyCode(ctx, "session-1", "000000")
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestMissingAPIKey(t *testing.T) {
	c := NewFirebaseClient("http://unused", "", "", time.Second, zap.NewNop())
	_, err := c.SendCode(context.Background(), "+233241234567")
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestMapAPIError(t *testing.T) {
	assert.ErrorIs(t, mapAPIError(400, "SESSION_EXPIRED"), ErrSessionExpired)
	assert.ErrorIs(t, mapAPIError(429, "TOO_MANY_ATTEMPTS_TRY_LATER : slow down"), ErrTooManyAttempts)
	assert.EqualError(t, mapAPIError(500, ""), "identity toolkit request failed with status 500: no error message")
}
