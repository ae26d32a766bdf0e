package cli

import (
	"context"
	"net/http"
	"testing"

	"github.com/agrisonic/agrisonic/internal/client/fakeapi"
	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/client/services"
	"github.com/agrisonic/agrisonic/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	a := newTestApp(t, "a@b.com\n")
	stubPasswords(t, "secret123")
	a.api.Handle(http.MethodPost, services.PathSignin, signinReply("Amina"))

	require.NoError(t, a.Login(context.Background()))
	assert.Contains(t, a.buf.String(), "Welcome, Amina!")

	var body models.LoginRequest
	require.NoError(t, a.api.Last(http.MethodPost, services.PathSignin).Decode(&body))
	assert.Equal(t, models.LoginRequest{Email: "a@b.com", Password: "secret123"}, body)
}

func TestLogin_ServerMessagePropagates(t *testing.T) {
	a := newTestApp(t, "a@b.com\n")
	stubPasswords(t, "wrongpass")
	a.api.Handle(http.MethodPost, services.PathSignin, fakeapi.Fail(http.StatusUnauthorized, "Invalid credentials"))

	err := a.Login(context.Background())
	require.ErrorIs(t, err, common.ErrServer)
	assert.Equal(t, "Invalid credentials", common.Message(err))
	assert.False(t, a.isLoggedIn())
}

func TestLogin_PasswordReadError(t *testing.T) {
	a := newTestApp(t, "a@b.com\n")
	stubPasswords(t)

	require.Error(t, a.Login(context.Background()))
	assert.Zero(t, a.api.TotalCalls())
}

func TestSignupThenVerify(t *testing.T) {
	a := newTestApp(t, "new@b.com\nNia\n")
	stubPasswords(t, "secret123", "secret123")
	a.api.Handle(http.MethodPost, services.PathSignup, fakeapi.OK(map[string]any{"message": "Check your email", "requiresVerification": true}))
	a.api.Handle(http.MethodPost, services.PathVerifySignup, fakeapi.OK(nil))
	a.api.Handle(http.MethodPost, services.PathSendVerificationCode, fakeapi.OK(nil))
	ctx := context.Background()

	require.NoError(t, a.Signup(ctx))
	assert.Contains(t, a.buf.String(), "Check your email")
	assert.Equal(t, services.SignupPendingVerification, a.authService.State())

	require.NoError(t, a.Resend(ctx))
	assert.Equal(t, 1, a.api.Calls(http.MethodPost, services.PathSendVerificationCode))

	a.feed("123456\n")
	require.NoError(t, a.Verify(ctx))
	assert.Contains(t, a.buf.String(), "Account verified")
	assert.Equal(t, services.Anonymous, a.authService.State())

	var body models.VerifySignupRequest
	require.NoError(t, a.api.Last(http.MethodPost, services.PathVerifySignup).Decode(&body))
	assert.Equal(t, models.VerifySignupRequest{Email: "new@b.com", Code: "123456"}, body)
}

func TestSignup_MismatchedPasswordsMakeNoCall(t *testing.T) {
	a := newTestApp(t, "new@b.com\nNia\n")
	stubPasswords(t, "secret123", "secret124")

	require.ErrorIs(t, a.Signup(context.Background()), common.ErrValidation)
	assert.Zero(t, a.api.TotalCalls())
}

func TestVerify_WithoutPendingAsksForEmail(t *testing.T) {
	a := newTestApp(t, "late@b.com\n654321\n")
	a.api.Handle(http.MethodPost, services.PathVerifySignup, fakeapi.OK(nil))

	require.NoError(t, a.Verify(context.Background()))

	var body models.VerifySignupRequest
	require.NoError(t, a.api.Last(http.MethodPost, services.PathVerifySignup).Decode(&body))
	assert.Equal(t, "late@b.com", body.Email)
}

func TestForgotThenVerifyChangesPassword(t *testing.T) {
	a := newTestApp(t, "a@b.com\n")
	stubPasswords(t, "newsecret1", "newsecret1")
	a.api.Handle(http.MethodPost, services.PathSendVerificationCode, fakeapi.OK(nil))
	a.api.Handle(http.MethodPost, services.PathVerifyCode, fakeapi.OK(nil))
	a.api.Handle(http.MethodPost, services.PathChangePassword, fakeapi.OK(nil))
	ctx := context.Background()

	require.NoError(t, a.Forgot(ctx))
	assert.Equal(t, services.PasswordResetPendingVerification, a.authService.State())

	a.feed("111111\n")
	require.NoError(t, a.Verify(ctx))
	assert.Contains(t, a.buf.String(), "Password changed")
	assert.Equal(t, services.Anonymous, a.authService.State())

	var body models.ChangePasswordRequest
	require.NoError(t, a.api.Last(http.MethodPost, services.PathChangePassword).Decode(&body))
	assert.Equal(t, "newsecret1", body.NewPassword)
}

func TestResend_NothingPending(t *testing.T) {
	a := newTestApp(t, "")
	require.ErrorIs(t, a.Resend(context.Background()), common.ErrInvalidState)
}

func TestLogout(t *testing.T) {
	a := newTestApp(t, "a@b.com\n")
	stubPasswords(t, "secret123")
	a.api.Handle(http.MethodPost, services.PathSignin, signinReply("Amina"))
	ctx := context.Background()
	require.NoError(t, a.Login(ctx))

	a.api.Close()
	require.NoError(t, a.Logout(ctx))
	assert.Contains(t, a.buf.String(), "Logged out.")

	cred, err := a.store.Credential(ctx)
	require.NoError(t, err)
	assert.False(t, cred.HasSession())
}

func TestMe_PrintsProfile(t *testing.T) {
	a := newTestApp(t, "a@b.com\n")
	stubPasswords(t, "secret123")
	a.api.Handle(http.MethodPost, services.PathSignin, signinReply("Amina"))
	a.api.Handle(http.MethodGet, services.PathMe, fakeapi.OK(map[string]any{
		"id": "u1", "email": "a@b.com", "name": "Amina", "farm_size": 2.5, "crop_types": []string{"maize", "beans"},
	}))
	ctx := context.Background()
	require.NoError(t, a.Login(ctx))

	a.buf.Reset()
	require.NoError(t, a.Me(ctx))
	out := a.buf.String()
	assert.Contains(t, out, "Farm size: 2.5 acres")
	assert.Contains(t, out, "Crops: maize, beans")
	assert.Contains(t, out, "Email not verified")
}

func TestMe_ExpiredSession(t *testing.T) {
	a := newTestApp(t, "")
	ctx := context.Background()
	require.NoError(t, a.store.SaveSession(ctx, "stale"))
	require.NoError(t, a.Restore(ctx))
	a.api.Handle(http.MethodGet, services.PathMe, fakeapi.Fail(http.StatusUnauthorized, "Session expired"))

	err := a.Me(ctx)
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Contains(t, a.buf.String(), "Please log in again")
}
