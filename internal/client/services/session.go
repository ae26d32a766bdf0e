package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/agrisonic/agrisonic/internal/client/client"
	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/common"
	"github.com/agrisonic/agrisonic/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// State of the authentication flow.
type State int

const (
	Anonymous State = iota
	SignupPendingVerification
	Authenticated
	PasswordResetPendingVerification
	PasswordResetCodeConfirmed
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case SignupPendingVerification:
		return "signup_pending_verification"
	case Authenticated:
		return "authenticated"
	case PasswordResetPendingVerification:
		return "password_reset_pending_verification"
	case PasswordResetCodeConfirmed:
		return "password_reset_code_confirmed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SessionStore is the persistence the session manager writes through.
// *store.Store implements it.
type SessionStore interface {
	Credential(ctx context.Context) (models.Credential, error)
	EstablishSession(ctx context.Context, token string, u *models.User) error
	SaveSession(ctx context.Context, token string) error
	ReplaceProfile(ctx context.Context, u *models.User) error
	Wipe(ctx context.Context) error
}

// AuthService is the session lifecycle as seen by the UI.
type AuthService interface {
	State() State
	Pending() (models.PendingVerification, bool)

	RestoreSession(ctx context.Context) (bool, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, in SignupInput) (*models.SignupData, error)
	VerifySignup(ctx context.Context, email, code string) error
	SendVerificationCode(ctx context.Context, email string, flow models.VerificationFlow) error
	ResendCode(ctx context.Context) error
	StartPasswordReset(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, code string) error
	ChangePassword(ctx context.Context, email, newPassword, confirmPassword string) error
	VerifyCode(ctx context.Context, email, code string, flow models.VerificationFlow) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, confirmPassword string) error
	RefreshProfile(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
}

type SignupInput struct {
	Email             string
	Name              string
	Password          string
	ConfirmPassword   string
	ProfilePictureURL string
}

// SessionManager drives the authentication state machine. It is the only
// writer of the session fields of the store.
//
// Operations are serialized. A state transition is applied only after the
// backend answered and the local write, if any, committed; a failed
// operation leaves the state as it was. Local writes outlive the caller's
// context so a sign-in that completes after the caller gave up is still
// recorded.
type SessionManager struct {
	api   Caller
	store SessionStore
	log   logging.Logger

	op sync.Mutex // held for the whole of an operation

	mu      sync.RWMutex
	state   State
	pending *models.PendingVerification
}

var _ AuthService = (*SessionManager)(nil)

func NewSessionManager(api Caller, store SessionStore, log logging.Logger) *SessionManager {
	if log == nil {
		log = logging.NewNop()
	}
	return &SessionManager{api: api, store: store, log: log.With("component", "session")}
}

func (m *SessionManager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Pending returns the verification in progress, if any.
func (m *SessionManager) Pending() (models.PendingVerification, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pending == nil {
		return models.PendingVerification{}, false
	}
	return *m.pending, true
}

func (m *SessionManager) transition(ctx context.Context, to State, pending *models.PendingVerification) {
	m.mu.Lock()
	from := m.state
	m.state = to
	m.pending = pending
	m.mu.Unlock()

	if from != to {
		m.log.Info(ctx, "session state changed", "from", from.String(), "to", to.String())
	}
}

// require fails with a *common.StateError unless the current state is one
// of allowed.
func (m *SessionManager) require(op string, allowed ...State) error {
	cur := m.State()
	for _, s := range allowed {
		if cur == s {
			return nil
		}
	}
	return &common.StateError{Op: op, State: cur.String()}
}

// RestoreSession trusts the stored credential: when it holds a session the
// manager becomes Authenticated without contacting the backend. An expired
// token surfaces later as common.ErrUnauthorized from a call.
func (m *SessionManager) RestoreSession(ctx context.Context) (bool, error) {
	m.op.Lock()
	defer m.op.Unlock()

	if err := m.require("restore session", Anonymous); err != nil {
		return false, err
	}

	cred, err := m.store.Credential(ctx)
	if err != nil {
		return false, err
	}
	if !cred.HasSession() {
		return false, nil
	}
	m.transition(ctx, Authenticated, nil)
	return true, nil
}

// Login signs in and records the session and profile together.
func (m *SessionManager) Login(ctx context.Context, email, password string) (*models.User, error) {
	m.op.Lock()
	defer m.op.Unlock()

	if err := m.require("login", Anonymous, SignupPendingVerification, PasswordResetPendingVerification, PasswordResetCodeConfirmed); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, common.NewValidationError("password", "is required")
	}

	resp, err := call(ctx, m.api, client.Request{
		Method: http.MethodPost,
		Path:   PathSignin,
		Body:   models.LoginRequest{Email: email, Password: password},
	}, failedWithStatus("Login failed"))
	if err != nil {
		return nil, err
	}

	var data models.LoginData
	if err := client.Decode(resp, &data); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if data.User == nil || data.User.ID == "" {
		return nil, fmt.Errorf("login: %w: response has no user", common.ErrMalformedResponse)
	}
	token := data.Token
	if token == "" {
		token = resp.IssuedToken
	}
	if token == "" {
		return nil, fmt.Errorf("login: %w: response has no session token", common.ErrMalformedResponse)
	}

	if err := m.store.EstablishSession(context.WithoutCancel(ctx), token, data.User); err != nil {
		return nil, err
	}

	m.transition(ctx, Authenticated, nil)
	m.log.Info(ctx, "signed in", "user_id", data.User.ID)
	return data.User, nil
}

// Signup registers an account. The account must be verified and then
// signed in; no session is created here.
func (m *SessionManager) Signup(ctx context.Context, in SignupInput) (*models.SignupData, error) {
	m.op.Lock()
	defer m.op.Unlock()

	if err := m.require("signup", Anonymous, SignupPendingVerification); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validateNewPassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}

	req := models.SignupRequest{
		Email:           in.Email,
		Name:            in.Name,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}
	if in.ProfilePictureURL != "" {
		req.ProfilePictureURL = &in.ProfilePictureURL
	}

	resp, err := call(ctx, m.api, client.Request{Method: http.MethodPost, Path: PathSignup, Body: req}, failedWithStatus("Signup failed"))
	if err != nil {
		return nil, err
	}

	var data models.SignupData
	if resp.HasData() {
		if err := client.Decode(resp, &data); err != nil {
			return nil, fmt.Errorf("signup: %w", err)
		}
	}

	m.transition(ctx, SignupPendingVerification, &models.PendingVerification{Email: in.Email, Flow: models.FlowSignup})
	return &data, nil
}

// VerifySignup confirms the emailed code of a new account. It is also
// accepted from Anonymous so a verification can be finished after a
// restart. Success leads back to Anonymous; the user signs in next.
func (m *SessionManager) VerifySignup(ctx context.Context, email, code string) error {
	m.op.Lock()
	defer m.op.Unlock()

	if err := m.require("verify signup", Anonymous, SignupPendingVerification); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validateCode(code); err != nil {
		return err
	}

	_, err := call(ctx, m.api, client.Request{
		Method: http.MethodPost,
		Path:   PathVerifySignup,
		Body:   models.VerifySignupRequest{Email: email, Code: code},
	}, message("Invalid verification code"))
	if err != nil {
		return err
	}

	m.transition(ctx, Anonymous, nil)
	return nil
}

// SendVerificationCode asks the backend to email a code. The state does not
// change and repeated calls are allowed.
func (m *SessionManager) SendVerificationCode(ctx context.Context, email string, flow models.VerificationFlow) error {
	m.op.Lock()
	defer m.op.Unlock()
	return m.sendCode(ctx, email, flow)
}

// ResendCode repeats SendVerificationCode for the verification in progress.
func (m *SessionManager) ResendCode(ctx context.Context) error {
	m.op.Lock()
	defer m.op.Unlock()

	p, ok := m.Pending()
	if !ok {
		return &common.StateError{Op: "resend code", State: m.State().String()}
	}
	return m.sendCode(ctx, p.Email, p.Flow)
}

func (m *SessionManager) sendCode(ctx context.Context, email string, flow models.VerificationFlow) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validateFlow(flow, models.FlowSignup, models.FlowPasswordChange); err != nil {
		return err
	}

	_, err := call(ctx, m.api, client.Request{
		Method: http.MethodPost,
		Path:   PathSendVerificationCode,
		Body:   models.SendVerificationCodeRequest{Email: email, Type: flow},
	}, message("Failed to send verification code"))
	return err
}

// StartPasswordReset emails a password_change code and waits for it.
func (m *SessionManager) StartPasswordReset(ctx context.Context, email string) error {
	m.op.Lock()
	defer m.op.Unlock()

	if err := m.require("start password reset", Anonymous, Authenticated); err != nil {
		return err
	}
	if err := m.sendCode(ctx, email, models.FlowPasswordChange); err != nil {
		return err
	}

	m.transition(ctx, PasswordResetPendingVerification, &models.PendingVerification{Email: email, Flow: models.FlowPasswordChange})
	return nil
}

// VerifyResetCode confirms the password_change code. It does not sign in.
func (m *SessionManager) VerifyResetCode(ctx context.Context, email, code string) error {
	m.op.Lock()
	defer m.op.Unlock()

	if err := m.require("verify reset code", PasswordResetPendingVerification); err != nil {
		return err
	}
	p, _ := m.Pending()
	if !strings.EqualFold(email, p.Email) {
		return common.NewValidationError("email", "does not match the email the code was sent to")
	}
	if err := validateCode(code); err != nil {
		return err
	}

	_, err := call(ctx, m.api, client.Request{
		Method: http.MethodPost,
		Path:   PathVerifyCode,
		Body:   models.VerifyCodeRequest{Email: p.Email, Code: code, Type: models.FlowPasswordChange},
	}, message("Invalid verification code"))
	if err != nil {
		return err
	}

	p.Code = code
	m.transition(ctx, PasswordResetCodeConfirmed, &p)
	return nil
}

// ChangePassword sets the new password after a confirmed reset code. Any
// stored session is removed; the user must sign in again.
func (m *SessionManager) ChangePassword(ctx context.Context, email, newPassword, confirmPassword string) error {
	m.op.Lock()
	defer m.op.Unlock()

	if err := m.require("change password", PasswordResetCodeConfirmed); err != nil {
		return err
	}
	p, _ := m.Pending()
	if !strings.EqualFold(email, p.Email) {
		return common.NewValidationError("email", "does not match the verified email")
	}
	if err := validateNewPassword(newPassword, confirmPassword); err != nil {
		return err
	}

	_, err := call(ctx, m.api, client.Request{
		Method: http.MethodPost,
		Path:   PathChangePassword,
		Body: models.ChangePasswordRequest{
			Email:           p.Email,
			NewPassword:     newPassword,
			ConfirmPassword: confirmPassword,
		},
	}, message("Failed to change password"))
	if err != nil {
		return err
	}

	werr := m.store.Wipe(context.WithoutCancel(ctx))
	m.transition(ctx, Anonymous, nil)
	return werr
}

// VerifyCode checks a code against the generic verify-code endpoint without
// touching the state. It returns the server's message.
func (m *SessionManager) VerifyCode(ctx context.Context, email, code string, flow models.VerificationFlow) (string, error) {
	m.op.Lock()
	defer m.op.Unlock()

	if err := validateEmail(email); err != nil {
		return "", err
	}
	if err := validateCode(code); err != nil {
		return "", err
	}
	if err := validateFlow(flow, models.FlowSignup, models.FlowSignin, models.FlowPasswordChange); err != nil {
		return "", err
	}

	resp, err := call(ctx, m.api, client.Request{
		Method: http.MethodPost,
		Path:   PathVerifyCode,
		Body:   models.VerifyCodeRequest{Email: email, Code: code, Type: flow},
	}, message("Invalid verification code"))
	if err != nil {
		return "", err
	}

	var data models.MessageData
	if resp.HasData() {
		if err := client.Decode(resp, &data); err != nil {
			return "", fmt.Errorf("verify code: %w", err)
		}
	}
	return data.Message, nil
}

// ForgotPassword requests a reset link by email.
func (m *SessionManager) ForgotPassword(ctx context.Context, email string) error {
	m.op.Lock()
	defer m.op.Unlock()

	if err := validateEmail(email); err != nil {
		return err
	}
	_, err := call(ctx, m.api, client.Request{
		Method: http.MethodPost,
		Path:   PathForgotPassword,
		Body:   models.ForgotPasswordRequest{Email: email},
	}, nil)
	return err
}

// ResetPassword completes the link flow of ForgotPassword.
func (m *SessionManager) ResetPassword(ctx context.Context, token, password, confirmPassword string) error {
	m.op.Lock()
	defer m.op.Unlock()

	if strings.TrimSpace(token) == "" {
		return common.NewValidationError("token", "is required")
	}
	if err := validateNewPassword(password, confirmPassword); err != nil {
		return err
	}
	_, err := call(ctx, m.api, client.Request{
		Method: http.MethodPost,
		Path:   PathResetPassword,
		Body:   models.ResetPasswordRequest{Token: token, Password: password, ConfirmPassword: confirmPassword},
	}, nil)
	return err
}

// RefreshProfile fetches the signed-in user and replaces the cached profile.
// A profile for a different user is rejected as malformed. A rotated session
// cookie is stored.
func (m *SessionManager) RefreshProfile(ctx context.Context) (*models.User, error) {
	m.op.Lock()
	defer m.op.Unlock()

	if err := m.require("refresh profile", Authenticated); err != nil {
		return nil, err
	}

	resp, err := call(ctx, m.api, client.Request{Method: http.MethodGet, Path: PathMe}, nil)
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := client.Decode(resp, &u); err != nil {
		return nil, fmt.Errorf("refresh profile: %w", err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("refresh profile: %w: user has no id", common.ErrMalformedResponse)
	}

	persistCtx := context.WithoutCancel(ctx)
	if err := m.store.ReplaceProfile(persistCtx, &u); err != nil {
		return nil, err
	}
	if resp.IssuedToken != "" {
		if err := m.store.SaveSession(persistCtx, resp.IssuedToken); err != nil {
			return nil, err
		}
	}
	return &u, nil
}

// Logout notifies the backend when a session is stored, then wipes local
// state and returns to Anonymous whatever the backend said. A storage
// failure is returned but does not prevent the transition.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.op.Lock()
	defer m.op.Unlock()

	cred, err := m.store.Credential(ctx)
	if err != nil || cred.SessionToken != "" || m.State() == Authenticated {
		if _, err := call(ctx, m.api, client.Request{Method: http.MethodPost, Path: PathSignout}, nil); err != nil {
			m.log.Warn(ctx, "signout not acknowledged", "error", err)
		}
	}

	werr := m.store.Wipe(context.WithoutCancel(ctx))
	if werr != nil {
		m.log.Error(ctx, "local session not cleared", "error", werr)
	}
	m.transition(ctx, Anonymous, nil)
	return werr
}

// TokenExpiry reads the exp claim of a JWT-shaped session token without
// verifying it. It is for display only; ok is false for opaque tokens.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// IsUnauthorized reports whether err means the stored session was rejected.
func IsUnauthorized(err error) bool {
	return errors.Is(err, common.ErrUnauthorized)
}
