package models

// Credential is the point-in-time view of the session-related fields held by
// the credential store. Empty strings mean "absent".
type Credential struct {
	SessionToken string
	IsLoggedIn   bool
	FCMToken     string
	Language     string
}

// HasSession reports whether the credential authorizes requests: the
// logged-in flag is set and a token is present.
func (c Credential) HasSession() bool {
	return c.IsLoggedIn && c.SessionToken != ""
}

// Identity is the signed-in user as recorded next to the session. It stays
// readable when the profile row has not been cached.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

func (i Identity) IsZero() bool {
	return i.UserID == "" && i.Email == "" && i.Name == ""
}

// VerificationFlow is the purpose of an emailed verification code.
type VerificationFlow string

const (
	FlowSignup         VerificationFlow = "signup"
	FlowPasswordChange VerificationFlow = "password_change"
	FlowSignin         VerificationFlow = "signin"
)

// PendingVerification is the in-memory context of a verification screen.
// It is never persisted.
type PendingVerification struct {
	Email string
	Flow  VerificationFlow
	Code  string
}
