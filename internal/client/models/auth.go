package models

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email             string  `json:"email"`
	Name              string  `json:"name"`
	Password          string  `json:"password"`
	ConfirmPassword   string  `json:"confirmPassword"`
	ProfilePictureURL *string `json:"profilePictureUrl,omitempty"`
}

type VerifyCodeRequest struct {
	Email string           `json:"email"`
	Code  string           `json:"code"`
	Type  VerificationFlow `json:"type"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type ChangePasswordRequest struct {
	Email           string `json:"email"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type SendVerificationCodeRequest struct {
	Email string           `json:"email"`
	Type  VerificationFlow `json:"type"`
}

type VerifySignupRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// LoginData is the payload of a successful sign-in. Token may be empty when
// the server only delivers it as a cookie.
type LoginData struct {
	User     *User  `json:"user"`
	Token    string `json:"token,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// SignupData is the payload of a successful sign-up.
type SignupData struct {
	Message              string `json:"message"`
	User                 *User  `json:"user"`
	RequiresVerification bool   `json:"requiresVerification"`
}

// MessageData is the payload of the verify-code style endpoints.
type MessageData struct {
	Message string `json:"message"`
}
