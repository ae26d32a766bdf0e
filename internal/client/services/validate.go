package services

import (
	"regexp"
	"strings"

	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/common"
)

// MinPasswordLength applies to sign-up and password changes.
const MinPasswordLength = 8

// CodeLength is the length of an emailed verification code.
const CodeLength = 6

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return common.NewValidationError("email", "is required")
	}
	if !emailRe.MatchString(email) {
		return common.NewValidationError("email", "invalid email format")
	}
	return nil
}

func validateNewPassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return common.NewValidationError("password", "must be at least 8 characters")
	}
	if password != confirm {
		return common.NewValidationError("confirmPassword", "passwords do not match")
	}
	return nil
}

func validateCode(code string) error {
	if len(code) != CodeLength {
		return common.NewValidationError("code", "must be 6 digits")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return common.NewValidationError("code", "must be 6 digits")
		}
	}
	return nil
}

func validateFlow(flow models.VerificationFlow, allowed ...models.VerificationFlow) error {
	for _, f := range allowed {
		if flow == f {
			return nil
		}
	}
	return common.NewValidationError("type", "unsupported verification flow "+string(flow))
}
