package cli

import (
	"context"
	"fmt"

	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/client/services"
	"github.com/agrisonic/agrisonic/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// readSecret reads a password and returns it as a string, wiping the
// terminal buffer.
func (a *App) readSecret(prompt string) (string, error) {
	pw, err := getPassword(a.out, prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Signup prompts for the account details and registers them. The account
// is then waiting for the emailed code, see Verify.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Enter password")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm password")
	if err != nil {
		return err
	}

	data, err := a.authService.Signup(ctx, services.SignupInput{
		Email:           email,
		Name:            name,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}

	if data.Message != "" {
		fmt.Fprintln(a.out, data.Message)
	}
	fmt.Fprintf(a.out, "A verification code was sent to %s. Type 'verify' to enter it.\n", email)
	return nil
}

// Verify asks for the emailed code of the verification in progress. After a
// password reset code is accepted it goes on to ask for the new password.
func (a *App) Verify(ctx context.Context) error {
	p, pending := a.authService.Pending()

	email := p.Email
	if !pending {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}
	code, err := getSimpleText(a.reader, "Enter the 6-digit code", a.out)
	if err != nil {
		return err
	}

	if pending && p.Flow == models.FlowPasswordChange {
		if err := a.authService.VerifyResetCode(ctx, email, code); err != nil {
			return err
		}
		return a.changePassword(ctx, email)
	}

	if err := a.authService.VerifySignup(ctx, email, code); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account verified. You can now log in.")
	return nil
}

func (a *App) changePassword(ctx context.Context, email string) error {
	password, err := a.readSecret("Enter new password")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm new password")
	if err != nil {
		return err
	}
	if err := a.authService.ChangePassword(ctx, email, password, confirm); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed. Please log in again.")
	return nil
}

// Resend repeats the code email of the verification in progress.
func (a *App) Resend(ctx context.Context) error {
	if err := a.authService.ResendCode(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Code sent.")
	return nil
}

// Login prompts the user for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Enter password")
	if err != nil {
		return err
	}

	u, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", u.Name)
	return nil
}

// Forgot starts a password reset: a code is emailed and Verify takes it
// from there.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.authService.StartPasswordReset(ctx, email); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "A reset code was sent to %s. Type 'verify' to enter it.\n", email)
	return nil
}

// Logout ends the session. Local state is cleared even when the backend
// cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// Me refreshes and prints the signed-in profile.
func (a *App) Me(ctx context.Context) error {
	u, err := a.authService.RefreshProfile(ctx)
	if err != nil {
		if services.IsUnauthorized(err) {
			fmt.Fprintln(a.out, "Your session has expired. Please log in again.")
		}
		return err
	}
	printProfile(a.out, u)
	return nil
}
