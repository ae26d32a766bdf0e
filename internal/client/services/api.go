package services

import (
	"context"
	"fmt"

	"github.com/agrisonic/agrisonic/internal/client/client"
	"github.com/agrisonic/agrisonic/internal/common"
)

// Backend paths.
const (
	PathSignin               = "api/auth/signin"
	PathSignup               = "api/auth/signup"
	PathVerifyCode           = "api/auth/verify-code"
	PathSignout              = "api/auth/signout"
	PathMe                   = "api/auth/me"
	PathForgotPassword       = "api/auth/forgot-password"
	PathResetPassword        = "api/auth/reset-password"
	PathChangePassword       = "api/auth/change-password"
	PathSendVerificationCode = "api/auth/send-verification-code"
	PathVerifySignup         = "api/auth/verify-signup"
	PathWeather              = "api/weather"
	PathCropPrediction       = "api/crop-prediction"
	PathMarketTrends         = "api/market-trends"
)

// Caller sends one API request. *client.Gateway implements it.
type Caller interface {
	Call(ctx context.Context, req client.Request) (*client.Response, error)
}

// fallback produces the message of a failed call whose envelope had none.
type fallback func(status int) string

func message(msg string) fallback {
	return func(int) string { return msg }
}

func failedWithStatus(prefix string) fallback {
	return func(status int) string { return fmt.Sprintf("%s - Status: %d", prefix, status) }
}

// call performs req and turns an unsuccessful envelope into a
// *common.ServerError. fb may be nil.
func call(ctx context.Context, api Caller, req client.Request, fb fallback) (*client.Response, error) {
	resp, err := api.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		if resp.Error == "" && fb != nil {
			return resp, &common.ServerError{Status: resp.Status, Message: fb(resp.Status)}
		}
		return resp, resp.Err()
	}
	return resp, nil
}
