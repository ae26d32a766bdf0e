package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/agrisonic/agrisonic/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Login(ctx context.Context) error
	Forgot(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Weather(ctx context.Context, args []string) error
	Forecast(ctx context.Context, args []string) error
	Predict(ctx context.Context) error
	Market(ctx context.Context, args []string) error
	Lang(ctx context.Context, args []string) error
	Status(ctx context.Context) error
}

// runREPL reads commands from reader, one per line, and dispatches them to
// a. The first token is the command, the rest are its arguments. The loop
// exits on EOF, on "exit" / "quit", or when ctx is done.
//
// Not logged in:
//
//	signup, verify, resend, login, forgot, weather, forecast, predict,
//	market, lang, status, exit
//
// Logged in, additionally:
//
//	me, logout
//
// A failing command prints the user-facing message of its error and the
// loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("agrisonic %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, weather, forecast, predict, market, lang, forgot, status, logout, exit")
			} else {
				printlnFn("Available commands: signup, verify, resend, login, forgot, weather, forecast, predict, market, lang, status, exit")
			}

		case "signup":
			cmdErr = a.Signup(ctx)
		case "verify":
			cmdErr = a.Verify(ctx)
		case "resend":
			cmdErr = a.Resend(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "forgot":
			cmdErr = a.Forgot(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "me":
			cmdErr = a.Me(ctx)
		case "weather":
			cmdErr = a.Weather(ctx, args)
		case "forecast":
			cmdErr = a.Forecast(ctx, args)
		case "predict":
			cmdErr = a.Predict(ctx)
		case "market":
			cmdErr = a.Market(ctx, args)
		case "lang":
			cmdErr = a.Lang(ctx, args)
		case "status":
			cmdErr = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", common.Message(cmdErr))
		}
	}
}
