package main

import (
	"context"
	"fmt"

	"github.com/agrisonic/agrisonic/internal/buildinfo"
	"github.com/agrisonic/agrisonic/internal/client/cli"
	"github.com/agrisonic/agrisonic/internal/client/config"
	"github.com/spf13/cobra"
)

// rootCmd runs the interactive client.
var rootCmd = &cobra.Command{
	Use:          "agrisonic",
	Short:        "Agrisonic farm assistant client",
	SilenceUsage: true,
	Long: `Interactive client for the Agrisonic service: account, weather,
crop suitability and market prices. Usage:

	agrisonic --addr https://api.example.org/
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		return app.Run(cmd.Context())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session and settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Restore(ctx); err != nil {
			return err
		}
		if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
			if err := app.Me(ctx); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "refresh failed:", err)
			}
		}
		if err := app.Status(ctx); err != nil {
			return err
		}
		if withMetrics, _ := cmd.Flags().GetBool("metrics"); withMetrics {
			return app.WriteMetrics(cmd.OutOrStdout())
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Restore(ctx); err != nil {
			return err
		}
		return app.Logout(ctx)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		buildinfo.PrintBuildData(cmd.OutOrStdout())
	},
}

func init() {
	// Declared for help and validation; the values are read by config.LoadConfigE
	// so that file, environment and flags share one precedence order.
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "path to a JSON config file")
	pf.StringP("addr", "a", "", "API base URL")
	pf.StringP("db", "d", "", "path to the local database")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-backend", "", "log backend (slog, zap)")
	pf.String("log-format", "", "log format (text, json)")
	pf.Duration("timeout", 0, "connect/read/write timeout")

	statusCmd.Flags().Bool("metrics", false, "also print gateway metrics")
	statusCmd.Flags().Bool("refresh", false, "fetch the profile from the server first")

	rootCmd.AddCommand(statusCmd, logoutCmd, versionCmd)
}

func newApp(ctx context.Context) (*cli.App, error) {
	cfg, err := config.LoadConfigE()
	if err != nil {
		return nil, err
	}
	return cli.NewApp(ctx, cfg)
}
