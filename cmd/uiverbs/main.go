package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ui-verbs/internal/bootstrap"
	"ui-verbs/internal/scenario"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	backend  string
	browser  string
	headed   bool
	logLevel string
	quiet    bool
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "uiverbs",
		Short: "Run resilient browser actions, waits and checks",
		Long: `uiverbs drives a browser through Playwright, WebDriver or the DevTools
protocol. Steps locate elements, act on them with retries and verify what the
page shows.

Example:
  uiverbs run login.yaml --backend selenium`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			overrideEnv(cmd, "backend", "DRIVER_BACKEND", backend)
			overrideEnv(cmd, "browser", "DRIVER_BROWSER", browser)
			overrideEnv(cmd, "log-level", "APP_LOG_LEVEL", logLevel)

			if cmd.Flags().Changed("headed") {
				_ = os.Setenv("DRIVER_HEADLESS", fmt.Sprint(!headed))
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Driver backend: playwright, selenium, rod (default: from env or playwright)")
	rootCmd.PersistentFlags().StringVar(&browser, "browser", "", "Browser: chromium, chrome, firefox, webkit")
	rootCmd.PersistentFlags().BoolVar(&headed, "headed", false, "Show the browser window")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	runCmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario file and report every step",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print failed steps")

	rootCmd.AddCommand(
		runCmd,
		&cobra.Command{
			Use:   "validate <scenario.yaml>",
			Short: "Check a scenario file without opening a browser",
			Args:  cobra.ExactArgs(1),
			RunE:  validate,
		},
		&cobra.Command{
			Use:   "console",
			Short: "Type steps one per line against a live session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, stop := signalContext(cmd.Context())
				defer stop()

				return bootstrap.RunConsole(ctx)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	steps, err := scenario.ParseFile(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	report, err := bootstrap.RunScenario(ctx, steps)

	out := cmd.OutOrStdout()
	for _, res := range report.Results {
		if quiet && res.Passed() {
			continue
		}

		fmt.Fprintln(out, res)
	}

	if err != nil {
		return fmt.Errorf("scenario aborted: %w", err)
	}

	failures := len(report.Failures())
	fmt.Fprintf(out, "\n%d steps, %d passed, %d failed\n", len(report.Results), len(report.Results)-failures, failures)

	if failures > 0 {
		return fmt.Errorf("%d of %d steps failed", failures, len(report.Results))
	}

	return nil
}

func validate(cmd *cobra.Command, args []string) error {
	steps, err := scenario.ParseFile(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d steps OK\n", args[0], len(steps))

	return nil
}

func overrideEnv(cmd *cobra.Command, flag, env, value string) {
	if cmd.Flags().Changed(flag) {
		_ = os.Setenv(env, value)
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
