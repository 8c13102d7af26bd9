package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/steeraudit/bandsteer/internal/app"
	"github.com/steeraudit/bandsteer/internal/config"
	"github.com/steeraudit/bandsteer/internal/telemetry"
)

// version is overridden at build time via -ldflags
// "-X github.com/steeraudit/bandsteer/cmd/bandsteer/commands.version=...";
// it is reported on every trace span's service.version attribute.
var version = "dev"

var (
	// application is built once in PersistentPreRunE and shared by every
	// subcommand's RunE.
	application *app.Application

	// tracerShutdown is set in PersistentPreRunE when tracing is enabled,
	// and drained by Execute on the way out.
	tracerShutdown func(context.Context) error

	dataDirFlag        string
	dissectorFlag      string
	maxConcurrencyFlag int
	debugFlag          bool
	traceFlag          bool
)

// rootCmd is the top-level cobra command for bandsteer.
var rootCmd = &cobra.Command{
	Use:   "bandsteer",
	Short: "Analyze 802.11 band-steering captures for KVR compliance",
	Long:  "bandsteer runs captured WiFi traffic through an external dissector, evaluates band-steering behavior against four compliance checks, and maintains a registry of past analyses.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		applyFlagOverrides(cmd, cfg)

		if cfg.TraceEnabled {
			shutdown, err := telemetry.InitTracer("bandsteer", version)
			if err != nil {
				return fmt.Errorf("initializing tracer: %w", err)
			}
			tracerShutdown = shutdown
		}

		built, err := app.New(cfg)
		if err != nil {
			return fmt.Errorf("initializing application: %w", err)
		}
		application = built
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// applyFlagOverrides lets an explicitly-set persistent flag win over the
// environment-derived default, matching the teacher's flags-over-env
// config precedence.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = dataDirFlag
	}
	if flags.Changed("dissector") {
		cfg.DissectorPath = dissectorFlag
	}
	if flags.Changed("max-concurrency") {
		cfg.MaxConcurrency = maxConcurrencyFlag
	}
	if flags.Changed("debug") {
		cfg.Debug = debugFlag
	}
	if flags.Changed("trace") {
		cfg.TraceEnabled = traceFlag
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "override the analysis data directory")
	rootCmd.PersistentFlags().StringVar(&dissectorFlag, "dissector", "", "override the dissector binary path")
	rootCmd.PersistentFlags().IntVar(&maxConcurrencyFlag, "max-concurrency", 0, "override the maximum concurrent analyses")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "emit OpenTelemetry trace spans to stdout")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(deleteCmd())
}

// Execute runs the root command, printing the error kind and a one-line
// remediation before exiting with the error's mapped exit code.
func Execute() {
	err := rootCmd.Execute()
	if application != nil {
		if closeErr := application.Close(); closeErr != nil {
			slog.Warn("closing application", "error", closeErr)
		}
	}
	if tracerShutdown != nil {
		if shutErr := tracerShutdown(context.Background()); shutErr != nil {
			slog.Warn("shutting down tracer", "error", shutErr)
		}
	}
	if err == nil {
		return
	}

	code := exitCodeFor(err)
	fmt.Fprintln(os.Stderr, "Error:", err)
	if remediation := remediationFor(code); remediation != "" {
		fmt.Fprintln(os.Stderr, remediation)
	}
	slog.Error("command failed", "error", err, "exit_code", code)
	os.Exit(code)
}

func remediationFor(code int) string {
	switch code {
	case exitInvalidInput:
		return "check the capture path and any --ssid/--client-mac/--brand/--model hints."
	case exitDissectorError:
		return "install the dissector binary (tshark) and ensure it's on PATH."
	case exitIOFailure:
		return "check that the data directory and index database are writable."
	default:
		return ""
	}
}
