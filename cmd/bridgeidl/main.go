// Command bridgeidl checks IDL files and exports the resolved IR for code
// generators.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bridgeidl/internal/failure"
	"bridgeidl/internal/observ"
	"bridgeidl/internal/prof"
	"bridgeidl/internal/trace"
	"bridgeidl/internal/version"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// app is the state of one CLI invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	tracer    trace.Tracer
	heartbeat *trace.Heartbeat
	profiles  *prof.Session
	timer     *observ.Timer
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, tracer: trace.Nop}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.shutdown(err)
	if err == nil {
		return failure.ExitOK
	}
	if !renderedAsDiagnostics(err) {
		fmt.Fprintf(stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
	}
	return failure.ExitCode(err)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "bridgeidl",
		Short:             "IDL compiler front-end for cross-language bindings",
		Long:              `bridgeidl parses interface definitions, resolves and validates them, and exports the IR consumed by code generators`,
		Version:           version.Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "configuration file (.yaml, .json or .toml)")
	flags.StringArrayP("option", "o", nil, "override a configuration value (key.path=value)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics to report (0 keeps the configured value)")
	flags.Int("jobs", 0, "parallel workers (0 keeps the configured value)")
	flags.Bool("timings", false, "print pass timings to stderr")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "ring", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace encoding (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")

	root.AddCommand(a.checkCommand())
	root.AddCommand(a.tokensCommand())
	root.AddCommand(a.versionCommand())
	return root
}

// setup applies the persistent flags before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()

	colorMode, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorMode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(a.stderr)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorMode)
	}

	timings, err := flags.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if timings {
		a.timer = observ.NewTimer()
	}

	if err := a.setupProfiling(cmd); err != nil {
		return err
	}
	return a.setupTracing(cmd)
}

// shutdown stops tracing and profiling. An application failure dumps the
// trace ring to stderr.
func (a *app) shutdown(err error) {
	var appErr *failure.ApplicationError
	if errors.As(err, &appErr) {
		if ring := trace.RingOf(a.tracer); ring != nil {
			fmt.Fprintln(a.stderr, "trace: last events before the failure:")
			if dumpErr := ring.Dump(a.stderr, trace.FormatText); dumpErr != nil {
				fmt.Fprintf(a.stderr, "trace: dump error: %v\n", dumpErr)
			}
		}
	}
	a.heartbeat.Stop()
	if err := a.tracer.Flush(); err != nil {
		fmt.Fprintf(a.stderr, "trace: flush error: %v\n", err)
	}
	if err := a.tracer.Close(); err != nil {
		fmt.Fprintf(a.stderr, "trace: close error: %v\n", err)
	}
	if err := a.profiles.Stop(); err != nil {
		fmt.Fprintf(a.stderr, "profile: %v\n", err)
	}
}

// renderedAsDiagnostics reports whether err was already printed as a list
// of diagnostics by the command.
func renderedAsDiagnostics(err error) bool {
	var parsing *failure.ParsingError
	var rejected *failure.RejectedError
	return errors.As(err, &parsing) || errors.As(err, &rejected)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
