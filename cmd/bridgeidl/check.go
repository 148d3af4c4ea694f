package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"bridgeidl/internal/diag"
	"bridgeidl/internal/diagfmt"
	"bridgeidl/internal/driver"
	"bridgeidl/internal/failure"
	"bridgeidl/internal/ir"
	"bridgeidl/internal/pipeline"
	"bridgeidl/internal/source"
	"bridgeidl/internal/target"
)

type checkOptions struct {
	format   string
	emitIR   string
	target   string
	progress uiMode
}

func (a *app) checkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] file.idl...",
		Short: "Parse, resolve and validate IDL files",
		Long: `Check compiles the given IDL files, and every file they import, into one program.
Diagnostics are printed to stderr (json goes to stdout). With --emit-ir the accepted
program is exported for one generator target as JSON or msgpack (by file extension).`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runCheck,
	}
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|short|json)")
	cmd.Flags().String("emit-ir", "", "write the exported IR to this file (.json, .msgpack, or - for stdout)")
	cmd.Flags().String("target", "", "generator target of the exported IR (default: first configured)")
	cmd.Flags().String("progress", "off", "show interactive progress (auto|on|off)")
	return cmd
}

func readCheckOptions(cmd *cobra.Command) (checkOptions, error) {
	var opts checkOptions
	var err error
	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch opts.format {
	case "pretty", "short", "json":
	default:
		return opts, fmt.Errorf("unknown format %q (expected pretty|short|json)", opts.format)
	}
	if opts.emitIR, err = cmd.Flags().GetString("emit-ir"); err != nil {
		return opts, fmt.Errorf("failed to get emit-ir flag: %w", err)
	}
	if opts.target, err = cmd.Flags().GetString("target"); err != nil {
		return opts, fmt.Errorf("failed to get target flag: %w", err)
	}
	progress, err := cmd.Flags().GetString("progress")
	if err != nil {
		return opts, fmt.Errorf("failed to get progress flag: %w", err)
	}
	if opts.progress, err = readUIMode(progress); err != nil {
		return opts, err
	}
	return opts, nil
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	opts, err := readCheckOptions(cmd)
	if err != nil {
		return err
	}
	configPath, overrides, err := configFlags(cmd)
	if err != nil {
		return err
	}
	defer a.printTimings()

	ctx := cmd.Context()
	var h *driver.Handle
	compile := func(sink pipeline.Sink) error {
		var err error
		h, err = compileFiles(ctx, configPath, overrides, args, driver.Options{Timer: a.timer, Progress: sink})
		return err
	}
	if shouldUseTUI(opts.progress, a.stdout) {
		err = runWithProgress(a.stdout, "check "+strings.Join(args, " "), compile)
	} else {
		err = compile(nil)
	}

	switch {
	case err == nil:
		if rerr := a.renderDiagnostics(opts.format, h.Diagnostics(), h.Files()); rerr != nil {
			return rerr
		}
	case errors.As(err, new(*failure.ParsingError)), errors.As(err, new(*failure.RejectedError)):
		diags, files := failureDiagnostics(err)
		if rerr := a.renderDiagnostics(opts.format, diags, files); rerr != nil {
			return rerr
		}
		return err
	default:
		return err
	}

	if opts.emitIR == "" {
		return nil
	}
	t, err := exportTarget(h, opts.target)
	if err != nil {
		return err
	}
	doc, err := h.Export(t)
	if err != nil {
		return err
	}
	return a.writeIR(opts.emitIR, doc)
}

// compileFiles configures a compilation, parses every file and resolves the
// program.
func compileFiles(ctx context.Context, configPath string, overrides, files []string, opts driver.Options) (*driver.Handle, error) {
	h, err := driver.Configure(ctx, configPath, overrides, opts)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if _, err := h.Parse(ctx, file); err != nil {
			return h, err
		}
	}
	_, err = h.ResolvedIR()
	return h, err
}

// configFlags returns the configuration path and the overrides of the
// persistent flags, -o options first so that dedicated flags win.
func configFlags(cmd *cobra.Command) (string, []string, error) {
	flags := cmd.Root().PersistentFlags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	overrides, err := flags.GetStringArray("option")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get option flag: %w", err)
	}
	for _, name := range []string{"jobs", "max-diagnostics"} {
		if !flags.Changed(name) {
			continue
		}
		n, err := flags.GetInt(name)
		if err != nil {
			return "", nil, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		overrides = append(overrides, strings.ReplaceAll(name, "-", "_")+"="+strconv.Itoa(n))
	}
	return configPath, overrides, nil
}

func failureDiagnostics(err error) ([]diag.Diagnostic, *source.FileSet) {
	var parsing *failure.ParsingError
	if errors.As(err, &parsing) {
		return parsing.Diagnostics, parsing.Files
	}
	var rejected *failure.RejectedError
	if errors.As(err, &rejected) {
		return rejected.Diagnostics, rejected.Files
	}
	return nil, nil
}

func (a *app) renderDiagnostics(format string, diags []diag.Diagnostic, files *source.FileSet) error {
	bag := diag.NewBag(0)
	for _, d := range diags {
		bag.Add(d)
	}
	switch format {
	case "json":
		return diagfmt.JSON(a.stdout, bag, files, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
			IncludeFixes:     true,
		})
	case "short":
		return diagfmt.Short(a.stderr, bag, files, true)
	default:
		if bag.Len() == 0 {
			return nil
		}
		diagfmt.Pretty(a.stderr, bag, files, diagfmt.PrettyOpts{
			Color:     !color.NoColor,
			Context:   2,
			ShowNotes: true,
			ShowFixes: true,
		})
		return nil
	}
}

// exportTarget picks the target named by the flag, or the first configured
// one.
func exportTarget(h *driver.Handle, name string) (target.Target, error) {
	if name != "" {
		t, ok := target.Lookup(name)
		if !ok {
			return 0, fmt.Errorf("unknown target %q", name)
		}
		return t, nil
	}
	configured := h.Config().Targets().Slice()
	if len(configured) == 0 {
		return 0, errors.New("no generator target configured; pass --target")
	}
	return configured[0], nil
}

func (a *app) writeIR(path string, doc ir.Document) (err error) {
	if path == "-" {
		return encodeJSON(a.stdout, doc)
	}
	f, err := os.Create(path)
	if err != nil {
		return failure.Application("emit ir", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = failure.Application("emit ir", closeErr)
		}
	}()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		enc := msgpack.NewEncoder(f)
		enc.SetCustomStructTag("json")
		err = enc.Encode(doc)
	default:
		err = encodeJSON(f, doc)
	}
	if err != nil {
		return failure.Application("emit ir", err)
	}
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printTimings() {
	if a.timer == nil {
		return
	}
	fmt.Fprint(a.stderr, a.timer.Summary())
}
