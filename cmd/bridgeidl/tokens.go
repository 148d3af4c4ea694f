package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bridgeidl/internal/diagfmt"
	"bridgeidl/internal/driver"
	"bridgeidl/internal/failure"
)

func (a *app) tokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [flags] file.idl",
		Short: "Print the tokens of an IDL file",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runTokens,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func (a *app) runTokens(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	result, err := driver.Tokenize(args[0], maxDiagnostics)
	if err != nil {
		return err
	}

	switch format {
	case "pretty":
		err = diagfmt.FormatTokensPretty(a.stdout, result.Tokens, result.FileSet)
	case "json":
		err = diagfmt.FormatTokensJSON(a.stdout, result.Tokens)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}

	if result.Bag.Len() > 0 {
		diagfmt.Pretty(a.stderr, result.Bag, result.FileSet, diagfmt.PrettyOpts{
			Color:     !color.NoColor,
			Context:   2,
			ShowNotes: true,
		})
	}
	if result.Bag.HasErrors() {
		return &failure.ParsingError{Diagnostics: result.Bag.Items(), Files: result.FileSet}
	}
	return nil
}
