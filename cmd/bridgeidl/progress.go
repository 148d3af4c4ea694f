package main

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"bridgeidl/internal/pipeline"
	"bridgeidl/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "", "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --progress value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode, out io.Writer) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(out)
	}
}

// runWithProgress runs compile in the background and renders its events
// until it returns.
func runWithProgress(out io.Writer, title string, compile func(pipeline.Sink) error) error {
	events := make(chan pipeline.Event, 256)
	done := make(chan error, 1)
	go func() {
		err := compile(pipeline.ChannelSink{Ch: events})
		close(events)
		done <- err
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, events), tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	if uiErr != nil {
		for range events {
		}
	}
	err := <-done
	if err == nil && uiErr != nil {
		return fmt.Errorf("progress view: %w", uiErr)
	}
	return err
}
