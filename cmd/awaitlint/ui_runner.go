package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"awaitlint/internal/driver"
	"awaitlint/internal/source"
	"awaitlint/internal/ui"
)

// uiMode is the value of --ui.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// shouldUseTUI: auto shows progress only for several files on a terminal.
func shouldUseTUI(mode uiMode, w io.Writer, files int) bool {
	if mode == uiModeAuto {
		return files > 1 && isTerminal(w)
	}
	return mode == uiModeOn
}

// runLintWithUI draws progress on w while the driver lints in the
// background. The lint result wins over a UI failure.
func runLintWithUI(ctx context.Context, w io.Writer, title string, files []string, opts driver.Options) (*source.FileSet, []driver.Result, error) {
	type outcome struct {
		fs      *source.FileSet
		results []driver.Result
		err     error
	}
	events := make(chan driver.Event, 256)
	done := make(chan outcome, 1)

	opts.Sink = driver.ChannelSink{Ch: events}
	go func() {
		defer close(events)
		fs, results, err := driver.LintFiles(ctx, files, opts)
		done <- outcome{fs, results, err}
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, files, events),
		tea.WithOutput(w), tea.WithInput(nil))
	_, uiErr := program.Run()
	// если UI упал раньше, воркеры не должны блокироваться на канале
	go func() {
		for range events {
		}
	}()

	res := <-done
	if res.err == nil && uiErr != nil {
		res.err = fmt.Errorf("progress ui: %w", uiErr)
	}
	return res.fs, res.results, res.err
}
