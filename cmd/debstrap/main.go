// Package main is the entry point for the debstrap bootstrap tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grindlemire/graft"
	"github.com/mattn/go-isatty"

	"github.com/debstrap/debstrap/cmd/debstrap/commands"
	"github.com/debstrap/debstrap/internal/adapters/telemetry"
	"github.com/debstrap/debstrap/internal/app"
	"github.com/debstrap/debstrap/internal/core/ports"
	"github.com/debstrap/debstrap/internal/tui"
	_ "github.com/debstrap/debstrap/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		// Write directly to stderr
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	// 2. Interface - CLI
	cli := commands.New(components.App)

	// 3. Execution. Closing the telemetry session ends the progress tape,
	// which in turn stops the TUI.
	done := make(chan error, 1)
	go func() {
		err := cli.Execute(ctx)
		_ = components.Telemetry.Close()
		done <- err
	}()

	// 4. Progress rendering, when attached to a terminal
	if src := tapeSource(components.Telemetry); src != nil && isatty.IsTerminal(os.Stderr.Fd()) {
		prog := tea.NewProgram(tui.NewModel(src), tea.WithOutput(os.Stderr))
		_, _ = prog.Run()
	}

	if err := <-done; err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		return 1
	}
	return 0
}

// tapeSource returns the readable side of the telemetry session, or nil when
// the session cannot be consumed.
func tapeSource(t ports.Telemetry) tui.TapeSource {
	rec, ok := t.(*telemetry.Recorder)
	if !ok {
		return nil
	}
	if c := rec.Updates(); c != nil {
		return c
	}
	return nil
}
