package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"sysmonitor/internal/app"
	"sysmonitor/internal/config"
	"sysmonitor/internal/output"
	"sysmonitor/ui/console"
	"sysmonitor/ui/tui"
)

const version = "1.0.0"

// Upper bound for the final report after the session ends.
const shutdownTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.Shutdown(shutdownCtx)
	}()

	switch cfg.Mode {
	case config.ModeMCP:
		return a.ServeMCP(ctx, version)
	case config.ModeConsole:
		return runConsole(ctx, a)
	default:
		return runTUI(ctx, a)
	}
}

// runConsole prints every sample until the session completes. An interrupt
// cancels the session, which still ends with a report.
func runConsole(ctx context.Context, a *app.App) error {
	sub := a.Hub.Subscribe(64)
	defer sub.Unsubscribe()

	if err := a.Controller.Start(ctx); err != nil {
		return err
	}
	completion, err := console.Run(context.WithoutCancel(ctx), os.Stdout, sub.Events())
	if err != nil {
		return err
	}
	if completion != nil && completion.Error != "" {
		return errors.New(completion.Error)
	}
	return nil
}

// runTUI shows the live observer. Quitting the UI stops the session; the
// report is written before the process exits.
func runTUI(ctx context.Context, a *app.App) error {
	sub := a.Hub.Subscribe(64)
	defer sub.Unsubscribe()

	if err := a.Controller.Start(ctx); err != nil {
		return err
	}
	if err := tui.Start(sub.Events(), a.Controller, tui.Options{
		Duration: a.Config.Session.Duration,
		Interval: a.Config.Session.Interval,
	}); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	a.Controller.Stop()
	waitCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	fmt.Println("Generating report...")
	outcome, err := a.Controller.Wait(waitCtx)
	if err != nil {
		return err
	}
	console.PrintCompletion(os.Stdout, &output.Completion{
		ReportPath: outcome.ReportPath,
		Samples:    outcome.Samples,
		Cancelled:  outcome.Cancelled,
		Message:    outcomeMessage(outcome.Skipped),
		Error:      errString(outcome.Err),
	})
	return outcome.Err
}

func outcomeMessage(skipped bool) string {
	if skipped {
		return "no samples collected; report skipped"
	}
	return "session complete"
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
