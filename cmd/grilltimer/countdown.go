package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"grilltimer/internal/engine"
	"grilltimer/internal/settings"
	"grilltimer/internal/timer"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newCountdownCmd(opts *rootOptions) *cobra.Command {
	var (
		name string
		ring time.Duration
	)
	cmd := &cobra.Command{
		Use:   "countdown <duration>",
		Short: "Run a single countdown without the TUI",
		Long: `Run one countdown in the terminal and alert when it completes.

The duration accepts "4m30s", "4:30" or a number of seconds. Alert
settings come from the data directory but nothing is written back. Press
Enter to dismiss the alert; it stops by itself after --ring (0 waits).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := timer.ParseDuration(args[0])
			if err != nil {
				return err
			}
			return runCountdown(cmd, opts, name, d, ring)
		},
	}
	cmd.Flags().StringVar(&name, "name", "Countdown", "timer name used in alerts")
	cmd.Flags().DurationVar(&ring, "ring", 30*time.Second, "dismiss the alert after this long")
	return cmd
}

// countdownFs reads the real data directory and keeps every write in memory.
func countdownFs() afero.Fs {
	return afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(afero.NewOsFs()), afero.NewMemMapFs())
}

func runCountdown(cmd *cobra.Command, opts *rootOptions, name string, d, ring time.Duration) error {
	rt, err := openRuntime(opts, countdownFs())
	if err != nil {
		return err
	}
	defer rt.Close()

	eng := rt.newEngine(os.Stderr)
	defer eng.Close()

	id := settings.Interval1
	if err := eng.RenameTimer(id, name); err != nil {
		return err
	}
	if err := eng.SetPresets(id, [2]time.Duration{d, d}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go func() { _ = eng.Run(runCtx) }()

	if err := eng.SelectPreset(id, 0); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	display := time.NewTicker(250 * time.Millisecond)
	defer display.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case <-display.C:
			if tv, ok := eng.Snapshot().Timer(id); ok {
				fmt.Fprintf(out, "\r%s  %s ", name, timer.Format(tv.Remaining))
			}
		case ev := <-eng.Events():
			if ev.Kind == engine.EventSoundFailed {
				rt.logger.Warn("alert sound failed", "error", ev.Err)
			}
			if ev.Kind != engine.EventExpired {
				continue
			}
			fmt.Fprintf(out, "\r%s complete! Press Enter to dismiss.\n", name)
			waitDismiss(ctx, cmd, ring)
			eng.Dismiss(engine.ContextInterval)
			return nil
		}
	}
}

// waitDismiss blocks until Enter, ring elapses or ctx is done.
func waitDismiss(ctx context.Context, cmd *cobra.Command, ring time.Duration) {
	enter := make(chan struct{})
	go func() {
		_, _ = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		close(enter)
	}()

	var timeout <-chan time.Time
	if ring > 0 {
		t := time.NewTimer(ring)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case <-enter:
	case <-timeout:
	case <-ctx.Done():
	}
}
