package main

import (
	"fmt"
	"os"

	"grilltimer/internal/ui"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dataDir    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "grilltimer",
		Short: "Flip, rest and preheat timers for the grill",
		Long: `grilltimer runs independent countdowns for flipping and resting meat
plus a preheat timer. When one completes it loops an alert sound, pulses
until dismissed and can announce the timer over headphones.

Settings, timers and imported sounds are stored under the data directory
($XDG_DATA_HOME/grilltimer by default).`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/grilltimer/config.yaml)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "override the data directory")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: error, warn, info or debug")

	cmd.AddCommand(
		newSoundsCmd(opts),
		newVoicesCmd(opts),
		newCountdownCmd(opts),
		newBackupCmd(opts),
		newRestoreCmd(opts),
	)
	return cmd
}

func runTUI(opts *rootOptions) error {
	rt, err := openRuntime(opts, afero.NewOsFs())
	if err != nil {
		return err
	}
	defer rt.Close()

	eng := rt.newEngine(os.Stderr)
	defer eng.Close()

	appCfg := &ui.AppConfig{
		Keys:            &rt.cfg.Keys,
		ConfirmRemovals: true,
	}
	if err := ui.Run(eng, ui.NewStyles(rt.cfg), appCfg); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
