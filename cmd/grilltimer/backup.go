package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"grilltimer/internal/backup"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func openBackups(opts *rootOptions) (*backup.Manager, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return backup.NewManager(afero.NewOsFs(), cfg.GetDataDir(), version, nil), nil
}

func newBackupCmd(opts *rootOptions) *cobra.Command {
	var (
		list  bool
		prune int
	)
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create and manage backups",
		Long: `Create a timestamped backup of settings, timers and imported sounds.
Backups are stored in the backups directory inside the data directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openBackups(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if list {
				return listBackups(out, mgr)
			}

			name, err := mgr.Create()
			if err != nil {
				return fmt.Errorf("create backup: %w", err)
			}
			info, err := mgr.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Backup created: %s\n", name)
			fmt.Fprintf(out, "  %s\n", formatStats(info.Stats))
			fmt.Fprintf(out, "  Location: %s\n", info.Path)

			if cmd.Flags().Changed("prune") {
				n, err := mgr.Prune(prune)
				if err != nil {
					return fmt.Errorf("prune backups: %w", err)
				}
				if n > 0 {
					fmt.Fprintf(out, "  Pruned %d old backup(s)\n", n)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list available backups")
	cmd.Flags().IntVar(&prune, "prune", 0, "after backing up, keep only this many backups")
	return cmd
}

func listBackups(out io.Writer, mgr *backup.Manager) error {
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Fprintln(out, "No backups available.")
		fmt.Fprintln(out, "Run 'grilltimer backup' to create one.")
		return nil
	}
	fmt.Fprintln(out, "Available backups:")
	for _, b := range backups {
		fmt.Fprintf(out, "  %s  (%s)   %s\n", b.Name, formatAge(time.Since(b.CreatedAt)), formatStats(b.Stats))
	}
	return nil
}

func formatStats(stats map[string]int) string {
	return fmt.Sprintf("Timers: %d, Custom sounds: %d, Sound files: %d",
		stats["timers"], stats["custom_sounds"], stats["sound_files"])
}

// formatAge returns a human-readable age.
func formatAge(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return plural(int(d.Hours()/24/7), "week")
	}
}

func newRestoreCmd(opts *rootOptions) *cobra.Command {
	var latest, force bool
	cmd := &cobra.Command{
		Use:   "restore [backup-name]",
		Short: "Restore data from a backup",
		Long: `Restore settings, timers and imported sounds from a backup. A safety
backup of the current data is created first.

Use 'grilltimer backup --list' to see available backups.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openBackups(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var name string
			switch {
			case latest:
				backups, err := mgr.List()
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					return errors.New("no backups available")
				}
				name = backups[0].Name
			case len(args) == 1:
				name = args[0]
			default:
				return errors.New("no backup specified; use 'grilltimer restore BACKUP_NAME' or --latest")
			}

			info, err := mgr.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Restoring from backup: %s\n", info.Name)
			fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  %s\n\n", formatStats(info.Stats))

			if !force {
				fmt.Fprint(out, "This will overwrite your current settings. Continue? [y/N] ")
				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				response = strings.ToLower(strings.TrimSpace(response))
				if response != "y" && response != "yes" {
					fmt.Fprintln(out, "Restore cancelled.")
					return nil
				}
			}

			safety, err := mgr.Restore(name)
			if err != nil {
				return fmt.Errorf("restore backup: %w", err)
			}
			fmt.Fprintf(out, "✓ Restored from %s (safety backup: %s)\n", name, safety)
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "restore the most recent backup")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}
