package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"grilltimer/internal/sound"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newSoundsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sounds",
		Short: "Manage alert sounds",
		Long: `Manage the alert sound.

The selection always keeps a system tone as the last fallback. A bundled
(premium) or imported custom sound can override it; a missing file clears
the override when the alert next plays.`,
	}
	cmd.AddCommand(
		newSoundsListCmd(opts),
		newSoundsImportCmd(opts),
		newSoundsRenameCmd(opts),
		newSoundsDeleteCmd(opts),
		newSoundsSelectCmd(opts),
		newSoundsTestCmd(opts),
	)
	return cmd
}

// withRuntime opens the runtime on the OS filesystem for the duration of fn.
func withRuntime(opts *rootOptions, fn func(rt *runtime) error) error {
	rt, err := openRuntime(opts, afero.NewOsFs())
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

func newSoundsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List system, bundled and custom sounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(opts, func(rt *runtime) error {
				return printSounds(cmd.OutOrStdout(), rt)
			})
		},
	}
}

func printSounds(out io.Writer, rt *runtime) error {
	sel := rt.prefs.Selection()
	mark := func(on bool) string {
		if on {
			return "*"
		}
		return ""
	}

	fmt.Fprintf(out, "Selected: %s\n\n", sel)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "SYSTEM")
	for _, id := range sound.SystemSounds() {
		fmt.Fprintf(w, "%s\t%d\t%s\n", mark(id == sel.SystemID()), int(id), id)
	}

	bundledID, _ := sel.BundledID()
	premium := ""
	if !rt.prefs.Premium() {
		premium = " (premium)"
	}
	fmt.Fprintf(w, "\nBUNDLED%s\n", premium)
	if rt.catalog.Len() == 0 {
		fmt.Fprintln(w, "\t(none installed)")
	}
	for _, cat := range rt.catalog.Categories() {
		fmt.Fprintf(w, "\t[%s]\n", cat)
		for _, s := range rt.catalog.All() {
			if s.Category != cat {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", mark(s.ID == bundledID), s.ID, s.DisplayName)
		}
	}

	customID, _ := sel.CustomID()
	fmt.Fprintln(w, "\nCUSTOM")
	custom := rt.library.List()
	if len(custom) == 0 {
		fmt.Fprintln(w, "\t(none imported)")
	}
	for _, s := range custom {
		fmt.Fprintf(w, "%s\t%s\t%s\n", mark(s.ID == customID), s.ID, s.Name)
	}
	return w.Flush()
}

func newSoundsImportCmd(opts *rootOptions) *cobra.Command {
	var (
		name      string
		andSelect bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an audio file as a custom sound",
		Long:  "Import copies a WAV, MP3, OGG or FLAC file into the data directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(opts, func(rt *runtime) error {
				s, err := rt.library.Import(afero.NewOsFs(), args[0], name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %q as %s\n", s.Name, s.ID)
				if andSelect {
					return rt.prefs.SetSelection(rt.prefs.Selection().WithCustom(s.ID))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (default: file name)")
	cmd.Flags().BoolVar(&andSelect, "select", false, "select the sound after importing")
	return cmd
}

func newSoundsRenameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a custom sound",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(opts, func(rt *runtime) error {
				return rt.library.Rename(args[0], strings.Join(args[1:], " "))
			})
		},
	}
}

func newSoundsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom sound",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(opts, func(rt *runtime) error {
				id := args[0]
				if err := rt.library.Delete(id); err != nil {
					return err
				}
				sel := rt.prefs.Selection()
				if selected, ok := sel.CustomID(); ok && selected == id {
					return rt.prefs.SetSelection(sel.WithoutOverride())
				}
				return nil
			})
		},
	}
}

func newSoundsSelectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <system|bundled|custom> <id> | select default",
		Short: "Choose the alert sound",
		Long: `Choose the alert sound.

  select system Chime     use a system tone, dropping any override
  select bundled ember    override with a bundled sound
  select custom <id>      override with an imported sound
  select default          drop the override and keep the system tone`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(opts, func(rt *runtime) error {
				sel, err := parseSelection(rt, args)
				if err != nil {
					return err
				}
				if err := rt.prefs.SetSelection(sel); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected: %s\n", sel)
				if _, ok := sel.BundledID(); ok && !rt.prefs.Premium() {
					fmt.Fprintln(cmd.OutOrStdout(), "Bundled sounds play with premium; the system tone is used until then.")
				}
				return nil
			})
		},
	}
}

func parseSelection(rt *runtime, args []string) (sound.Selection, error) {
	cur := rt.prefs.Selection()
	if args[0] == "default" {
		return cur.WithoutOverride(), nil
	}
	if len(args) != 2 {
		return cur, fmt.Errorf("select %s needs an id", args[0])
	}

	id := args[1]
	switch args[0] {
	case "system":
		tone, err := sound.ParseSystemSound(id)
		if err != nil {
			return cur, err
		}
		return cur.WithSystem(tone), nil
	case "bundled":
		if _, ok := rt.catalog.Get(id); !ok {
			return cur, fmt.Errorf("bundled sound %q: %w", id, sound.ErrNotFound)
		}
		return cur.WithBundled(id), nil
	case "custom":
		if _, ok := rt.library.Get(id); !ok {
			return cur, fmt.Errorf("custom sound %q: %w", id, sound.ErrNotFound)
		}
		return cur.WithCustom(id), nil
	}
	return cur, fmt.Errorf("unknown sound tier %q", args[0])
}

func newSoundsTestCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Play the selected alert sound once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(opts, func(rt *runtime) error {
				sel := rt.prefs.Selection()
				res := rt.resolver.Resolve(sel, rt.prefs.Premium())
				if res.Deselect {
					if err := rt.prefs.SetSelection(sel.WithoutOverride()); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Selected sound is missing; using the system tone.")
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Playing %s\n", res.Source)
				done := make(chan error, 1)
				if err := rt.player.Play(res.Source, false, func(err error) { done <- err }); err != nil {
					return err
				}

				select {
				case err := <-done:
					return err
				case <-time.After(timeout):
					rt.player.Stop()
					return nil
				case <-cmd.Context().Done():
					rt.player.Stop()
					return nil
				}
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "stop playback after this long")
	return cmd
}
