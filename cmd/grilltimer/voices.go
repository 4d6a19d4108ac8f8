package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"grilltimer/internal/speech"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newVoicesCmd(opts *rootOptions) *cobra.Command {
	var (
		setID   string
		message string
	)

	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List announcement voices or choose one",
		Long: `List the installed speech voices for the configured language.

--set stores the voice used for announcements; an empty id restores the
default voice. --message replaces the spoken text; "{name}" expands to the
timer name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts, afero.NewOsFs())
			if err != nil {
				return err
			}
			defer rt.Close()

			if cmd.Flags().Changed("message") {
				if err := rt.prefs.SetAnnouncementMessage(message); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Announcement: %s\n", speech.Message(message, "Flip"))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.Alerts.SpeechTimeout)
			defer cancel()
			catalog := rt.voices()
			voices := catalog.Voices(ctx, speech.New())

			if cmd.Flags().Changed("set") {
				if setID != "" && !hasVoice(voices, setID) {
					return fmt.Errorf("voice %q is not installed for %q", setID, catalog.Family())
				}
				if err := rt.prefs.SetVoiceID(setID); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(voices) == 0 {
				fmt.Fprintf(out, "No %q voices available.\n", catalog.Family())
				return nil
			}

			current := rt.prefs.VoiceID()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\tID\tNAME\tLANGUAGE")
			for _, v := range voices {
				mark := ""
				if v.ID == current {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, v.ID, v.Name, v.Language)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&setID, "set", "", "store the announcement voice id")
	cmd.Flags().StringVar(&message, "message", "", "custom announcement text")
	return cmd
}

func hasVoice(voices []speech.Voice, id string) bool {
	for _, v := range voices {
		if v.ID == id {
			return true
		}
	}
	return false
}
