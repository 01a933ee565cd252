package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var watch bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show the status of a dubbing session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			out := cmd.OutOrStdout()

			if watch {
				return watchSession(cmd.Context(), client, args[0], out)
			}

			view, err := client.Describe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(out, view)
			}

			rows := [][]string{
				{"Session", view.SessionID},
				{"Status", view.StageLabel},
				{"Progress", fmt.Sprintf("%d%%", view.Progress)},
				{"Language", view.TargetLanguage},
				{"Voice", view.VoiceOption},
				{"Style", view.VoiceStyle},
			}
			if view.VideoTitle != "" {
				rows = append(rows, []string{"Title", view.VideoTitle})
			}
			if view.Duration > 0 {
				rows = append(rows, []string{"Duration", fmt.Sprintf("%.0fs", view.Duration)})
			}
			if view.Message != "" {
				rows = append(rows, []string{"Message", view.Message})
			}
			if view.Error != "" {
				rows = append(rows, []string{"Error", view.Error})
			}
			if view.FailedStage != "" {
				rows = append(rows, []string{"Failed stage", view.FailedStage})
			}
			if view.FinalFile != "" {
				rows = append(rows, []string{"Final file", view.FinalFile})
			}
			fmt.Fprintln(out, renderFieldTable(rows))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll progress until the session finishes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw session view as JSON")
	return cmd
}
