package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dubstudio/internal/api"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "transcribe <video-url>",
		Short: "Download a video and print its transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := ctx.client().Transcribe(cmd.Context(), api.TranscribeRequest{URL: args[0]})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, response)
			}
			if response.VideoTitle != "" {
				fmt.Fprintf(out, "Title: %s\n", response.VideoTitle)
			}
			if response.Duration > 0 {
				fmt.Fprintf(out, "Duration: %.0fs\n", response.Duration)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, response.Transcription)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var language string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "translate <video-url>",
		Short: "Download a video, transcribe it, and print the translation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := ctx.client().Translate(cmd.Context(), api.TranslateRequest{
				URL:            args[0],
				TargetLanguage: language,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, response)
			}
			if response.VideoTitle != "" {
				fmt.Fprintf(out, "Title: %s\n", response.VideoTitle)
			}
			fmt.Fprintf(out, "Translation (%s):\n\n%s\n", response.TargetLanguage, response.TranslatedText)
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Target language code (for example es)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("language")
	return cmd
}
