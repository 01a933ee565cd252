package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dubstudio/internal/api"
	"dubstudio/internal/session"
)

const watchPollInterval = 2 * time.Second

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var language string
	var voice string
	var style string
	var watch bool

	cmd := &cobra.Command{
		Use:   "submit <video-url>",
		Short: "Submit a video for dubbing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			response, err := client.SubmitDub(cmd.Context(), api.DubRequest{
				URL:            args[0],
				TargetLanguage: language,
				VoiceOption:    voice,
				VoiceStyle:     style,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %s queued (language %s)\n", response.SessionID, strings.TrimSpace(language))
			if !watch {
				fmt.Fprintf(out, "Poll progress with: dubstudio status %s --watch\n", response.SessionID)
				return nil
			}
			return watchSession(cmd.Context(), client, response.SessionID, out)
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Target language code (for example es)")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice option: clone or a prebuilt voice id")
	cmd.Flags().StringVar(&style, "style", "", "Voice style: natural, dramatic, calm, or energetic")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll progress until the session finishes")
	_ = cmd.MarkFlagRequired("language")
	return cmd
}

func watchSession(ctx context.Context, client *daemonClient, sessionID string, out io.Writer) error {
	lastLine := ""
	for {
		status, err := client.Status(ctx, sessionID)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%-18s %3d%%  %s", status.Status, status.Progress, status.Message)
		if line != lastLine {
			fmt.Fprintln(out, line)
			lastLine = line
		}

		parsed, _ := session.ParseStatus(status.Status)
		if session.IsTerminalStatus(parsed) {
			if parsed == session.StatusFailed {
				return fmt.Errorf("dubbing failed: %s", status.Error)
			}
			if status.DownloadURL != "" {
				fmt.Fprintf(out, "Download the dubbed video from %s\n", status.DownloadURL)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(watchPollInterval):
		}
	}
}
