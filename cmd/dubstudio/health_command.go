package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show daemon health and stage readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := ctx.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			kind := statusOK
			if response.Status != "healthy" {
				kind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", kind, response.Message, colorize))

			if response.Sessions != nil {
				detail := fmt.Sprintf("%d total, %d queued, %d processing, %d completed, %d failed",
					response.Sessions.Total,
					response.Sessions.Queued,
					response.Sessions.Processing,
					response.Sessions.Completed,
					response.Sessions.Failed,
				)
				fmt.Fprintln(out, renderStatusLine("Sessions", statusInfo, detail, colorize))
			}

			for _, record := range response.Stages {
				kind := statusOK
				message := "ready"
				if !record.Ready {
					kind = statusError
					message = record.Detail
				}
				fmt.Fprintln(out, renderStatusLine(record.Name, kind, message, colorize))
			}
			return nil
		},
	}
}
