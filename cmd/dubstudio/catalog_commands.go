package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported target languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := ctx.client().Languages(cmd.Context())
			if err != nil {
				return err
			}
			codes := make([]string, 0, len(response.Languages))
			for code := range response.Languages {
				codes = append(codes, code)
			}
			sort.Strings(codes)

			rows := make([][]string, 0, len(codes))
			for _, code := range codes {
				rows = append(rows, []string{code, response.Languages[code]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Code", "Language"}, rows, nil))
			return nil
		},
	}
}

func newVoicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List available voices and styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := ctx.client().Voices(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			rows := [][]string{{response.Voices.Clone.ID, response.Voices.Clone.Name, "default"}}
			for _, voice := range response.Voices.Prebuilt {
				rows = append(rows, []string{voice.ID, voice.Name, voice.Category})
			}
			fmt.Fprintln(out, renderTable([]string{"Voice", "Name", "Category"}, rows, nil))

			styleRows := make([][]string, 0, len(response.Voices.Styles))
			for _, style := range response.Voices.Styles {
				styleRows = append(styleRows, []string{style})
			}
			fmt.Fprintln(out, renderTable([]string{"Style"}, styleRows, nil))
			return nil
		},
	}
}
