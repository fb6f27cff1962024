package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <log-id>",
	Short: "Show one log record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := resolveRepo()
		if repo == "" {
			return fmt.Errorf("no repository selected; pass --repo or run 'loupe repos use <id>'")
		}

		rec, err := api.GetLog(cmd.Context(), repo, args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(rec)
		} else {
			printRecordTable(rec)
		}
		return nil
	},
}
