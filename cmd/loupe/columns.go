package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loupelabs/loupe/internal/client"
	"github.com/loupelabs/loupe/internal/export"
	"github.com/loupelabs/loupe/internal/model"
	"github.com/loupelabs/loupe/internal/prefs"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Show the column selection for a repository or filter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filterID, _ := cmd.Flags().GetString("filter")

		var cols []string
		switch {
		case filterID != "":
			f, err := api.GetFilter(cmd.Context(), filterID)
			if err != nil {
				return err
			}
			cols = model.DenormalizeColumns(f.Columns)
		default:
			repo := resolveRepo()
			if repo == "" {
				return fmt.Errorf("no repository selected; pass --repo or run 'loupe repos use <id>'")
			}
			cols, _ = prefs.Columns(prefStore, repo)
		}

		if len(cols) == 0 {
			fmt.Printf("default (%s)\n", strings.Join(export.DefaultColumns, ", "))
			return nil
		}
		fmt.Println(strings.Join(cols, ", "))
		return nil
	},
}

var columnsSetCmd = &cobra.Command{
	Use:   "set <col,col,...>",
	Short: "Set the column selection for a repository or filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cols := strings.Split(args[0], ",")
		filterID, _ := cmd.Flags().GetString("filter")

		if filterID != "" {
			normalized := model.NormalizeColumns(cols)
			f, err := api.UpdateFilter(cmd.Context(), filterID, &client.UpdateFilterRequest{Columns: &normalized})
			if err != nil {
				return err
			}
			fmt.Printf("columns for filter %s set to %s\n", f.ID, strings.Join(f.Columns, ", "))
			return nil
		}

		repo := resolveRepo()
		if repo == "" {
			return fmt.Errorf("no repository selected; pass --repo or run 'loupe repos use <id>'")
		}
		if err := prefs.SetColumns(prefStore, repo, cols); err != nil {
			return err
		}
		fmt.Printf("columns for %s set to %s\n", repo, strings.Join(cols, ", "))
		return nil
	},
}

var columnsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the column selection to the default",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filterID, _ := cmd.Flags().GetString("filter")

		if filterID != "" {
			empty := []string{}
			if _, err := api.UpdateFilter(cmd.Context(), filterID, &client.UpdateFilterRequest{Columns: &empty}); err != nil {
				return err
			}
			fmt.Printf("columns for filter %s reset\n", filterID)
			return nil
		}

		repo := resolveRepo()
		if repo == "" {
			return fmt.Errorf("no repository selected; pass --repo or run 'loupe repos use <id>'")
		}
		if err := prefs.SetColumns(prefStore, repo, nil); err != nil {
			return err
		}
		fmt.Printf("columns for %s reset\n", repo)
		return nil
	},
}

func init() {
	columnsCmd.PersistentFlags().String("filter", "", "operate on a saved filter instead of repository preferences")

	columnsCmd.AddCommand(columnsSetCmd)
	columnsCmd.AddCommand(columnsClearCmd)
}
