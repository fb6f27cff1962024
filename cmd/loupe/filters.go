package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loupelabs/loupe/internal/client"
	"github.com/loupelabs/loupe/internal/model"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Manage saved filters",
}

var filtersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var q model.FilterQuery
		q.Search, _ = cmd.Flags().GetString("search")
		if fav, _ := cmd.Flags().GetBool("favorites"); fav {
			q.IsFavorite = &fav
		}
		q.Page, _ = cmd.Flags().GetInt("page")
		q.PageSize, _ = cmd.Flags().GetInt("page-size")

		page, err := api.ListFilters(cmd.Context(), q)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(page)
		} else {
			printFilterListTable(page.Filters, page.Total)
		}
		return nil
	},
}

var filtersShowCmd = &cobra.Command{
	Use:   "show <filter-id>",
	Short: "Show one saved filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := api.GetFilter(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(f)
		} else {
			printFilterTable(f)
		}
		return nil
	},
}

var filtersSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the given query as a named filter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		repo := resolveRepo()
		if repo == "" {
			return fmt.Errorf("no repository selected; pass --repo or run 'loupe repos use <id>'")
		}

		params, err := searchParamsFromFlags(cmd, "")
		if err != nil {
			return err
		}

		req := &client.CreateFilterRequest{
			Name:         name,
			RepoID:       repo,
			SearchParams: params.Serialize(model.SerializeOptions{SnakeCase: true}),
		}
		if cols, _ := cmd.Flags().GetString("columns"); cols != "" {
			req.Columns = strings.Split(cols, ",")
		}
		req.IsFavorite, _ = cmd.Flags().GetBool("favorite")

		f, err := api.CreateFilter(cmd.Context(), req)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(f)
		} else {
			fmt.Printf("filter %q saved as %s\n", f.Name, f.ID)
		}
		return nil
	},
}

var filtersDeleteCmd = &cobra.Command{
	Use:   "delete <filter-id>",
	Short: "Delete a saved filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.DeleteFilter(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("filter %s deleted\n", args[0])
		return nil
	},
}

var filtersFavoriteCmd = &cobra.Command{
	Use:   "favorite <filter-id>",
	Short: "Mark a saved filter as favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unset, _ := cmd.Flags().GetBool("unset")
		fav := !unset

		f, err := api.UpdateFilter(cmd.Context(), args[0], &client.UpdateFilterRequest{IsFavorite: &fav})
		if err != nil {
			return err
		}

		if f.IsFavorite {
			fmt.Printf("filter %s marked favorite\n", f.ID)
		} else {
			fmt.Printf("filter %s unmarked\n", f.ID)
		}
		return nil
	},
}

var filtersRenameCmd = &cobra.Command{
	Use:   "rename <filter-id> <name>",
	Short: "Rename a saved filter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[1]
		f, err := api.UpdateFilter(cmd.Context(), args[0], &client.UpdateFilterRequest{Name: &name})
		if err != nil {
			return err
		}
		fmt.Printf("filter %s renamed to %q\n", f.ID, f.Name)
		return nil
	},
}

func init() {
	filtersListCmd.Flags().String("search", "", "match filter names")
	filtersListCmd.Flags().Bool("favorites", false, "only favorites")
	filtersListCmd.Flags().Int("page", 0, "page number (1-based)")
	filtersListCmd.Flags().Int("page-size", 0, "page size")

	addSearchFlags(filtersSaveCmd)
	filtersSaveCmd.Flags().String("name", "", "filter name (required)")
	filtersSaveCmd.Flags().String("columns", "", "comma-separated column selection")
	filtersSaveCmd.Flags().Bool("favorite", false, "mark as favorite")

	filtersFavoriteCmd.Flags().Bool("unset", false, "remove the favorite mark")

	filtersCmd.AddCommand(filtersListCmd)
	filtersCmd.AddCommand(filtersShowCmd)
	filtersCmd.AddCommand(filtersSaveCmd)
	filtersCmd.AddCommand(filtersDeleteCmd)
	filtersCmd.AddCommand(filtersFavoriteCmd)
	filtersCmd.AddCommand(filtersRenameCmd)
}
