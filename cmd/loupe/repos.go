package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loupelabs/loupe/internal/prefs"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List log repositories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := api.ListRepositories(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(repos)
			return nil
		}
		active, _ := prefs.LastRepo(prefStore)
		printRepoListTable(repos, active)
		return nil
	},
}

var reposUseCmd = &cobra.Command{
	Use:   "use <repo-id>",
	Short: "Set the default repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		repos, err := api.ListRepositories(cmd.Context())
		if err != nil {
			return err
		}
		found := false
		for _, r := range repos {
			if r.ID == id {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("repository %q not found", id)
		}

		if err := prefs.SetLastRepo(prefStore, id); err != nil {
			return err
		}
		fmt.Printf("default repository set to %q\n", id)
		return nil
	},
}

func init() {
	reposCmd.AddCommand(reposUseCmd)
}
