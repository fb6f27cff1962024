package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/loupelabs/loupe/internal/client"
	"github.com/loupelabs/loupe/internal/prefs"
	"github.com/loupelabs/loupe/internal/ui"
)

var (
	serverURL  string
	jsonOutput bool
	repoID     string

	api       client.Client
	prefStore prefs.Store
)

func defaultServer() string {
	if s := os.Getenv("LOUPE_SERVER"); s != "" {
		return s
	}
	if s := activeRemoteURL(); s != "" {
		return s
	}
	return "http://localhost:8080"
}

var rootCmd = &cobra.Command{
	Use:   "loupe",
	Short: "Console for browsing append-only audit logs",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		api = client.NewHTTPClient(serverURL, authToken())

		path, err := prefs.DefaultPath()
		if err != nil {
			return err
		}
		store, err := prefs.OpenFile(path)
		if err != nil {
			return err
		}
		prefStore = store
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if api != nil {
			api.Close()
		}
	},
}

// authToken resolves the bearer token: the environment wins over the active
// remote's stored token.
func authToken() string {
	if t := os.Getenv("LOUPE_TOKEN"); t != "" {
		return t
	}
	return activeRemoteToken()
}

// resolveRepo returns the repository to operate on: the --repo flag, or the
// last-used repository from preferences.
func resolveRepo() string {
	if repoID != "" {
		return repoID
	}
	if last, ok := prefs.LastRepo(prefStore); ok {
		return last
	}
	return ""
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "loupe gateway URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVarP(&repoID, "repo", "r", "", "repository to operate on (defaults to the last used)")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(filtersCmd)
	rootCmd.AddCommand(columnsCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
