package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/loupelabs/loupe/internal/fields"
	"github.com/loupelabs/loupe/internal/model"
	"github.com/loupelabs/loupe/internal/ui"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the searchable fields of a repository",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := resolveRepo()
		if repo == "" {
			return fmt.Errorf("no repository selected; pass --repo or run 'loupe repos use <id>'")
		}
		showVocab, _ := cmd.Flags().GetBool("vocab")

		cat, err := fields.Resolve(cmd.Context(), api, repo)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(cat)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  FIELD\tGROUP\tKIND")
		for _, d := range cat.Descriptors() {
			marker := "  "
			if model.IsPermanentField(d.Name) {
				marker = "* "
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\n", marker, d.Name, d.Group, d.Kind)
		}
		w.Flush()
		fmt.Println(ui.RenderMuted("\n* always shown as a filter control"))

		if showVocab {
			fmt.Println()
			for kind, values := range cat.Vocab {
				fmt.Printf("%s: %s\n", ui.RenderAccent(kind), strings.Join(values, ", "))
			}
		}
		return nil
	},
}

func init() {
	fieldsCmd.Flags().Bool("vocab", false, "also print the fixed-field vocabularies")
}
