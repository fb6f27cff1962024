package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/loupelabs/loupe/internal/model"
	"github.com/loupelabs/loupe/internal/timeutil"
)

// addSearchFlags registers the flags shared by every command that builds a
// log query: browse, export, and filters save.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("field", "F", nil, "field filter as name=value, e.g. actorType=service or source.ip=10.0.0.1 (repeatable)")
	cmd.Flags().StringP("query", "q", "", "full-text query")
	cmd.Flags().String("since", "", "lower bound: RFC3339, 2026-01-02, or now-7d")
	cmd.Flags().String("until", "", "upper bound: RFC3339, 2026-01-02, or now")
}

// searchParamsFromFlags builds the typed query out of the shared search
// flags. Every field edit goes through the command transition so unknown
// field names fail up front instead of being silently dropped.
func searchParamsFromFlags(cmd *cobra.Command, repo string) (model.SearchParams, error) {
	params := model.SearchParams{RepoID: repo}

	pairs, _ := cmd.Flags().GetStringArray("field")
	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return params, fmt.Errorf("invalid field %q (expected name=value)", pair)
		}
		next, err := model.Apply(params, model.SetField{Name: name, Value: value})
		if err != nil {
			return params, err
		}
		params = next
	}

	if q, _ := cmd.Flags().GetString("query"); q != "" {
		next, err := model.Apply(params, model.SetField{Name: model.FieldQuery, Value: q})
		if err != nil {
			return params, err
		}
		params = next
	}

	now := time.Now()
	var since, until *time.Time
	if s, _ := cmd.Flags().GetString("since"); s != "" {
		t, err := timeutil.Parse(s, now)
		if err != nil {
			return params, fmt.Errorf("--since: %w", err)
		}
		since = &t
	}
	if s, _ := cmd.Flags().GetString("until"); s != "" {
		t, err := timeutil.Parse(s, now)
		if err != nil {
			return params, fmt.Errorf("--until: %w", err)
		}
		until = &t
	}
	if since != nil || until != nil {
		next, err := model.Apply(params, model.SetRange{Since: since, Until: until})
		if err != nil {
			return params, err
		}
		params = next
	}

	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}
