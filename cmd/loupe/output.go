package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/loupelabs/loupe/internal/model"
	"github.com/loupelabs/loupe/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printRecordTable(r *model.LogRecord) {
	fmt.Printf("ID:          %s\n", ui.RenderAccent(r.ID))
	fmt.Printf("Saved At:    %s\n", r.SavedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Action:      %s\n", joinNonEmpty(r.ActionType, r.ActionCategory))
	fmt.Printf("Actor:       %s\n", joinNonEmpty(r.ActorName, r.ActorType))
	if r.ActorRef != "" {
		fmt.Printf("Actor Ref:   %s\n", r.ActorRef)
	}
	if r.ResourceType != "" || r.ResourceName != "" {
		fmt.Printf("Resource:    %s\n", joinNonEmpty(r.ResourceName, r.ResourceType))
	}
	if r.ResourceRef != "" {
		fmt.Printf("Resource Ref: %s\n", r.ResourceRef)
	}
	if r.EntityPath != "" {
		fmt.Printf("Entity:      %s\n", r.EntityPath)
	}
	if r.TagType != "" || r.TagRef != "" {
		fmt.Printf("Tag:         %s\n", joinNonEmpty(r.TagType, r.TagRef))
	}
	if r.AttachmentName != "" {
		fmt.Printf("Attachment:  %s (%s)\n", r.AttachmentName, joinNonEmpty(r.AttachmentType, r.AttachmentMimeType))
	}
	printExtras("Actor Extra", r.ActorExtra)
	printExtras("Resource Extra", r.ResourceExtra)
	printExtras("Source", r.Source)
	printExtras("Details", r.Details)
}

func printExtras(label string, extra map[string]string) {
	if len(extra) == 0 {
		return
	}
	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("%s:\n", label)
	for _, name := range names {
		fmt.Printf("  %s: %s\n", ui.RenderMuted(name), extra[name])
	}
}

func printRecordListTable(records []model.LogRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SAVED AT\tACTION\tACTOR\tRESOURCE\tENTITY\tID")
	for i := range records {
		printRecordRow(w, &records[i])
	}
	w.Flush()
	fmt.Printf("\n%d records\n", len(records))
}

func printRecordRow(w *tabwriter.Writer, r *model.LogRecord) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		r.SavedAt.Format(time.RFC3339),
		r.ActionType,
		joinNonEmpty(r.ActorName, r.ActorType),
		joinNonEmpty(r.ResourceName, r.ResourceType),
		r.EntityPath,
		r.ID,
	)
}

func printFilterTable(f *model.SavedFilter) {
	fmt.Printf("ID:          %s\n", ui.RenderAccent(f.ID))
	fmt.Printf("Name:        %s\n", f.Name)
	fmt.Printf("Repository:  %s\n", f.RepoID)
	if f.IsFavorite {
		fmt.Printf("Favorite:    yes\n")
	}
	if len(f.SearchParams) > 0 {
		keys := make([]string, 0, len(f.SearchParams))
		for k := range f.SearchParams {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Printf("Params:\n")
		for _, k := range keys {
			fmt.Printf("  %s: %s\n", ui.RenderMuted(k), f.SearchParams[k])
		}
	}
	if len(f.Columns) > 0 {
		fmt.Printf("Columns:     %s\n", strings.Join(f.Columns, ", "))
	}
	fmt.Printf("Created At:  %s\n", f.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated At:  %s\n", f.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func printFilterListTable(filters []*model.SavedFilter, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tREPO\tFAV\tUPDATED")
	for _, f := range filters {
		fav := ""
		if f.IsFavorite {
			fav = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.Name, f.RepoID, fav, f.UpdatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	fmt.Printf("\n%d filters (%d total)\n", len(filters), total)
}

func printRepoListTable(repos []model.Repository, active string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tCREATED")
	for _, r := range repos {
		marker := "  "
		if r.ID == active {
			marker = "* "
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\n", marker, r.ID, r.Name, r.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " / ")
}
