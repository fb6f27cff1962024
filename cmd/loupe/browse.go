package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/loupelabs/loupe/internal/events"
	"github.com/loupelabs/loupe/internal/model"
	"github.com/loupelabs/loupe/internal/navigation"
	"github.com/loupelabs/loupe/internal/ui"
)

// cliNavigator tracks the current route so the shareable URL can be printed.
type cliNavigator struct {
	route navigation.Route
}

func (n *cliNavigator) Push(r navigation.Route)    { n.route = r }
func (n *cliNavigator) Replace(r navigation.Route) { n.route = r }

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse log records matching a query",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filterID, _ := cmd.Flags().GetString("filter")
		pages, _ := cmd.Flags().GetInt("pages")
		all, _ := cmd.Flags().GetBool("all")
		follow, _ := cmd.Flags().GetBool("follow")
		printURL, _ := cmd.Flags().GetBool("url")

		params, err := searchParamsFromFlags(cmd, repoID)
		if err != nil {
			return err
		}
		// Field flags only take effect when the route carries a repository,
		// so fill one in from preferences before building the route.
		if !params.IsEmpty() && params.RepoID == "" && filterID == "" {
			params.RepoID = resolveRepo()
		}

		// Build the route the session starts from. An explicit repository
		// or any search flag puts the whole query in the route; a filter
		// reference travels as its own key. With neither, the repository is
		// auto-selected from preferences.
		q := url.Values{}
		if !params.IsEmpty() {
			for k, v := range params.Serialize(model.SerializeOptions{IncludeRepoID: true}) {
				q.Set(k, v)
			}
		}
		if filterID != "" {
			q.Set("filterId", filterID)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		nav := &cliNavigator{}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		sync := navigation.New(api, prefStore, nav, logger)
		if err := sync.Init(ctx, q); err != nil {
			return err
		}
		defer sync.Close(context.Background())

		pager := sync.Pager()
		if !pager.Enabled() {
			return fmt.Errorf("no repository available; pass --repo or run 'loupe repos use <id>'")
		}

		rows := []model.LogRecord{}
		printed := 0
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		if !jsonOutput {
			fmt.Fprintln(w, "SAVED AT\tACTION\tACTOR\tRESOURCE\tENTITY\tID")
		}
		for page := 0; all || page < pages; page++ {
			if err := pager.LoadMore(ctx); err != nil {
				return err
			}
			items := pager.Items()
			for i := printed; i < len(items); i++ {
				if jsonOutput {
					rows = append(rows, items[i])
				} else {
					printRecordRow(w, &items[i])
				}
			}
			printed = len(items)
			if pager.Exhausted() {
				break
			}
		}
		if jsonOutput {
			printJSON(rows)
		} else {
			w.Flush()
			fmt.Printf("\n%d records", printed)
			if !pager.Exhausted() {
				fmt.Printf(" %s", ui.RenderMuted("(more available, use --all)"))
			}
			fmt.Println()
		}

		if printURL {
			cur := sync.Params()
			route := navigation.Route{Params: cur, FilterID: sync.FilterID()}
			fmt.Printf("%s/?%s\n", serverURL, route.Query().Encode())
		}

		if follow {
			return followRepo(ctx, sync.Params().RepoID, w)
		}
		return nil
	},
}

// followRepo tails newly appended records of one repository over NATS until
// interrupted.
func followRepo(ctx context.Context, repo string, w *tabwriter.Writer) error {
	natsURL := os.Getenv("LOUPE_NATS_URL")
	if natsURL == "" {
		natsURL = activeRemoteNATSURL()
	}
	if natsURL == "" {
		return fmt.Errorf("--follow needs LOUPE_NATS_URL or a remote with a NATS URL")
	}

	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(events.RecordTopic(repo))
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	fmt.Fprintln(os.Stderr, ui.RenderMuted("following "+repo+" (ctrl-c to stop)"))
	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			var ev events.RecordAppended
			if err := json.Unmarshal(data, &ev); err != nil || ev.Record == nil {
				continue
			}
			if jsonOutput {
				printJSON(ev.Record)
			} else {
				printRecordRow(w, ev.Record)
				w.Flush()
			}
		}
	}
}

func init() {
	addSearchFlags(browseCmd)
	browseCmd.Flags().String("filter", "", "start from a saved filter id")
	browseCmd.Flags().Int("pages", 1, "number of pages to fetch")
	browseCmd.Flags().Bool("all", false, "fetch every page")
	browseCmd.Flags().Bool("follow", false, "tail newly appended records over NATS")
	browseCmd.Flags().Bool("url", false, "print the shareable console URL for this query")
}
