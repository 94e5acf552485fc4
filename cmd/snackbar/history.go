package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/core"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/output"
	"github.com/jmylchreest/snackbar/internal/store"
)

var historyOpts struct {
	// Filter options
	since  string
	level  string
	filter string
	search string
	active bool
	limit  int

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format   string
	field    string
	template string
	follow   bool
}

var historyCmd = &cobra.Command{
	Use:   "history [index|id]",
	Short: "List snackbar history",
	Long: `List the snackbars snackbard has shown, newest first.

With an index (1-based) or ULID argument, outputs that record only.

Filter expressions are comma-separated conditions that must all match.
Fields: sender, message, icon, level, reason, action, style, duration,
dismissed, shown. Operators: = != ~ (contains) ~= (regex) > < >= <=.

Examples:
  snackbar history --limit 10
  snackbar history --filter "level>=warning,shown>1d" --format json
  snackbar history --format yaml --since 2h
  snackbar history 1 --field message
  snackbar history --follow`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyOpts.since, "since", "",
		"Only records shown within this duration (e.g. 1h, 7d, 1w)")
	historyCmd.Flags().StringVarP(&historyOpts.level, "level", "l", "",
		"Only records of this level")
	historyCmd.Flags().StringVar(&historyOpts.filter, "filter", "",
		"Filter expression (e.g. \"sender=mail,level>=warning\")")
	historyCmd.Flags().StringVarP(&historyOpts.search, "search", "s", "",
		"Search messages and senders")
	historyCmd.Flags().BoolVar(&historyOpts.active, "active", false,
		"Only snackbars still on screen")
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", -1,
		"Maximum number of records (0=unlimited, default from config)")

	historyCmd.Flags().StringVar(&historyOpts.sortBy, "sort", "shown",
		"Sort by field (shown, sender, level)")
	historyCmd.Flags().StringVar(&historyOpts.sortOrder, "order", "desc",
		"Sort order (asc, desc)")

	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "",
		"Output format (plain, dmenu, json, yaml, ids; default from config)")
	historyCmd.Flags().StringVar(&historyOpts.field, "field", "",
		"Output a single field of the selected record")
	historyCmd.Flags().StringVar(&historyOpts.template, "template", "",
		"Go template for plain and dmenu output")
	historyCmd.Flags().BoolVar(&historyOpts.follow, "follow", false,
		"Keep running and print records as they change")
}

// historyQuery is the parsed form of the history flags.
type historyQuery struct {
	list   store.ListOptions
	filter *core.FilterExpr
	search string
	sort   core.SortOptions
	limit  int
}

func parseHistoryQuery() (*historyQuery, error) {
	since, err := core.ParseDuration(historyOpts.since)
	if err != nil {
		return nil, fmt.Errorf("invalid --since: %w", err)
	}
	filter, err := core.ParseFilter(historyOpts.filter)
	if err != nil {
		return nil, err
	}
	field, err := core.ParseSortField(historyOpts.sortBy)
	if err != nil {
		return nil, err
	}
	order, err := core.ParseSortOrder(historyOpts.sortOrder)
	if err != nil {
		return nil, err
	}

	level := historyOpts.level
	if level != "" {
		level = model.NormalizeLevel(level)
	}

	limit := historyOpts.limit
	if limit < 0 {
		limit = cfg.History.Limit
	}

	return &historyQuery{
		list: store.ListOptions{
			Since:      since,
			Level:      level,
			ActiveOnly: historyOpts.active,
		},
		filter: filter,
		search: historyOpts.search,
		sort:   core.SortOptions{Field: field, Order: order},
		limit:  limit,
	}, nil
}

// apply selects, sorts and limits the records of st.
func (q *historyQuery) apply(st *store.Store) []model.Record {
	records := st.List(q.list)
	records = core.Filter(records, q.filter)
	records = core.Search(records, q.search)
	core.Sort(records, q.sort)
	if q.limit > 0 && len(records) > q.limit {
		records = records[:q.limit]
	}
	return records
}

func newFormatter() (output.Formatter, error) {
	name := historyOpts.format
	if name == "" {
		name = cfg.History.Format
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	opts := output.DefaultFormatterOptions()
	opts.Template = historyOpts.template
	return output.NewFormatter(format, opts)
}

func runHistory(cmd *cobra.Command, args []string) error {
	query, err := parseHistoryQuery()
	if err != nil {
		return err
	}
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	path := historyPath()
	st := store.NewStore(store.ReadOnlyPersistence{Path: path})
	defer st.Close()
	if err := st.Hydrate(); err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	records := query.apply(st)

	if len(args) > 0 {
		r := core.Lookup(records, args[0])
		if r == nil {
			return fmt.Errorf("no record %q", args[0])
		}
		if historyOpts.field != "" {
			fmt.Println(output.FormatField(r, historyOpts.field))
			return nil
		}
		return formatter.Format(os.Stdout, []model.Record{*r})
	}

	if historyOpts.field != "" {
		for i := range records {
			fmt.Println(output.FormatField(&records[i], historyOpts.field))
		}
	} else if err := formatter.Format(os.Stdout, records); err != nil {
		return err
	}

	if !historyOpts.follow {
		return nil
	}
	return followHistory(st, path, query, formatter, records)
}

// followHistory prints records that appear or change after the initial
// listing until interrupted.
func followHistory(st *store.Store, path string, query *historyQuery, formatter output.Formatter, initial []model.Record) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seen := make(map[string]string, len(initial))
	for _, r := range initial {
		seen[r.ID] = r.Status()
	}

	changes := st.Subscribe()
	watcher := store.NewHistoryWatcher(st, path, logger)
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			fresh := changedRecords(query.apply(st), seen)
			if len(fresh) == 0 {
				continue
			}
			if err := formatter.Format(os.Stdout, fresh); err != nil {
				return err
			}
		}
	}
}

// changedRecords returns the records whose status differs from seen, oldest
// first, and updates seen.
func changedRecords(records []model.Record, seen map[string]string) []model.Record {
	var out []model.Record
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if status, ok := seen[r.ID]; ok && status == r.Status() {
			continue
		}
		seen[r.ID] = r.Status()
		out = append(out, r)
	}
	return out
}
