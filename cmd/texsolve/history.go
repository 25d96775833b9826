package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/texsolve/pkg/cli"
	"mercator-hq/texsolve/pkg/history"
	"mercator-hq/texsolve/pkg/history/export"
	"mercator-hq/texsolve/pkg/history/query"
	"mercator-hq/texsolve/pkg/history/recorder"
	"mercator-hq/texsolve/pkg/history/retention"
)

// queryFlags are the history filters shared by list and export.
type queryFlags struct {
	since     string
	until     string
	ids       []string
	status    string
	errorType string
	origin    string
	inputHash string
	limit     int
	offset    int
	sortBy    string
	sortOrder string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.since, "since", "", "only records at or after this time (RFC 3339 or a duration such as 24h)")
	cmd.Flags().StringVar(&f.until, "until", "", "only records at or before this time (RFC 3339 or a duration)")
	cmd.Flags().StringArrayVar(&f.ids, "id", nil, "filter by record ID (repeatable)")
	cmd.Flags().StringVar(&f.status, "status", "", "filter by status: ok, error")
	cmd.Flags().StringVar(&f.errorType, "error-type", "", "filter by error type (delimiter, cleaning, syntax, translation, ...)")
	cmd.Flags().StringVar(&f.origin, "origin", "", "filter by origin: cli, http, watch")
	cmd.Flags().StringVar(&f.inputHash, "input-hash", "", "filter by SHA-256 of the input")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "max results (default from config)")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "pagination offset")
	cmd.Flags().StringVar(&f.sortBy, "sort-by", "", "sort field: created_at, duration")
	cmd.Flags().StringVar(&f.sortOrder, "sort-order", "", "sort order: asc, desc")
}

// build turns the flags into a validated query.
func (f *queryFlags) build(root *rootOptions) (*history.Query, error) {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("since", f.since)
	set("until", f.until)
	set("status", f.status)
	set("error_type", f.errorType)
	set("origin", f.origin)
	set("input_hash", f.inputHash)
	set("sort_by", f.sortBy)
	set("sort_order", f.sortOrder)
	if f.limit != 0 {
		v.Set("limit", strconv.Itoa(f.limit))
	}
	if f.offset != 0 {
		v.Set("offset", strconv.Itoa(f.offset))
	}
	for _, id := range f.ids {
		v.Add("id", id)
	}

	q, err := query.FromValues(v, time.Now())
	if err != nil {
		return nil, &cli.UsageError{Message: err.Error()}
	}
	query.ApplyDefaults(q, &root.cfg.History.Query)
	if err := query.Validate(q, &root.cfg.History.Query); err != nil {
		return nil, &cli.UsageError{Message: err.Error()}
	}
	return q, nil
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the conversion history",
		Long: `Query, export and prune recorded conversions.

Subcommands:
  list    - List records matching filters
  show    - Show one record
  export  - Export records as JSON, JSON Lines or CSV
  prune   - Apply the retention policy now

Examples:
  # Failed conversions of the last day
  texsolve history list --status error --since 24h

  # Export syntax errors to CSV
  texsolve history export --error-type syntax --format csv -o syntax.csv`,
	}
	cmd.AddCommand(
		newHistoryListCmd(root),
		newHistoryShowCmd(root),
		newHistoryExportCmd(root),
		newHistoryPruneCmd(root),
	)
	return cmd
}

func newHistoryListCmd(root *rootOptions) *cobra.Command {
	var (
		filters queryFlags
		format  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded conversions",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := cli.ParseFormat(format)
			if err != nil {
				return err
			}
			q, err := filters.build(root)
			if err != nil {
				return err
			}

			store, err := root.requireHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Query(cmd.Context(), q)
			if err != nil {
				return cli.NewCommandError("history list", err)
			}

			if outFormat == cli.FormatJSON {
				total, err := store.Count(cmd.Context(), q)
				if err != nil {
					return cli.NewCommandError("history list", err)
				}
				return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), struct {
					Records []*history.Record `json:"records"`
					Total   int64             `json:"total"`
				}{records, total})
			}
			return cli.NewFormatter(outFormat).FormatTo(cmd.OutOrStdout(), recordTable(records))
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, csv")
	return cmd
}

// recordTable summarizes records, one row each.
func recordTable(records []*history.Record) *cli.Table {
	table := &cli.Table{Headers: []string{"id", "created_at", "origin", "status", "error_type", "duration", "input"}}
	for _, r := range records {
		table.AddRow(
			r.ID,
			r.CreatedAt.Format(time.RFC3339),
			r.Origin,
			r.Status,
			r.ErrorType,
			r.Duration.String(),
			recorder.TruncateString(r.Input, 40),
		)
	}
	return table
}

func newHistoryShowCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded conversion",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := cli.ParseFormat(format, cli.FormatText, cli.FormatJSON)
			if err != nil {
				return err
			}

			store, err := root.requireHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(cmd.Context(), args[0])
			if errors.Is(err, history.ErrNotFound) {
				return fmt.Errorf("no history record with id %q", args[0])
			}
			if err != nil {
				return cli.NewCommandError("history show", err)
			}

			if outFormat == cli.FormatJSON {
				return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), rec)
			}
			table := &cli.Table{}
			table.AddRow("id:", rec.ID)
			table.AddRow("request_id:", rec.RequestID)
			table.AddRow("created_at:", rec.CreatedAt.Format(time.RFC3339Nano))
			table.AddRow("origin:", rec.Origin)
			table.AddRow("status:", rec.Status)
			if rec.Failed() {
				table.AddRow("error_type:", rec.ErrorType)
				table.AddRow("error:", rec.ErrorMessage)
			}
			table.AddRow("duration:", rec.Duration.String())
			table.AddRow("clean_passes:", strconv.Itoa(rec.CleanPasses))
			table.AddRow("input_hash:", rec.InputHash)
			table.AddRow("input:", rec.Input)
			table.AddRow("cleaned:", rec.Cleaned)
			table.AddRow("output:", rec.Output)
			return cli.NewFormatter(cli.FormatText).FormatTo(cmd.OutOrStdout(), table)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	return cmd
}

func newHistoryExportCmd(root *rootOptions) *cobra.Command {
	var (
		filters queryFlags
		format  string
		pretty  bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded conversions",
		Long: `Export records matching the filters. Without --limit, up to the
configured maximum are exported.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := export.New(format, pretty)
			if err != nil {
				return &cli.UsageError{Message: err.Error()}
			}
			if filters.limit == 0 {
				filters.limit = root.cfg.History.Query.MaxLimit
			}
			q, err := filters.build(root)
			if err != nil {
				return err
			}

			store, err := root.requireHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Query(cmd.Context(), q)
			if err != nil {
				return cli.NewCommandError("history export", err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return cli.NewCommandError("history export", err)
				}
				defer f.Close()
				w = f
			}

			if err := exporter.Export(cmd.Context(), records, w); err != nil {
				return cli.NewCommandError("history export", err)
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d records to %s\n", len(records), output)
			}
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&format, "format", "json", "export format: json, jsonl, csv")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newHistoryPruneCmd(root *rootOptions) *cobra.Command {
	var (
		days       int
		maxRecords int64
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete records outside the retention policy",
		Long: `Delete records older than the retention period and the oldest records
beyond the record limit. Flags override the configured policy.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 || maxRecords < 0 {
				return cli.NewUsageError("--days and --max-records must be >= 0")
			}
			policy := root.cfg.History.Retention
			if cmd.Flags().Changed("days") {
				policy.Days = days
			}
			if cmd.Flags().Changed("max-records") {
				policy.MaxRecords = maxRecords
			}
			if policy.Days == 0 && policy.MaxRecords == 0 {
				return cli.NewUsageError("no retention limit: set --days or --max-records")
			}

			store, err := root.requireHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := retention.NewPruner(store, &policy).Prune(cmd.Context())
			if err != nil {
				return cli.NewCommandError("history prune", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d records\n", deleted)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "delete records older than this many days")
	cmd.Flags().Int64Var(&maxRecords, "max-records", 0, "keep at most this many records")
	return cmd
}
