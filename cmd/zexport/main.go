package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"zexport/internal/config"
	"zexport/internal/export"
	"zexport/internal/fieldlist"
	"zexport/internal/window"
	"zexport/internal/zendesk"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zexport: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		fieldsPath string
		credsPath  string
		dateExpr   string
		startTime  string
		endTime    string
		output     string
		makeXLSX   bool
		rawDump    bool
		preview    int
		chunkSize  int
		noColor    bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:     "zexport",
		Short:   "Export Zendesk tickets to CSV (and optional XLSX)",
		Version: "1.0",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := runOptions{
				fieldsPath: fieldsPath,
				credsPath:  credsPath,
				dateExpr:   dateExpr,
				startTime:  startTime,
				endTime:    endTime,
				output:     output,
				makeXLSX:   makeXLSX,
				rawDump:    rawDump,
				preview:    preview,
				chunkSize:  chunkSize,
				noColor:    noColor,
				verbose:    verbose,
			}
			return runExport(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&fieldsPath, "fields", "f", "", "path to CSV or XLSX file listing custom field names and IDs")
	flags.StringVarP(&credsPath, "creds", "c", "", "path to credentials .env (default: credentials.env in the working directory)")
	flags.StringVarP(&dateExpr, "date", "d", "", `date range expression, e.g. "2025-01-01 TO 2025-01-10 OR 2025-02-01 TO 2025-02-05"`)
	flags.StringVarP(&startTime, "start", "s", "", `start time in HH:MM AM/PM (e.g. "10:00 AM")`)
	flags.StringVarP(&endTime, "end", "e", "", `end time in HH:MM AM/PM (e.g. "06:30 PM")`)
	flags.StringVarP(&output, "output", "o", "", "output base filename without extension (default: autogenerated timestamp)")
	flags.BoolVar(&makeXLSX, "xlsx", false, "also export results to an XLSX workbook")
	flags.BoolVar(&rawDump, "raw-dump", false, "also write one raw JSON record per line alongside the CSV")
	flags.IntVar(&preview, "preview", 0, "print the first N exported rows as a table")
	flags.IntVar(&chunkSize, "chunk-size", 0, "tickets per resolver batch (0 uses the default)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored log output")
	flags.BoolVar(&verbose, "verbose", false, "enable debug logging")

	cobra.CheckErr(cmd.MarkFlagRequired("fields"))

	return cmd
}

type runOptions struct {
	fieldsPath string
	credsPath  string
	dateExpr   string
	startTime  string
	endTime    string
	output     string
	makeXLSX   bool
	rawDump    bool
	preview    int
	chunkSize  int
	noColor    bool
	verbose    bool
}

func runExport(cmd *cobra.Command, opts runOptions) error {
	out := cmd.OutOrStdout()
	useColor := resolveColorChoice(os.Stderr, opts.noColor)
	log := newLogger(useColor, opts.verbose)

	fields, err := fieldlist.Load(opts.fieldsPath)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Fields loaded:")
	fieldlist.WriteListing(out, fields)

	creds, err := config.Load(opts.credsPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client := zendesk.NewClient(creds.BaseURL(), creds.Email, creds.APIToken, log)

	userID, err := client.WhoAmI(ctx)
	if err != nil {
		return err
	}
	log.Debug().Int64("user_id", userID).Msg("authenticated")

	planner := window.NewPlanner()
	windows, err := planner.Plan(opts.dateExpr, opts.startTime, opts.endTime, time.Now().In(planner.Location))
	if err != nil {
		return err
	}
	for _, w := range windows {
		log.Info().Str("window", w.Label).
			Time("start_utc", w.StartUTC).Time("end_utc", w.EndUTC).
			Msg("planned window")
	}

	harvester := zendesk.NewHarvester(client, zendesk.HarvestOptions{ChunkSize: opts.chunkSize}, log)
	tickets, err := harvester.Harvest(ctx, windows)
	if err != nil {
		return err
	}

	resolver := zendesk.NewResolver(client)
	headers := export.Headers(fields)
	rows := make([]export.Row, 0, len(tickets))
	err = harvester.Process(ctx, tickets, resolver, func(chunk []zendesk.Ticket) error {
		for i := range chunk {
			rows = append(rows, export.Project(&chunk[i], fields, resolver))
		}
		return nil
	})
	if err != nil {
		return err
	}

	base := export.OutputBase(opts.output, time.Now())
	written, err := writeArtifacts(base, headers, rows, tickets, opts)
	if err != nil {
		return err
	}

	writeSummary(out, windows, len(tickets), written)

	if opts.preview > 0 {
		writePreview(out, rows, opts.preview, determineWidth(os.Stdout, 0))
	}
	return nil
}

// writeArtifacts writes the CSV and any optional outputs, returning the file
// names written. Output happens only after the harvest is complete, so a
// failed run leaves no partial files behind.
func writeArtifacts(base string, headers []string, rows []export.Row, tickets []zendesk.Ticket, opts runOptions) ([]string, error) {
	csvPath := base + ".csv"
	f, err := os.Create(csvPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", csvPath, err)
	}
	if err := export.WriteCSV(f, headers, rows); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", csvPath, err)
	}
	written := []string{csvPath}

	if opts.makeXLSX {
		xlsxPath := base + ".xlsx"
		if err := export.WriteXLSX(xlsxPath, headers, rows); err != nil {
			return nil, err
		}
		written = append(written, xlsxPath)
	}

	if opts.rawDump {
		dumpPath := base + "_raw.jsonl"
		df, err := os.Create(dumpPath)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", dumpPath, err)
		}
		if err := export.WriteRawDump(df, tickets); err != nil {
			df.Close()
			return nil, err
		}
		if err := df.Close(); err != nil {
			return nil, fmt.Errorf("close %s: %w", dumpPath, err)
		}
		written = append(written, dumpPath)
	}

	return written, nil
}

func writeSummary(out io.Writer, windows []window.Window, tickets int, files []string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Window", "From (UTC)", "To (UTC)"})
	for _, w := range windows {
		tw.AppendRow(table.Row{w.Label, w.StartUTC.Format(time.RFC3339), w.EndUTC.Format(time.RFC3339)})
	}
	tw.AppendFooter(table.Row{"tickets", tickets, strings.Join(files, ", ")})
	tw.Render()
}

// previewColumns keeps the terminal preview narrow enough to read.
var previewColumns = []string{"ID", "Organization", "Assignee", "Status", "Subject"}

// writePreview renders the first limit rows. Every cell is clipped to an
// equal share of width, so no column can push the table past the terminal.
func writePreview(out io.Writer, rows []export.Row, limit, width int) {
	if limit > len(rows) {
		limit = len(rows)
	}
	cellWidth := width / len(previewColumns)

	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(previewColumns))
	for _, col := range previewColumns {
		header = append(header, col)
	}
	tw.AppendHeader(header)

	for _, row := range rows[:limit] {
		cells := make(table.Row, 0, len(previewColumns))
		for _, col := range previewColumns {
			cells = append(cells, clipCell(cellText(row[col]), cellWidth))
		}
		tw.AppendRow(cells)
	}
	tw.Render()
}

func cellText(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case int64:
		return strconv.FormatInt(value, 10)
	default:
		return fmt.Sprint(value)
	}
}

// clipCell truncates text to the given display width, runewidth-aware.
func clipCell(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func determineWidth(out *os.File, wrap int) int {
	if wrap > 0 {
		return wrap
	}
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
			return v
		}
	}
	return 80
}

func newLogger(useColor, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !useColor,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func resolveColorChoice(out *os.File, forceNoColor bool) bool {
	if forceNoColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := out.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
