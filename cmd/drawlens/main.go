// Package main provides the CLI entrypoint for drawlens.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/drawlens/internal/browse"
	"github.com/verte-zerg/drawlens/internal/config"
	"github.com/verte-zerg/drawlens/internal/engine"
	"github.com/verte-zerg/drawlens/internal/export"
	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/loader"
	"github.com/verte-zerg/drawlens/internal/model"
	"github.com/verte-zerg/drawlens/internal/pipeline"
	"github.com/verte-zerg/drawlens/internal/query"
	"github.com/verte-zerg/drawlens/internal/stats"
	"github.com/verte-zerg/drawlens/internal/store"
)

const (
	defaultGame     = "playwhe"
	defaultSource   = "dir"
	defaultLogLevel = "warn"
	defaultSort     = "date"
	defaultOrder    = "desc"
	defaultRange    = "all"
)

var (
	gameID       string
	dataDir      string
	sqlitePath   string
	sourceKind   string
	manifestPath string
	logLevel     string
	configPath   string

	fileCfg config.FileConfig
)

type searchFlags struct {
	by       string
	value    string
	rng      string
	line     int
	sortBy   string
	order    string
	page     int
	pageSize int
	format   string
}

var (
	searchArgs searchFlags
	browseArgs searchFlags
	exportArgs searchFlags
	exportOut  string

	statsBy    string
	statsValue string
	statsTop   int

	tablePage     int
	tablePageSize int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "drawlens",
		Short:             "Query and summarize lottery draw history",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&gameID, "game", defaultGame, "game ID or file prefix")
	flags.StringVar(&dataDir, "data-dir", config.DefaultDataDir(), "directory of CSV tables")
	flags.StringVar(&sqlitePath, "sqlite", config.DefaultDBPath(), "SQLite database path")
	flags.StringVar(&sourceKind, "source", defaultSource, "table source: dir or sqlite")
	flags.StringVar(&manifestPath, "manifest", "", "YAML game manifest")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")

	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newTableCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	fileCfg, err = config.LoadConfig(config.ExpandHome(configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "game", &gameID, fileCfg.DefaultGame)
	applyStringConfig(cmd, "data-dir", &dataDir, fileCfg.DataDir)
	applyStringConfig(cmd, "sqlite", &sqlitePath, fileCfg.SQLitePath)
	applyStringConfig(cmd, "source", &sourceKind, fileCfg.Source)
	applyStringConfig(cmd, "manifest", &manifestPath, fileCfg.Manifest)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.LogLevel)

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	return nil
}

func catalog() (*game.Catalog, error) {
	c, err := game.LoadCatalog(config.ExpandHome(manifestPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return c, nil
}

func profile() (game.Profile, error) {
	c, err := catalog()
	if err != nil {
		return game.Profile{}, err
	}
	return c.Lookup(gameID)
}

// openEngine loads the selected game. The returned close func releases the
// table source.
func openEngine(ctx context.Context) (*engine.Engine, func(), error) {
	p, err := profile()
	if err != nil {
		return nil, nil, err
	}
	var (
		l       loader.Loader
		closeFn = func() {}
	)
	switch strings.ToLower(strings.TrimSpace(sourceKind)) {
	case "", "dir":
		l = loader.DirLoader{Dir: config.ExpandHome(dataDir)}
	case "sqlite":
		st, err := store.Open(config.ExpandHome(sqlitePath))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db: %w", err)
		}
		closeFn = func() {
			if cerr := st.Close(); cerr != nil {
				log.WithError(cerr).Warn("failed to close db")
			}
		}
		l = loader.SQLiteLoader{Store: st}
	default:
		return nil, nil, fmt.Errorf("--source must be dir or sqlite, got %q", sourceKind)
	}

	e, err := engine.Load(ctx, l, p)
	if err != nil {
		closeFn()
		if errors.Is(err, model.ErrLoadFailure) && errors.Is(err, loader.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w (run with --data-dir or --source sqlite)", err)
		}
		return nil, nil, err
	}
	return e, closeFn, nil
}

func newGamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List known games",
		Args:  cobra.NoArgs,
		RunE:  runGamesCmd,
	}
}

func runGamesCmd(cmd *cobra.Command, _ []string) error {
	c, err := catalog()
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(c.All()))
	for _, p := range c.All() {
		line := "-"
		if p.HasLine {
			line = strconv.Itoa(p.LineCount)
		}
		rows = append(rows, []string{p.ID, p.Name, p.Prefix, strconv.Itoa(p.DigitWidth), line})
	}
	return stats.RenderTable(cmd.OutOrStdout(), "Games", []string{"ID", "Name", "Prefix", "Digits", "Lines"}, rows)
}

func addSearchFlags(cmd *cobra.Command, f *searchFlags, paged bool) {
	cmd.Flags().StringVar(&f.by, "by", string(query.ByDrawNumber), "selector: "+selectorList())
	cmd.Flags().StringVar(&f.value, "value", "", "criterion value; omit --by and --value to select every draw")
	cmd.Flags().StringVar(&f.rng, "range", defaultRange, "trailing range: all, 1m, 3m, 6m, 12m")
	cmd.Flags().IntVar(&f.line, "line", 0, "keep only draws with this line")
	cmd.Flags().StringVar(&f.sortBy, "sort", defaultSort, "sort key: date or number")
	cmd.Flags().StringVar(&f.order, "order", defaultOrder, "sort order: asc or desc")
	if paged {
		cmd.Flags().IntVar(&f.page, "page", 1, "page number")
		cmd.Flags().IntVar(&f.pageSize, "page-size", pipeline.DefaultPageSize, "records per page")
	}
}

func applySearchConfig(cmd *cobra.Command, f *searchFlags) {
	applyStringConfig(cmd, "range", &f.rng, fileCfg.Search.Range)
	applyStringConfig(cmd, "sort", &f.sortBy, fileCfg.Search.Sort)
	applyStringConfig(cmd, "order", &f.order, fileCfg.Search.Order)
	if cmd.Flags().Lookup("page-size") != nil {
		applyIntConfig(cmd, "page-size", &f.pageSize, fileCfg.Search.PageSize)
	}
}

func selectorList() string {
	names := make([]string, 0, len(query.Selectors))
	for _, s := range query.Selectors {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// criteria returns the search criteria. all is true when neither --by nor
// --value was given; an explicit selector with an empty value is left for the
// query engine to reject.
func (f searchFlags) criteria(cmd *cobra.Command) (crit query.Criteria, all bool, err error) {
	if !cmd.Flags().Changed("by") && !cmd.Flags().Changed("value") {
		return query.Criteria{}, true, nil
	}
	sel, err := query.ParseSelector(f.by)
	if err != nil {
		return query.Criteria{}, false, err
	}
	return query.Criteria{Selector: sel, Value: strings.TrimSpace(f.value)}, false, nil
}

func (f searchFlags) options() (pipeline.Options, error) {
	months, err := pipeline.ParseRange(f.rng)
	if err != nil {
		return pipeline.Options{}, err
	}
	sortBy, err := pipeline.ParseSortKey(f.sortBy)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Months:   months,
		SortBy:   sortBy,
		Page:     f.page,
		PageSize: f.pageSize,
	}
	switch strings.ToLower(strings.TrimSpace(f.order)) {
	case "asc":
	case "desc", "":
		opts.Desc = true
	default:
		return pipeline.Options{}, fmt.Errorf("--order must be asc or desc, got %q", f.order)
	}
	if f.line < 0 {
		return pipeline.Options{}, fmt.Errorf("--line must be >= 0")
	}
	if f.line > 0 {
		line := f.line
		opts.Line = &line
	}
	return opts, nil
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search draws and print one page",
		Args:  cobra.NoArgs,
		RunE:  runSearchCmd,
	}
	addSearchFlags(cmd, &searchArgs, true)
	cmd.Flags().StringVar(&searchArgs.format, "format", "auto", "output format: auto, table or csv")
	return cmd
}

func runSearchCmd(cmd *cobra.Command, _ []string) error {
	applySearchConfig(cmd, &searchArgs)
	crit, all, err := searchArgs.criteria(cmd)
	if err != nil {
		return err
	}
	opts, err := searchArgs.options()
	if err != nil {
		return err
	}
	e, closeFn, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	var res engine.SearchResult
	label := "all draws"
	if all {
		res, err = e.All(opts)
	} else {
		res, err = e.Search(crit, opts)
		label = crit.String()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	asCSV, err := wantCSV(searchArgs.format, out)
	if err != nil {
		return err
	}
	if asCSV {
		if err := e.Export(out, res.Page.Records); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out)
		return err
	}
	title := fmt.Sprintf("%s %s: page %d of %d (%d draws)",
		e.Profile().Name, label, res.Page.Page, res.Page.TotalPages, res.Page.TotalCount)
	return stats.RenderTable(out, title, recordHeader(e.Profile()), recordRows(e.Profile(), res.Page.Records))
}

// wantCSV resolves --format. In auto mode CSV is written unless out is a terminal.
func wantCSV(format string, out io.Writer) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "table":
		return false, nil
	case "csv":
		return true, nil
	case "auto", "":
		f, ok := out.(*os.File)
		return !ok || !term.IsTerminal(int(f.Fd())), nil
	}
	return false, fmt.Errorf("--format must be auto, table or csv, got %q", format)
}

func recordHeader(p game.Profile) []string {
	header := []string{"Draw", "Date", "Numbers"}
	if p.HasLine {
		header = append(header, "Line")
	}
	return header
}

func recordRows(p game.Profile, records []model.DrawRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{strconv.Itoa(r.DrawNumber), r.RawDateText, strings.Join(r.Numbers, " ")}
		if p.HasLine {
			line := ""
			if r.Line != nil {
				line = strconv.Itoa(*r.Line)
			}
			row = append(row, line)
		}
		rows = append(rows, row)
	}
	return rows
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics for a search",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsBy, "by", string(query.ByWeekday), "selector: "+selectorList())
	cmd.Flags().StringVar(&statsValue, "value", "", "criterion value; omit to summarize every draw")
	cmd.Flags().IntVar(&statsTop, "top", stats.DefaultTopN, "number of top entries")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsTop <= 0 {
		return fmt.Errorf("--top must be > 0")
	}
	sel, err := query.ParseSelector(statsBy)
	if err != nil {
		return err
	}
	e, closeFn, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	records := e.Dataset().Records
	value := strings.TrimSpace(statsValue)
	if cmd.Flags().Changed("value") {
		crit := query.Criteria{Selector: sel, Value: value}
		res, err := e.Query(crit)
		if err != nil {
			return err
		}
		records = res.Records
		switch sel {
		case query.ByWeekday, query.ByDayOfMonth, query.ByHoliday:
			top, err := e.TopNumbers(sel, value, statsTop)
			if err != nil {
				return err
			}
			if err := stats.RenderFrequency(out, "Top Numbers for "+value, top); err != nil {
				return err
			}
		}
	}
	return stats.RenderReport(out, e.Report(records, statsTop))
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every draw matching a search as CSV",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	addSearchFlags(cmd, &exportArgs, false)
	cmd.Flags().StringVar(&exportOut, "out", "", "output file or directory (default: stdout)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	applySearchConfig(cmd, &exportArgs)
	crit, all, err := exportArgs.criteria(cmd)
	if err != nil {
		return err
	}
	opts, err := exportArgs.options()
	if err != nil {
		return err
	}
	e, closeFn, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	records := e.Dataset().Records
	if !all {
		res, err := e.Query(crit)
		if err != nil {
			return err
		}
		records = res.Records
	}
	opts.NumberSort = e.Profile().NumberSort
	records = pipeline.Process(records, opts)

	if exportOut == "" {
		if err := e.Export(cmd.OutOrStdout(), records); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout())
		return err
	}
	out := config.ExpandHome(exportOut)
	info, err := os.Stat(out)
	isDir := err == nil && info.IsDir()
	path := export.OutputPath(out, isDir, e.Profile().ID, time.Now())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := e.Export(f, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	log.WithFields(log.Fields{"path": path, "records": len(records)}).Info("export written")
	_, err = fmt.Fprintln(cmd.ErrOrStderr(), path)
	return err
}

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "table {pairs|trending|weekly}",
		Short:     "Show a pre-aggregated table",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"pairs", "trending", "weekly"},
		RunE:      runTableCmd,
	}
	cmd.Flags().IntVar(&tablePage, "page", 1, "page number")
	cmd.Flags().IntVar(&tablePageSize, "page-size", pipeline.DefaultPageSize, "rows per page")
	return cmd
}

func runTableCmd(cmd *cobra.Command, args []string) error {
	applyIntConfig(cmd, "page-size", &tablePageSize, fileCfg.Search.PageSize)
	if tablePage < 1 || tablePageSize < 1 {
		return fmt.Errorf("--page and --page-size must be > 0")
	}
	e, closeFn, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	tables := e.Tables()
	switch args[0] {
	case "pairs":
		rows := e.Pairs()
		title := fmt.Sprintf("Pairs: page %d of %d", tablePage, pipeline.TotalPages(len(rows), tablePageSize))
		return stats.RenderRanked(out, title, tables.Pairs.Header, pipeline.Slice(rows, tablePage, tablePageSize))
	case "trending":
		rows := e.Trending()
		title := fmt.Sprintf("Trending Numbers: page %d of %d", tablePage, pipeline.TotalPages(len(rows), tablePageSize))
		return stats.RenderRanked(out, title, tables.Trending.Header, pipeline.Slice(rows, tablePage, tablePageSize))
	default:
		title := fmt.Sprintf("%s: last %d weeks", e.Profile().Name, stats.WeeklyRows)
		return stats.RenderRows(out, title, tables.Weekly.Header, e.Weekly())
	}
}

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse draws interactively",
		Args:  cobra.NoArgs,
		RunE:  runBrowseCmd,
	}
	addSearchFlags(cmd, &browseArgs, true)
	return cmd
}

func runBrowseCmd(cmd *cobra.Command, _ []string) error {
	applySearchConfig(cmd, &browseArgs)
	crit, all, err := browseArgs.criteria(cmd)
	if err != nil {
		return err
	}
	opts, err := browseArgs.options()
	if err != nil {
		return err
	}
	e, closeFn, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	if !all {
		if _, err := e.Search(crit, opts); err != nil {
			return err
		}
	}
	program := tea.NewProgram(browse.NewModel(e, crit, opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.ExpandHome(configPath)
	if _, err := config.EnsureFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy the game's CSV tables into the SQLite database",
		Args:  cobra.NoArgs,
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, _ []string) error {
	p, err := profile()
	if err != nil {
		return err
	}
	st, err := store.Open(config.ExpandHome(sqlitePath))
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.WithError(cerr).Warn("failed to close db")
		}
	}()

	src := loader.DirLoader{Dir: config.ExpandHome(dataDir)}
	names, err := loader.Import(cmd.Context(), src, st, p)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: no tables for %s in %s", loader.ErrNotFound, p.ID, dataDir)
	}
	out := cmd.OutOrStdout()
	for _, name := range names {
		if _, err := fmt.Fprintln(out, name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
