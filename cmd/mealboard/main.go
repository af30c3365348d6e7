// Package main provides the CLI entrypoint for mealboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mealboard/internal/config"
	"github.com/verte-zerg/mealboard/internal/dataset"
	"github.com/verte-zerg/mealboard/internal/filter"
	"github.com/verte-zerg/mealboard/internal/stats"
	"github.com/verte-zerg/mealboard/internal/statsui"
	"github.com/verte-zerg/mealboard/internal/store"
)

var (
	configPath string
	fromDB     string
	settings   = config.DefaultSettings()
	logger     = slog.Default()
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "mealboard",
		Short:             "Meal dataset dashboard",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: resolveSettings,
		RunE:              runDashboardCmd,
	}

	defaults := config.DefaultSettings()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default: $"+config.EnvConfigPath+" or XDG config)")
	flags.StringVar(&settings.DataPath, config.FlagData, "", "dataset file (.csv or .xlsx)")
	flags.StringVar(&settings.Sheet, config.FlagSheet, "", "worksheet name for .xlsx files (default: first sheet)")
	flags.StringVar(&settings.DBPath, config.FlagDB, defaults.DBPath, "SQLite database path")
	flags.StringVar(&fromDB, "from-db", "", "load an imported dataset by name instead of --data")
	flags.StringSliceVar(&settings.Diets, config.FlagDiet, nil, "diet types to select (default: all)")
	flags.IntVar(&settings.Bins, config.FlagBins, defaults.Bins, "histogram bins")
	flags.IntVar(&settings.PlotHeight, config.FlagPlotHeight, defaults.PlotHeight, "scatter plot height in rows")
	flags.IntVar(&settings.Port, config.FlagPort, defaults.Port, "HTTP port for serve")
	flags.StringVar(&settings.LogLevel, config.FlagLogLevel, defaults.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&settings.OnInvalid, config.FlagOnInvalid, defaults.OnInvalid, "bad cell policy (reject, drop)")
	flags.StringVar(&settings.OnNegative, config.FlagOnNegative, defaults.OnNegative, "negative value policy (reject, drop, clip)")
	flags.BoolVar(&settings.FoldCase, config.FlagFoldCase, false, "match column headers case-insensitively")

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newDatasetsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// resolveSettings layers the config file under explicit flags and sets up logging.
func resolveSettings(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.ResolveConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings.Apply(fileCfg, cmd.Flags().Changed)
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: settings.SlogLevel()}))
	slog.SetDefault(logger)
	return nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	warnUnknownDiets(ds)
	model := statsui.NewModel(ds, statsui.Config{
		Diets:      settings.Diets,
		Bins:       settings.Bins,
		PlotHeight: settings.PlotHeight,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

// loadDataset reads the dataset named by --from-db or --data and appends derived columns.
func loadDataset(ctx context.Context) (*dataset.Dataset, error) {
	var (
		ds  *dataset.Dataset
		err error
	)
	switch {
	case fromDB != "":
		ds, err = loadFromStore(ctx, fromDB)
	case settings.DataPath != "":
		ds, err = loadFromFile(settings.DataPath)
	default:
		return nil, errors.New("no dataset: pass --data, --from-db or set dataset.path in the config")
	}
	if err != nil {
		return nil, err
	}
	if err := stats.AppendCalPerMin(ds); err != nil {
		return nil, fmt.Errorf("failed to derive cal_per_min: %w", err)
	}
	summary := ds.Summary()
	logger.Debug("dataset loaded",
		slog.String("source", summary.Source),
		slog.Int("read", summary.Read),
		slog.Int("kept", summary.Kept),
		slog.Int("dropped", summary.Dropped),
		slog.Int("clipped", summary.Clipped))
	if summary.Dropped > 0 {
		logErrf("warning: dropped %d of %d rows with invalid values\n", summary.Dropped, summary.Read)
	}
	if summary.Clipped > 0 {
		logErrf("warning: clipped negative values in %d rows\n", summary.Clipped)
	}
	return ds, nil
}

func loadFromFile(path string) (*dataset.Dataset, error) {
	opts := settings.DatasetOptions()
	var (
		ds  *dataset.Dataset
		err error
	)
	if settings.Sheet != "" && isWorkbook(path) {
		ds, err = dataset.LoadXLSX(path, settings.Sheet, opts)
	} else {
		ds, err = dataset.Load(path, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return ds, nil
}

func loadFromStore(ctx context.Context, name string) (*dataset.Dataset, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore(st)
	ds, _, err := st.LoadDataset(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logErrln("Run: mealboard datasets")
		}
		return nil, fmt.Errorf("failed to load dataset %q: %w", name, err)
	}
	return ds, nil
}

func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

func openStore() (*store.Store, error) {
	st, err := store.Open(settings.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

// selection returns the configured diets, or every diet when none are configured.
func selection(ds dataset.Table) filter.Selection {
	if len(settings.Diets) == 0 {
		return filter.All(ds)
	}
	return filter.NewSelection(settings.Diets...)
}

func warnUnknownDiets(ds dataset.Table) {
	if len(settings.Diets) == 0 {
		return
	}
	sel := filter.NewSelection(settings.Diets...)
	observed := filter.NewSelection(filter.Observed(ds, sel)...)
	for _, diet := range sel.Values() {
		if !observed.Contains(diet) {
			logErrf("warning: diet %q does not appear in the dataset\n", diet)
		}
	}
}

func reportOptions() stats.Options {
	return stats.Options{Bins: settings.Bins}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
