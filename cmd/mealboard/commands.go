package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/mealboard/internal/api"
	"github.com/verte-zerg/mealboard/internal/config"
	"github.com/verte-zerg/mealboard/internal/dataset"
	"github.com/verte-zerg/mealboard/internal/export"
	"github.com/verte-zerg/mealboard/internal/filter"
	"github.com/verte-zerg/mealboard/internal/stats"
	"github.com/verte-zerg/mealboard/internal/store"
)

var (
	reportJSON    bool
	reportPanel   string
	reportColor   bool
	reportHealthy bool

	exportOut string

	importName    string
	importReplace bool
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print every dashboard panel to stdout",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().BoolVar(&reportJSON, "json", false, "print JSON instead of text")
	cmd.Flags().StringVar(&reportPanel, "panel", "", "print a single panel by id")
	cmd.Flags().BoolVar(&reportColor, "color", false, "force colored plots")
	cmd.Flags().BoolVar(&reportHealthy, "healthy", false, "only healthy meals (--healthy=false for the rest)")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	warnUnknownDiets(ds)
	var src dataset.Table = ds
	if cmd.Flags().Changed("healthy") {
		if src, err = filter.Healthy(ds, reportHealthy); err != nil {
			return err
		}
	}
	report := stats.BuildReport(src, selection(ds), reportOptions())
	out := cmd.OutOrStdout()

	var single *stats.Panel
	if reportPanel != "" {
		p, ok := report.Panel(reportPanel)
		if !ok {
			return fmt.Errorf("unknown panel %q (available: %s)", reportPanel, strings.Join(stats.PanelIDs(), ", "))
		}
		single = &p
	}

	if reportJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if single != nil {
			return enc.Encode(single)
		}
		return enc.Encode(report)
	}

	opts := stats.RenderOptions{Width: outputWidth(), Height: settings.PlotHeight, Color: reportColor}
	if single != nil {
		return stats.RenderPanel(out, *single, opts)
	}
	return stats.RenderReport(out, report, opts)
}

func outputWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	return width
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dashboard to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVarP(&exportOut, "out", "o", "mealboard.xlsx", "output workbook path")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	warnUnknownDiets(ds)
	report := stats.BuildReport(ds, selection(ds), reportOptions())
	if err := export.Write(exportOut, ds, report); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	logErrf("Wrote %s\n", exportOut)
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve dashboard panels as JSON over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	warnUnknownDiets(ds)
	handler := api.NewHandler(ds, reportOptions(), settings.Diets)
	return api.Serve(cmd.Context(), settings.Address(), api.NewServer(handler, logger), logger)
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the --data file into the database",
		Args:  cobra.NoArgs,
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importName, "name", "", "dataset name (default: file name without extension)")
	cmd.Flags().BoolVar(&importReplace, "replace", false, "replace an existing dataset with the same name")
	return cmd
}

func runImportCmd(cmd *cobra.Command, _ []string) error {
	if settings.DataPath == "" {
		return errors.New("--data is required")
	}
	ds, err := loadFromFile(settings.DataPath)
	if err != nil {
		return err
	}
	name := importName
	if name == "" {
		base := filepath.Base(settings.DataPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if _, err := st.ImportDataset(cmd.Context(), name, ds, importReplace); err != nil {
		if errors.Is(err, store.ErrExists) {
			return fmt.Errorf("dataset %q already exists (use --replace to overwrite)", name)
		}
		return fmt.Errorf("failed to import: %w", err)
	}
	summary := ds.Summary()
	logErrf("Imported %d meals as %q (%d dropped, %d clipped)\n", summary.Kept, name, summary.Dropped, summary.Clipped)
	return nil
}

func newDatasetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List imported datasets",
		Args:  cobra.NoArgs,
		RunE:  runDatasetsCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "diets NAME",
		Short: "Show meal counts per diet for an imported dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  runDatasetDietsCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm NAME",
		Short: "Delete an imported dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  runDatasetRemoveCmd,
	})
	return cmd
}

func runDatasetsCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	infos, err := st.ListDatasets(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}
	if len(infos) == 0 {
		logErrln("No datasets imported. Import with: mealboard import --data <file>")
		return nil
	}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			fmt.Sprintf("%d", info.Rows),
			info.ImportedAt.Local().Format(time.DateTime),
			info.Source,
		})
	}
	return writeTable(cmd, []string{"Name", "Meals", "Imported", "Source"}, rows)
}

func runDatasetDietsCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	counts, err := st.ListDiets(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list diets: %w", err)
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Diet, fmt.Sprintf("%d", c.Meals)})
	}
	return writeTable(cmd, []string{"Diet", "Meals"}, rows)
}

func runDatasetRemoveCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.DeleteDataset(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	logErrf("Deleted %s\n", args[0])
	return nil
}

func writeTable(cmd *cobra.Command, headers []string, rows [][]string) error {
	for _, line := range stats.FormatTable(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		// Skip loading the config so a broken file can still be opened.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE:              runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.ResolveConfigPath(configPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# mealboard configuration
# Uncomment a value to enable it. CLI flags override config values.

# log-level = %q          # debug, info, warn or error

[dataset]
# path = "meals.csv"        # CSV or XLSX file
# sheet = "Sheet1"          # Worksheet for XLSX files (default: first sheet)
# db = %q
# required = ["diet_type", "calories", "protein", "fat", "carbs", "prep_time", "num_ingredients", "is_healthy", "vegan"]
# on-invalid = "reject"     # reject or drop rows with unparseable cells
# on-negative = "reject"    # reject, drop or clip negative numbers
# fold-case = false         # Case-insensitive header matching

[columns]
# "Cook Minutes" = "prep_time"

[dashboard]
# diets = ["Vegan", "Keto"] # Initial selection (default: all)
# bins = %d
# plot-height = %d

[serve]
# port = %d
`,
		config.DefaultLogLevel,
		config.DefaultDBPath(),
		config.DefaultBins,
		config.DefaultPlotHeight,
		config.DefaultPort,
	)
}
