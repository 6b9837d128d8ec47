package main

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/statemetrics/internal/config"
	"github.com/sells-group/statemetrics/internal/crime"
	"github.com/sells-group/statemetrics/internal/derive"
	"github.com/sells-group/statemetrics/internal/export"
	"github.com/sells-group/statemetrics/internal/fetcher"
	"github.com/sells-group/statemetrics/internal/housing"
	"github.com/sells-group/statemetrics/internal/model"
	"github.com/sells-group/statemetrics/internal/reference"
	"github.com/sells-group/statemetrics/internal/store"
	"github.com/sells-group/statemetrics/pkg/fbi"
)

var (
	runAPIKey  string
	runFormat  string
	runHousing string
	runOutDir  string
)

var validFormats = map[string]bool{
	"sqlite": true,
	"csv":    true,
	"json":   true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the one-shot merge pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Flags override config.
		if runAPIKey != "" {
			cfg.Crime.APIKey = runAPIKey
		}
		if runFormat != "" {
			cfg.Output.Format = runFormat
		}
		if runHousing != "" {
			cfg.Housing.Path = runHousing
		}
		if runOutDir != "" {
			cfg.Output.Dir = runOutDir
		}

		// Configuration errors are fatal before any I/O.
		window, err := validateRunConfig(cfg)
		if err != nil {
			return err
		}

		return runPipeline(ctx, cfg, window)
	},
}

func init() {
	runCmd.Flags().StringVar(&runAPIKey, "apikey", "", "Crime Data API key")
	runCmd.Flags().StringVar(&runFormat, "format", "", "output format: sqlite, csv, or json (default sqlite)")
	runCmd.Flags().StringVar(&runHousing, "housing", "", "path to the housing price file (.csv, .tsv, or .xlsx)")
	runCmd.Flags().StringVar(&runOutDir, "out", "", "output directory")
	rootCmd.AddCommand(runCmd)
}

// validateRunConfig checks the command surface before any I/O happens.
func validateRunConfig(c *config.Config) (model.Window, error) {
	if !validFormats[c.Output.Format] {
		return model.Window{}, eris.Errorf("invalid output format %q (want sqlite, csv, or json)", c.Output.Format)
	}
	if strings.TrimSpace(c.Crime.APIKey) == "" {
		return model.Window{}, eris.New("crime API key is required (--apikey or STATEMETRICS_CRIME_API_KEY)")
	}
	return model.ParseWindow(c.Window.From, c.Window.To)
}

// runPipeline executes the batch: load and aggregate both sources, merge,
// derive, then write the selected artifacts. A failed crime fetch aborts
// before any output is produced.
func runPipeline(ctx context.Context, cfg *config.Config, window model.Window) error {
	var warns model.Warnings

	refs, err := reference.List(cfg.Reference.IncludeDC)
	if err != nil {
		return err
	}

	housingPath := cfg.Housing.Path
	if strings.HasPrefix(housingPath, "http://") || strings.HasPrefix(housingPath, "https://") {
		housingPath, err = downloadHousing(ctx, housingPath)
		if err != nil {
			return eris.Wrap(err, "download housing data")
		}
	}

	housingRows, err := housing.Load(ctx, housingPath, cfg.Housing.SheetName, &warns)
	if err != nil {
		return eris.Wrap(err, "load housing data")
	}
	housingAvgs := housing.Aggregate(housingRows, window)
	zap.L().Info("aggregated housing data", zap.Int("states", len(housingAvgs)))

	client := fbi.NewClient(cfg.Crime.APIKey, fbi.WithBaseURL(cfg.Crime.BaseURL))
	crimeRows, err := client.Summarized(ctx, window.FromMonthYear(), window.ToMonthYear())
	if err != nil {
		return eris.Wrap(err, "crime source unavailable")
	}
	crimeSums := crime.Aggregate(crimeRows, window, &warns)
	zap.L().Info("aggregated crime data", zap.Int("states", len(crimeSums)))

	records := derive.Merge(refs, housingAvgs, crimeSums, &warns)
	table := derive.BuildTable(records, &warns)

	if err := writeOutputs(ctx, cfg, table); err != nil {
		return err
	}

	warns.LogSummary()
	zap.L().Info("run complete",
		zap.String("run_id", table.RunID),
		zap.Int("states", len(table.Records)),
		zap.String("format", cfg.Output.Format),
	)
	return nil
}

// downloadHousing fetches a remote housing export into a temp file and
// returns its path. The extension is preserved so the loader can route it.
func downloadHousing(ctx context.Context, rawURL string) (string, error) {
	dir, err := os.MkdirTemp("", "statemetrics-housing-")
	if err != nil {
		return "", eris.Wrap(err, "create temp dir")
	}

	name := "housing.csv"
	if u, err := url.Parse(rawURL); err == nil {
		if base := filepath.Base(u.Path); base != "" && base != "." && base != "/" {
			name = base
		}
	}
	path := filepath.Join(dir, name)

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{MaxAttempts: 3})
	n, err := f.DownloadToFile(ctx, rawURL, path)
	if err != nil {
		return "", err
	}
	zap.L().Info("downloaded housing file",
		zap.String("url", rawURL),
		zap.Int64("bytes", n),
	)
	return path, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create output dir %s", dir)
	}
	return nil
}

func writeOutputs(ctx context.Context, cfg *config.Config, table *model.ResultTable) error {
	if err := ensureDir(cfg.Output.Dir); err != nil {
		return err
	}

	switch cfg.Output.Format {
	case "sqlite":
		storeCfg := cfg.Store
		if storeCfg.Driver != "postgres" && storeCfg.DatabaseURL == "" {
			storeCfg.DatabaseURL = filepath.Join(cfg.Output.Dir, "final_data.db")
		}
		st, err := store.New(ctx, storeCfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}
		if err := st.WriteResult(ctx, table); err != nil {
			return err
		}
	case "csv":
		if err := export.WriteCSV(table, filepath.Join(cfg.Output.Dir, "merged_data.csv")); err != nil {
			return err
		}
	case "json":
		if err := export.WriteJSON(table, filepath.Join(cfg.Output.Dir, "merged_data.json")); err != nil {
			return err
		}
	}

	if cfg.Output.Plot {
		plotPath := filepath.Join(cfg.Output.Dir, "crime_vs_price_scatter.png")
		if err := export.WriteScatterPlot(table, plotPath); err != nil {
			return err
		}
	}

	return nil
}
