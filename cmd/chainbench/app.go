package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"chainbench/adapters/db"
	"chainbench/adapters/excel"
	"chainbench/domain/core"
	"chainbench/domain/run"
	"chainbench/internal/bench"
	"chainbench/internal/config"
	"chainbench/internal/errors"
	"chainbench/internal/keygen"
	"chainbench/internal/logging"
	"chainbench/internal/profiling"
	"chainbench/internal/report"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"k8s.io/utils/clock"
)

const usageLine = "Usage: chainbench <input file> <number of lines>"

// App wires configuration, logging and output streams into the commands.
type App struct {
	Config *config.Config
	Logger logr.Logger
	Clock  clock.PassiveClock
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the command line in args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	// cobra falls back to os.Args when given nil.
	if args == nil {
		args = []string{}
	}

	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		a.reportError(err)
		return 1
	}
	return 0
}

func (a *App) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chainbench <input file> <number of lines>",
		Short: "Time a separate-chaining hash table over sorted, shuffled and reversed keys",
		Long: `Load up to <number of lines> keys from the first column of <input file>
(resolved against BENCH_DATA_DIR), then time inserting, searching and deleting
every key under sorted, shuffled and reverse-sorted orderings.

The first argument is matched against subcommand names first, so an input file
named summary, export, history, generate or help must be given with a path,
e.g. ./summary or src/summary.

Example: chainbench cars.csv 1000`,
		// Flag parsing is off so a negative line count such as -5 reaches the
		// benchmark as an argument. Subcommands still parse their own flags.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
				return cmd.Help()
			}
			if len(args) != 2 {
				return errors.Usage(fmt.Sprintf("expected 2 arguments, got %d", len(args)))
			}
			return a.runBenchmark(cmd.Context(), args[0], args[1])
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		a.newSummaryCmd(),
		a.newExportCmd(),
		a.newHistoryCmd(),
		a.newGenerateCmd(),
	)
	return root
}

func (a *App) runBenchmark(ctx context.Context, inputName, limitArg string) error {
	limit, err := strconv.Atoi(limitArg)
	if err != nil {
		return errors.InvalidInput(fmt.Sprintf("number of lines must be an integer, got %q", limitArg))
	}

	path := a.Config.InputPath(inputName)
	set, err := excel.LoadKeys(path, limit, a.Logger)
	if err != nil {
		return err
	}

	rng, seed := bench.NewRand(a.Config.Bench.Seed, func() int64 { return a.Clock.Now().UnixNano() })
	runner := bench.NewRunner(a.Logger)
	result, err := runner.Run(ctx, set.Keys, rng)
	if errors.Is(err, errors.CodeNoData) {
		fmt.Fprintln(a.Stdout, report.NoDataMessage)
		return nil
	}
	if err != nil {
		return err
	}

	if err := report.WriteText(a.Stdout, result); err != nil {
		return errors.WriteFailed("stdout", err)
	}

	ts := core.NewTimestamp(a.Clock.Now())
	resultLog := report.NewResultLog(a.Config.Results.LogPath)
	if err := resultLog.Append(ts, result); err != nil {
		fmt.Fprintf(a.Stderr, "Error writing %s: %v\n", resultLog.Path, rootCause(err))
	}

	if a.Config.Results.DSN != "" {
		manifest := run.NewManifest(path, limit, seed, ts)
		if err := a.saveRun(ctx, manifest, result); err != nil {
			fmt.Fprintf(a.Stderr, "Error saving run to result store: %v\n", err)
		}
	}

	a.Logger.V(logging.VERBOSE).Info("Benchmark complete",
		"input", path, "keys", result.Count, "seed", seed, "log", resultLog.Path)
	return nil
}

func (a *App) saveRun(ctx context.Context, manifest *run.Manifest, result *run.Result) error {
	store, err := db.Open(ctx, a.Config.Results.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveRun(ctx, manifest, result); err != nil {
		return err
	}
	a.Logger.V(logging.VERBOSE).Info("Run stored", "runID", manifest.RunID, "driver", store.Driver())
	return nil
}

func (a *App) loadSummaries() ([]run.Record, []profiling.Summary, error) {
	records, err := report.NewResultLog(a.Config.Results.LogPath).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	summaries, err := profiling.NewDistributionAnalyzer().Summarize(records)
	if err != nil {
		return nil, nil, err
	}
	return records, summaries, nil
}

func (a *App) newSummaryCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize logged timings per ordering and key count",
		Long: `Group every record in the results log by key count and ordering, and
report mean, median, spread and a 95% confidence interval for each phase.

Example: chainbench summary --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, summaries, err := a.loadSummaries()
			if err != nil {
				return err
			}
			switch format {
			case "text":
				return profiling.WriteText(a.Stdout, summaries)
			case "json":
				return profiling.WriteJSON(a.Stdout, summaries)
			default:
				return errors.InvalidInput(fmt.Sprintf("unknown format %q (want text or json)", format))
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func (a *App) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <out.xlsx>",
		Short: "Export the results log and its summary to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, summaries, err := a.loadSummaries()
			if err != nil {
				return err
			}
			if err := excel.WriteWorkbook(args[0], records, summaries); err != nil {
				return err
			}
			fmt.Fprintf(a.Stdout, "Exported %d records (%d groups) to %s\n", len(records), len(summaries), args[0])
			return nil
		},
	}
}

func (a *App) newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs from the result store (requires BENCH_RESULTS_DSN)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.Config.Results.DSN == "" {
				return errors.ConfigInvalid("BENCH_RESULTS_DSN is not set")
			}
			if limit <= 0 {
				return errors.InvalidInput("--limit must be positive")
			}

			store, err := db.Open(cmd.Context(), a.Config.Results.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			rows, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(a.Stdout, "No runs stored.")
				return nil
			}

			tw := tabwriter.NewWriter(a.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSOURCE\tRECORD")
			for _, row := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", row.RunID, row.Source, report.FormatRecord(row.Record))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of most recent runs to list")
	return cmd
}

func (a *App) newGenerateCmd() *cobra.Command {
	cfg := keygen.DefaultConfig()
	var out, format string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic key file to benchmark against",
		Long: `Generate a deterministic CSV or XLSX input file whose first column holds
car-style key names, some of them repeated.

Example: chainbench generate --rows 50000 --out src/cars.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = filepath.Join(a.Config.Data.Dir, "generated.csv")
			}

			fmtName := strings.ToLower(strings.TrimSpace(format))
			if fmtName == "" {
				fmtName = "csv"
				if strings.ToLower(filepath.Ext(out)) == ".xlsx" {
					fmtName = "xlsx"
				}
			}

			write := keygen.WriteCSV
			switch fmtName {
			case "csv":
			case "xlsx":
				write = keygen.WriteXLSX
			default:
				return errors.InvalidInput(fmt.Sprintf("unsupported format %q (want csv or xlsx)", fmtName))
			}

			ds, err := keygen.Generate(cfg)
			if err != nil {
				return errors.WithCode(errors.CodeInvalidInput, err)
			}
			if err := write(out, ds); err != nil {
				return errors.WriteFailed(out, err)
			}

			fmt.Fprintf(a.Stdout, "Generated %d rows in %s\n", len(ds.Rows), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.Rows, "rows", cfg.Rows, "Number of data rows")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed (deterministic)")
	cmd.Flags().Float64Var(&cfg.DuplicateRate, "duplicates", cfg.DuplicateRate, "Probability a row repeats an earlier key")
	cmd.Flags().StringVar(&out, "out", "", "Output file path (default <data dir>/generated.csv)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: csv or xlsx (default inferred from --out)")
	return cmd
}

func (a *App) reportError(err error) {
	switch errors.GetCode(err) {
	case errors.CodeUsage:
		fmt.Fprintln(a.Stderr, usageLine)
	case errors.CodeReadFailed:
		fmt.Fprintf(a.Stderr, "Error reading file: %v\n", rootCause(err))
	default:
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
	}
}

// rootCause strips AppError context down to the underlying failure, e.g. the
// *fs.PathError behind a READ_FAILED.
func rootCause(err error) error {
	var appErr *errors.AppError
	for stderrors.As(err, &appErr) && appErr.Cause != nil {
		err = appErr.Cause
	}
	return err
}
