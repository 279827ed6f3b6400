package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/moznion/go-optional"
	engine "github.com/rxtech-lab/pairbacktest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/pairbacktest/internal/backtest/engine/engine_v1/commission"
	"github.com/rxtech-lab/pairbacktest/internal/dataloader"
	"github.com/rxtech-lab/pairbacktest/internal/datasource"
	"github.com/rxtech-lab/pairbacktest/internal/logger"
	"github.com/rxtech-lab/pairbacktest/internal/types"
	"github.com/rxtech-lab/pairbacktest/internal/validation"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// runAction loads bars, runs the z-score pair strategy over them, prints the
// summary, and optionally persists the results as Parquet.
func runAction(ctx context.Context, cmd *cli.Command) error {
	config := engine.EmptyConfig()

	if configPath := cmd.String("config"); configPath != "" {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if err := yaml.Unmarshal(raw, &config); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	bars, err := dataloader.LoadBars(cmd.String("data"))
	if err != nil {
		return fmt.Errorf("failed to load bars: %w", err)
	}

	checker := validation.NewChecker(validation.WithMaxGapDays(int(cmd.Int("max-gap"))))
	if err := checker.CheckAll(bars); err != nil {
		return fmt.Errorf("data quality check failed: %w", err)
	}

	view, err := datasource.NewPointInTimeView(bars, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to build view: %w", err)
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	strat := newZScoreStrategy(
		cmd.String("symbol-a"),
		cmd.String("symbol-b"),
		cmd.Float("hedge"),
		int(cmd.Int("lookback")),
		cmd.Float("entry-z"),
		cmd.Float("exit-z"),
	)

	execution := engine.NewClosePriceExecution(config.PriceField,
		commission.GetCommissionModel(config.Commission))

	runner, err := engine.NewRunner(config, strat, execution, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	var bar *progressbar.ProgressBar

	callback := engine.OnDayCallback(func(dayIndex, totalDays int, date time.Time) {
		if bar == nil {
			bar = progressbar.Default(int64(totalDays), "backtesting")
		}

		bar.Add(1)
	})

	result, err := runner.Run(view, optional.Some(callback))
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	fmt.Println()
	fmt.Print(result.Summary())

	if output := cmd.String("output"); output != "" {
		if err := writeResults(result, output, appLogger); err != nil {
			return err
		}
	}

	return nil
}

func writeResults(result *engine.BacktestResult, output string, appLogger *logger.Logger) error {
	store, err := engine.NewResultStore(appLogger)
	if err != nil {
		return fmt.Errorf("failed to create result store: %w", err)
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize result store: %w", err)
	}

	if err := store.Save(result); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	if err := store.Write(output); err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}

	if err := types.WritePerformanceMetrics(filepath.Join(output, "metrics.yaml"), result.Metrics); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}

	return nil
}

// checkAction runs data-quality checks over a CSV file and reports every
// violation found.
func checkAction(ctx context.Context, cmd *cli.Command) error {
	bars, err := dataloader.LoadBars(cmd.String("data"))
	if err != nil {
		return fmt.Errorf("failed to load bars: %w", err)
	}

	checker := validation.NewChecker(
		validation.WithMode(validation.ModeCollect),
		validation.WithMaxGapDays(int(cmd.Int("max-gap"))),
	)

	violations := checker.Check(bars)
	if len(violations) == 0 {
		fmt.Printf("OK: %d bars, no quality violations\n", len(bars))

		return nil
	}

	for _, violation := range violations {
		fmt.Printf("FAIL: %v\n", violation)
	}

	return fmt.Errorf("%d quality violations", len(violations))
}

// schemaAction prints the JSON schema for the backtest config file.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	config := engine.EmptyConfig()

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Bias-safe pair trading backtests over daily bar data",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a z-score pair backtest over a CSV file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to the bar data CSV file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the YAML config file",
					},
					&cli.StringFlag{
						Name:     "symbol-a",
						Usage:    "First leg of the pair",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "symbol-b",
						Usage:    "Second leg of the pair",
						Required: true,
					},
					&cli.FloatFlag{
						Name:  "hedge",
						Usage: "Hedge ratio (short notional per unit of long notional)",
						Value: 1.0,
					},
					&cli.IntFlag{
						Name:  "lookback",
						Usage: "Rolling window length for the spread z-score",
						Value: 20,
					},
					&cli.FloatFlag{
						Name:  "entry-z",
						Usage: "Open the pair when |z| exceeds this threshold",
						Value: 2.0,
					},
					&cli.FloatFlag{
						Name:  "exit-z",
						Usage: "Close the pair when |z| falls below this threshold",
						Value: 0.5,
					},
					&cli.IntFlag{
						Name:  "max-gap",
						Usage: "Maximum calendar gap in days before data is rejected (0 disables)",
						Value: 0,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory to export results (Parquet + metrics YAML)",
					},
				},
				Action: runAction,
			},
			{
				Name:  "check",
				Usage: "Run data-quality checks over a CSV file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to the bar data CSV file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-gap",
						Usage: "Maximum calendar gap in days before data is rejected (0 disables)",
						Value: 0,
					},
				},
				Action: checkAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema for the config file",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
