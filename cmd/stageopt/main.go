// Command stageopt searches for the lightest multi-stage vehicle for a
// vehicle description and engine catalog, and prints the stage list.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/search"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/stage"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/config"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/logger"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
)

type options struct {
	vehiclePath   string
	catalogPath   string
	optimizerPath string
	samples       int
	sampler       string
	seed          int64
	workers       int
	exhaustive    bool
	sortByName    bool
	jsonOutput    bool
	logLevel      string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("stageopt", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.vehiclePath, "vehicle", "", "vehicle YAML (default: built-in two-stage Earth launcher)")
	fs.StringVar(&o.catalogPath, "engines", "config/engines.yaml", "engine catalog YAML")
	fs.StringVar(&o.optimizerPath, "optimizer", "", "optimizer YAML")
	fs.IntVar(&o.samples, "samples", 0, "number of split fractions to evaluate (overrides optimizer file)")
	fs.StringVar(&o.sampler, "sampler", "", "grid or random (overrides optimizer file)")
	fs.Int64Var(&o.seed, "seed", 0, "seed for the random sampler")
	fs.IntVar(&o.workers, "workers", 0, "worker goroutines (0 = one per CPU)")
	fs.BoolVar(&o.exhaustive, "exhaustive", false, "evaluate every engine count instead of stopping at the first feasible one")
	fs.BoolVar(&o.sortByName, "sort", false, "order the catalog by engine name before searching")
	fs.BoolVar(&o.jsonOutput, "json", false, "print the result as JSON")
	fs.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

type output struct {
	Vehicle models.VehicleRequirement `json:"vehicle"`
	Result  *search.Result            `json:"result"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	tuning, err := config.LoadOptimizer(o.optimizerPath)
	if err != nil {
		fmt.Fprintf(stderr, "stageopt: %v\n", err)
		return 1
	}
	if o.samples > 0 {
		tuning.Samples = o.samples
	}
	if o.sampler != "" {
		tuning.Sampler = o.sampler
	}
	if o.seed != 0 {
		tuning.Seed = o.seed
	}
	if o.workers > 0 {
		tuning.Workers = o.workers
	}
	if o.exhaustive {
		tuning.Exhaustive = true
	}
	if o.logLevel != "" {
		tuning.LogLevel = o.logLevel
	}
	logger.SetDefault(logger.NewText(tuning.LogLevel, stderr))

	catalogCfg, err := config.LoadCatalog(o.catalogPath)
	if err != nil {
		fmt.Fprintf(stderr, "stageopt: %v\n", err)
		return 1
	}
	catalog := catalogCfg.EngineCatalog()
	if o.sortByName {
		catalog = catalog.SortedByName()
	}

	vr := models.DefaultVehicle()
	if o.vehiclePath != "" {
		v, err := config.LoadVehicle(o.vehiclePath)
		if err != nil {
			fmt.Fprintf(stderr, "stageopt: %v\n", err)
			return 1
		}
		vr = v.Requirement()
		catalog, err = catalog.SelectKnown(v.Engines)
		if err != nil {
			fmt.Fprintf(stderr, "stageopt: vehicle %s: %v\n", o.vehiclePath, err)
			return 1
		}
	}

	sampler, err := search.NewSampler(tuning.Sampler, tuning.Seed)
	if err != nil {
		fmt.Fprintf(stderr, "stageopt: %v\n", err)
		return 1
	}
	searcher := search.NewSearcher(sampler, tuning.Workers).
		WithStageOptions(stage.Options{
			Exhaustive:     tuning.Exhaustive,
			MaxEngineCount: tuning.MaxEngineCount,
		})

	logger.Debug("searching",
		"stages", vr.StageCount,
		"engines", catalog.Len(),
		"samples", tuning.Samples,
		"sampler", sampler.Name(),
	)
	res, err := searcher.SearchBest(ctx, vr, catalog, tuning.Samples)
	if err != nil {
		fmt.Fprintf(stderr, "stageopt: %v\n", err)
		return 1
	}

	if o.jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(output{Vehicle: vr, Result: res}); err != nil {
			fmt.Fprintf(stderr, "stageopt: %v\n", err)
			return 1
		}
		return 0
	}
	fmt.Fprintln(stdout, renderResult(vr, res))
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
