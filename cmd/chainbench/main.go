// chainbench - times sum-of-values traversals across list representations
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/frozenlist/bench"
	"github.com/chazu/frozenlist/config"
	"github.com/chazu/frozenlist/store"
)

var log = commonlog.GetLogger("frozenlist.chainbench")

func main() {
	length := flag.Int("n", 0, "List length (overrides bench.length)")
	iterations := flag.Int("iterations", 0, "Timed traversals per path (overrides bench.iterations)")
	warmup := flag.Int("warmup", -1, "Warmup traversals per path (overrides bench.warmup)")
	limit := flag.Int("limit", 0, "Visit budget for the bounded path (overrides bench.limit)")
	paths := flag.String("paths", "", "Comma-separated paths: "+pathNames())
	configDir := flag.String("config", "", "Directory containing "+config.FileName+" (default: search upward from cwd)")
	dbPath := flag.String("db", "", "Save the report to this SQLite database")
	history := flag.Int("history", 0, "Print the last N saved runs and exit")
	verbosity := flag.Int("v", -1, "Log verbosity, 0 or more (overrides log.verbosity)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: chainbench [options]\n\n")
		fmt.Fprintf(os.Stderr, "Builds lists of n nodes with values 0..n-1 in every representation,\n")
		fmt.Fprintf(os.Stderr, "checks each sums to n(n-1)/2, then times the traversals.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  chainbench                          # defaults: 1000 nodes, 100000 iterations\n")
		fmt.Fprintf(os.Stderr, "  chainbench -n 10000 -paths frozen,handle\n")
		fmt.Fprintf(os.Stderr, "  chainbench -paths frozen,cross-frozen,cross-handle\n")
		fmt.Fprintf(os.Stderr, "  chainbench -v 0                     # quiet, even if the config is verbose\n")
		fmt.Fprintf(os.Stderr, "  chainbench -db runs.db              # save the report\n")
		fmt.Fprintf(os.Stderr, "  chainbench -db runs.db -history 5   # show saved runs\n")
	}
	flag.Parse()

	cfg, err := loadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags win over the file
	if *length > 0 {
		cfg.Bench.Length = *length
	}
	if *iterations > 0 {
		cfg.Bench.Iterations = *iterations
	}
	if *warmup >= 0 {
		cfg.Bench.Warmup = *warmup
	}
	if *limit > 0 {
		cfg.Bench.Limit = *limit
	}
	if *paths != "" {
		cfg.Bench.Paths = strings.Split(*paths, ",")
	}
	if *dbPath != "" {
		cfg.Store.Enabled = true
		cfg.Store.Path = *dbPath
		cfg.Dir = ""
	}
	if *verbosity >= 0 {
		cfg.Log.Verbosity = *verbosity
	}

	var logPath *string
	if cfg.Log.File != "" {
		logPath = &cfg.Log.File
	}
	commonlog.Configure(cfg.Log.Verbosity, logPath)

	if *history > 0 {
		if err := printHistory(cfg, *history); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	opts, err := bench.OptionsFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := bench.Run(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, bench.ErrWrongSum) {
			os.Exit(3)
		}
		os.Exit(1)
	}
	report.Print(os.Stdout)

	if cfg.Store.Enabled {
		if err := saveReport(cfg, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadConfig reads dir/frozenlist.toml when dir is set, otherwise searches
// upward from the working directory and falls back to defaults.
func loadConfig(dir string) (*config.Config, error) {
	if dir != "" {
		return config.Load(dir)
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return config.Default(), nil
	}
	log.Debugf("using %s/%s", cfg.Dir, config.FileName)
	return cfg, nil
}

func saveReport(cfg *config.Config, report *bench.Report) error {
	s, err := store.Open(cfg.StorePath())
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Save(report)
}

func printHistory(cfg *config.Config, n int) error {
	s, err := store.Open(cfg.StorePath())
	if err != nil {
		return err
	}
	defer s.Close()

	reports, err := s.List(n)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("No saved runs")
		return nil
	}
	for _, r := range reports {
		fmt.Printf("%s  %s  n=%d  iterations=%d\n", r.Created.Format("2006-01-02 15:04:05"), r.ID, r.Length, r.Iterations)
		for _, res := range r.Results {
			fmt.Printf("    %-10s %10.0f ns  %6.2fx\n", res.Path, res.NsPerTraversal, res.Ratio)
		}
	}
	return nil
}

func pathNames() string {
	names := make([]string, len(bench.AllPaths))
	for i, p := range bench.AllPaths {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}
