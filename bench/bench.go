// Package bench measures traversal cost across list representations, from a
// plain mutable struct up to refcounted handles.
//
// Every run builds lists with values 0..n-1, verifies that each path sums to
// n(n-1)/2, then times warmup and measured loops per path.
package bench

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/frozenlist/config"
)

var log = commonlog.GetLogger("frozenlist.bench")

// cancelCheckNodes is roughly how many nodes are visited between context
// checks.
const cancelCheckNodes = 1 << 20

// checkInterval returns how many traversals of length nodes run between
// context checks. Long lists are checked after every traversal.
func checkInterval(length int) int {
	if length <= 0 || length >= cancelCheckNodes {
		return 1
	}
	return cancelCheckNodes / length
}

// Options controls a run.
type Options struct {
	Length     int
	Iterations int
	Warmup     int
	Limit      int
	Paths      []Path
}

// OptionsFromConfig converts the [bench] section into Options. An empty
// path list selects AllPaths.
func OptionsFromConfig(c *config.Config) (Options, error) {
	opts := Options{
		Length:     c.Bench.Length,
		Iterations: c.Bench.Iterations,
		Warmup:     c.Bench.Warmup,
		Limit:      c.Bench.Limit,
	}
	for _, s := range c.Bench.Paths {
		p, err := ParsePath(s)
		if err != nil {
			return Options{}, err
		}
		opts.Paths = append(opts.Paths, p)
	}
	if len(opts.Paths) == 0 {
		opts.Paths = AllPaths
	}
	return opts, nil
}

// Run builds, verifies and times every configured path.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", opts.Iterations)
	}
	paths := opts.Paths
	if len(paths) == 0 {
		paths = AllPaths
	}

	lists, err := BuildLists(opts.Length, opts.Limit)
	if err != nil {
		return nil, err
	}
	defer lists.Close()

	if err := lists.Verify(paths); err != nil {
		return nil, err
	}
	log.Infof("all %d paths produce %d (sum 0..%d)", len(paths), lists.Expected(), opts.Length-1)

	report := &Report{
		ID:         uuid.NewString(),
		Created:    time.Now().UTC(),
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		CPUs:       runtime.NumCPU(),
		Length:     opts.Length,
		Iterations: opts.Iterations,
		Expected:   lists.Expected(),
	}

	for _, p := range paths {
		if _, err := loop(ctx, lists, p, opts.Warmup); err != nil {
			return nil, err
		}
		elapsed, err := loop(ctx, lists, p, opts.Iterations)
		if err != nil {
			return nil, err
		}
		ns := float64(elapsed.Nanoseconds()) / float64(opts.Iterations)
		log.Debugf("%s: %.0f ns/traversal", p, ns)
		report.Results = append(report.Results, Result{Path: p, NsPerTraversal: ns})
	}

	report.computeRatios()
	return report, nil
}

// loop runs n traversals along p and returns the time they took. The
// context is polled between traversals, never inside one.
func loop(ctx context.Context, lists *Lists, p Path, n int) (time.Duration, error) {
	every := checkInterval(lists.Len())
	start := time.Now()
	for i := 0; i < n; i++ {
		if i%every == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if _, err := lists.Traverse(p); err != nil {
			return 0, fmt.Errorf("%s: %w", p, err)
		}
	}
	return time.Since(start), nil
}
