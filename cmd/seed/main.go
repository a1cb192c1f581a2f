package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/spotline/spotline/internal/seed"
)

// Default configuration constants.
const (
	defaultNumSightings = 1000
	defaultReactionsPer = 20
	defaultNumUsers     = 200
	defaultTopN         = 50
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultDrainWait    = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		numSightings = flag.Int("sightings", defaultNumSightings, "Number of sightings to register")
		reactionsPer = flag.Int("reactions", defaultReactionsPer, "Upper bound of reactions per sighting")
		numUsers     = flag.Int("users", defaultNumUsers, "Size of the synthetic user pool")
		topN         = flag.Int("top", defaultTopN, "Number of top entries to rank at the end")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of pipeline workers")
		drainWait    = flag.Duration("drain", defaultDrainWait, "Maximum wait for the queue to drain")
		withSignals  = flag.Bool("signals", true, "Also create matching signals")
		withFlairs   = flag.Bool("flairs", true, "Also create a small flair taxonomy")
		autoAssign   = flag.Bool("auto-assign", true, "Run a flair auto-assign sweep at the end")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	if err := seed.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &seed.Config{
		NumSightings:   *numSightings,
		ReactionsPer:   *reactionsPer,
		NumUsers:       *numUsers,
		TopN:           *topN,
		Workers:        *workers,
		DrainWait:      *drainWait,
		Verbose:        *verbose,
		WithSignals:    *withSignals,
		WithFlairs:     *withFlairs,
		AutoAssignPass: *autoAssign,
	}

	if err := seed.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		return
	}
}
