package seed

import "time"

// Config holds configuration for the seed run.
type Config struct {
	NumSightings    int           // Number of sightings to register
	ReactionsPer    int           // Upper bound of reactions per sighting
	NumUsers        int           // Size of the synthetic user pool
	TopN            int           // Number of top entries to rank at the end
	Workers         int           // Worker count for the service pipeline
	DrainWait       time.Duration // How long to wait for the queue to drain
	Verbose         bool          // Enable verbose logging
	WithSignals     bool          // Also create matching signals
	WithFlairs      bool          // Also create a small flair taxonomy
	AutoAssignPass  bool          // Run a flair auto-assign sweep at the end
}

// Stats holds seed run statistics.
type Stats struct {
	SightingsCreated  int
	ReactionsEnqueued int
	ReactionsDropped  int
	SignalsCreated    int
	FlairsCreated     int
	FlairsAutoApplied int
	RankedEntries     int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
