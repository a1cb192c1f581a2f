package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	app "github.com/spotline/spotline/internal/app"
	"github.com/spotline/spotline/internal/domain/model"
	"github.com/spotline/spotline/pkg/logger"
)

// Run builds a service, floods it with synthetic sightings and
// reactions, waits for the pipeline to drain and reports the resulting
// ranking.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting seed run",
		logger.Int("sightings", config.NumSightings),
		logger.Int("reactionsPer", config.ReactionsPer),
		logger.Int("users", config.NumUsers),
		logger.Int("workers", config.Workers),
		logger.Int("topN", config.TopN))

	svc := app.New(
		app.WithWorkerCount(config.Workers),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("service start failed: %w", err)
	}
	defer svc.Stop()

	users := generateUsers(config.NumUsers)

	if config.WithFlairs {
		if err := seedFlairs(ctx, svc, stats); err != nil {
			return fmt.Errorf("flair seeding failed: %w", err)
		}
	}
	if config.WithSignals {
		if err := seedSignals(ctx, svc, users, stats); err != nil {
			return fmt.Errorf("signal seeding failed: %w", err)
		}
	}

	sightings, err := seedSightings(ctx, svc, config, users, stats)
	if err != nil {
		return fmt.Errorf("sighting seeding failed: %w", err)
	}

	seedReactions(ctx, svc, config, sightings, users, stats)

	// Let the worker pool drain the queue.
	logger.Get().Info(ctx, "waiting for reactions to be processed")
	waitForDrain(ctx, svc, config.DrainWait)

	if config.AutoAssignPass {
		applied, err := svc.AutoAssignAllFlairs(ctx)
		if err != nil {
			return fmt.Errorf("auto-assign sweep failed: %w", err)
		}
		stats.FlairsAutoApplied = applied
	}

	top, err := svc.TopSightings(ctx, config.TopN)
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}
	stats.RankedEntries = len(top)

	if err := verifyRanking(ctx, top); err != nil {
		return fmt.Errorf("ranking verification failed: %w", err)
	}
	if err := verifyReputations(ctx, svc, users); err != nil {
		return fmt.Errorf("reputation verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats, top, config.Verbose)

	logger.Get().Info(ctx, "seed run completed successfully")
	return nil
}

// seedSightings registers the configured number of sightings.
func seedSightings(ctx context.Context, svc *app.Service, config *Config, users []model.UserID, stats *Stats) ([]model.Sighting, error) {
	now := time.Now()
	sightings := make([]model.Sighting, 0, config.NumSightings)

	for i := 0; i < config.NumSightings; i++ {
		reporter := users[int(randInt(int64(len(users))))]
		s := generateSighting(i, reporter, now)
		if _, err := svc.RegisterSighting(ctx, s); err != nil {
			return nil, fmt.Errorf("register sighting %d: %w", i, err)
		}
		sightings = append(sightings, s)
	}

	stats.SightingsCreated = len(sightings)
	logger.Get().Info(ctx, "registered sightings", logger.Int("count", len(sightings)))
	return sightings, nil
}

// seedReactions enqueues a random batch of reactions per sighting.
func seedReactions(ctx context.Context, svc *app.Service, config *Config, sightings []model.Sighting, users []model.UserID, stats *Stats) {
	for _, s := range sightings {
		n := int(randInt(int64(config.ReactionsPer + 1)))
		for i := 0; i < n; i++ {
			ev := generateReaction(s, users)
			if svc.EnqueueReaction(ctx, ev) {
				stats.ReactionsEnqueued++
			} else {
				stats.ReactionsDropped++
			}
		}
	}

	logger.Get().Info(ctx, "enqueued reactions",
		logger.Int("enqueued", stats.ReactionsEnqueued),
		logger.Int("dropped", stats.ReactionsDropped))
}

// seedSignals creates a couple of always-on signals so the dispatcher
// has something to match against.
func seedSignals(ctx context.Context, svc *app.Service, users []model.UserID, stats *Stats) error {
	owner := users[0]
	minScore := 5.0

	signals := []model.Signal{
		{
			ID:       model.SignalID("signal_critical_" + uuid.NewString()[:8]),
			OwnerID:  owner,
			Target:   model.TargetGlobal,
			Triggers: []model.TriggerType{model.TriggerSightingCreated, model.TriggerSightingConfirmed},
			Conditions: model.SignalConditions{
				Importance: []model.Importance{model.ImportanceHigh, model.ImportanceCritical},
				Operator:   model.OperatorAnd,
			},
			IsActive: true,
		},
		{
			ID:       model.SignalID("signal_hot_" + uuid.NewString()[:8]),
			OwnerID:  owner,
			Target:   model.TargetGlobal,
			Triggers: []model.TriggerType{model.TriggerScoreChanged},
			Conditions: model.SignalConditions{
				MinScore: &minScore,
				Operator: model.OperatorAnd,
			},
			IsActive: true,
		},
	}

	for _, sig := range signals {
		if err := svc.CreateSignal(ctx, sig); err != nil {
			return err
		}
		stats.SignalsCreated++
	}
	return nil
}

// seedFlairs creates a small taxonomy including one auto-assign rule.
func seedFlairs(ctx context.Context, svc *app.Service, stats *Stats) error {
	trendingMin := 5.0
	minEngagement := 3

	flairs := []model.Flair{
		{
			ID:       model.FlairID("flair_notable"),
			Name:     "Notable",
			IsActive: true,
		},
		{
			ID:         model.FlairID("flair_wildlife_watch"),
			Name:       "Wildlife Watch",
			CategoryID: "wildlife",
			IsActive:   true,
		},
		{
			ID:       model.FlairID("flair_trending"),
			Name:     "Trending",
			IsActive: true,
			AutoAssign: &model.AutoAssignConditions{
				MinScore:      &trendingMin,
				MinEngagement: &minEngagement,
			},
		},
	}

	for _, f := range flairs {
		if err := svc.Flairs().PutFlair(ctx, f); err != nil {
			return err
		}
		stats.FlairsCreated++
	}
	return nil
}

// waitForDrain polls the queue length until it empties or the deadline
// passes.
func waitForDrain(ctx context.Context, svc *app.Service, maxWait time.Duration) {
	if maxWait <= 0 {
		maxWait = 10 * time.Second
	}
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		stats := svc.GetStats()
		if queueLen, ok := stats["queueLength"].(int); ok && queueLen == 0 {
			// A short grace period for in-flight events.
			time.Sleep(100 * time.Millisecond)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// displayFinalStats prints the final seed statistics.
func displayFinalStats(stats *Stats, top []model.Sighting, verbose bool) {
	ctx := context.Background()

	var reactionsPerSecond float64
	if stats.Duration > 0 {
		reactionsPerSecond = float64(stats.ReactionsEnqueued) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("sightingsCreated", stats.SightingsCreated),
		logger.Int("reactionsEnqueued", stats.ReactionsEnqueued),
		logger.Int("reactionsDropped", stats.ReactionsDropped),
		logger.Int("signalsCreated", stats.SignalsCreated),
		logger.Int("flairsCreated", stats.FlairsCreated),
		logger.Int("flairsAutoApplied", stats.FlairsAutoApplied),
		logger.Int("rankedEntries", stats.RankedEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("reactionsPerSecond", reactionsPerSecond))

	if !verbose {
		return
	}
	for i, s := range top {
		logger.Get().Info(ctx, "ranking entry",
			logger.Int("rank", i+1),
			logger.String("sightingID", s.ID.String()),
			logger.Float64("score", s.Score),
			logger.Float64("hotScore", s.HotScore))
	}
}
