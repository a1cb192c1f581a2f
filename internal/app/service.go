// Package service wires the stores, the scoring and reputation engines,
// the signal dispatcher and the flair consensus engine into one facade,
// plus the asynchronous reaction pipeline in front of them.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	eventqueue "github.com/spotline/spotline/internal/adapters/mq/queue"
	workerpool "github.com/spotline/spotline/internal/adapters/mq/worker"
	repository "github.com/spotline/spotline/internal/adapters/repository"
	"github.com/spotline/spotline/internal/domain/dedupe"
	"github.com/spotline/spotline/internal/domain/dispatch"
	"github.com/spotline/spotline/internal/domain/fault"
	"github.com/spotline/spotline/internal/domain/flair"
	"github.com/spotline/spotline/internal/domain/model"
	"github.com/spotline/spotline/internal/domain/reputation"
	"github.com/spotline/spotline/internal/domain/scoring"
	"github.com/spotline/spotline/pkg/logger"
	"github.com/spotline/spotline/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize  = 100000
	defaultDedupeSize = 50000
)

// Service implements the engagement engine operations.
type Service struct {
	mu sync.RWMutex

	// Stores
	sightings   *repository.SightingStore
	reactions   *repository.ReactionStore
	reputations *repository.ReputationStore
	signals     *repository.SignalStore
	flairs      *repository.FlairStore
	roles       *repository.RoleStore

	// Engines
	calc        *scoring.Calculator
	ledger      *reputation.Ledger
	dispatcher  *dispatch.Dispatcher
	flairEngine *flair.Engine

	// Pipeline
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	weights     scoring.Weights
	gravity     float64
	agePadHours float64

	// State
	started bool
	now     func() time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of reaction workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the reaction queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWeights overrides the reaction score weights.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithDecay overrides the hot score decay parameters.
func WithDecay(gravity, agePadHours float64) Option {
	return func(s *Service) {
		if gravity > 0 {
			s.gravity = gravity
		}
		if agePadHours > 0 {
			s.agePadHours = agePadHours
		}
	}
}

// WithClock sets the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		weights:     scoring.DefaultWeights(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the stores, engines and the reaction pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting engagement engine...")

	s.sightings = repository.NewSightingStore()
	s.reactions = repository.NewReactionStore()
	s.reputations = repository.NewReputationStore()
	s.signals = repository.NewSignalStore()
	s.flairs = repository.NewFlairStore()
	s.roles = repository.NewRoleStore()

	scoringOpts := []scoring.Option{scoring.WithWeights(s.weights)}
	if s.gravity > 0 || s.agePadHours > 0 {
		scoringOpts = append(scoringOpts, scoring.WithDecay(s.gravity, s.agePadHours))
	}
	s.calc = scoring.NewCalculator(scoringOpts...)
	s.ledger = reputation.NewLedger(s.reputations,
		reputation.WithLogger(s.logger.Named("reputation")),
		reputation.WithClock(s.now),
	)
	s.dispatcher = dispatch.NewDispatcher(s.signals, s.ledger,
		dispatch.WithLogger(s.logger.Named("dispatch")),
	)
	s.flairEngine = flair.NewEngine(s.flairs, s.sightings, s.roles,
		flair.WithLogger(s.logger.Named("flair")),
		flair.WithClock(s.now),
	)

	s.deduper = dedupe.NewRingDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "engagement engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the reaction pipeline.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping engagement engine...")

	if q, ok := s.eventQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	s.started = false
	s.logger.Info(ctx, "engagement engine stopped")
}

// RegisterSighting stores a new sighting, credits its reporter and
// returns the signals fired by the created trigger.
func (s *Service) RegisterSighting(ctx context.Context, sighting model.Sighting) ([]model.SignalID, error) {
	if err := s.sightings.Put(ctx, sighting); err != nil {
		return nil, fmt.Errorf("store sighting: %w", err)
	}

	if sighting.ReporterID != "" {
		if _, err := s.ledger.AddEvent(ctx, sighting.ReporterID, model.ReasonSightingCreated, sighting.ID.String()); err != nil {
			return nil, err
		}
	}

	return s.dispatcher.EvaluateAll(ctx, sighting, model.TriggerSightingCreated)
}

// EnqueueReaction submits a reaction event for asynchronous processing.
// It returns true when the event was accepted, either queued or
// recognized as a duplicate of an already-accepted event id, and false
// when the event is invalid or the queue is full. A full queue unrecords
// the id so the client can retry with the same one.
func (s *Service) EnqueueReaction(ctx context.Context, ev model.ReactionEvent) bool {
	if !ev.Type.Valid() {
		metrics.RecordReactionRejected(string(fault.CodeInvalidReaction))
		return false
	}

	if ev.EventID == "" {
		// Deduplication needs a client-supplied id to be meaningful: a
		// key derived from the reaction fields would also swallow a
		// legitimate re-add after a retraction. Generate a fresh id and
		// accept each such event as its own instance.
		ev.EventID = uuid.NewString()
	}

	if s.deduper.SeenAndRecord(ctx, ev.EventID) {
		metrics.RecordReactionDuplicate()
		s.logger.Debug(ctx, "duplicate reaction event, skipping",
			logger.String("eventID", ev.EventID),
		)
		return true
	}

	if !s.eventQueue.Enqueue(ctx, ev) {
		s.deduper.Unrecord(ctx, ev.EventID)
		return false
	}
	metrics.UpdateQueueSize(s.eventQueue.Len(ctx))
	return true
}

// ApplyReaction applies one reaction mutation synchronously: the ledger
// write, the score recomputation, the reporter's reputation accrual and
// the signal evaluation. Workers call this for queued events.
func (s *Service) ApplyReaction(ctx context.Context, ev model.ReactionEvent) error {
	if !ev.Type.Valid() {
		return fault.New(fault.CodeInvalidReaction, "unknown reaction type %q", ev.Type)
	}

	sighting, found, err := s.sightings.GetSighting(ctx, ev.SightingID)
	if err != nil {
		return fmt.Errorf("load sighting: %w", err)
	}
	if !found {
		return fault.New(fault.CodeNotFound, "sighting %s not found", ev.SightingID)
	}

	at := ev.At
	if at.IsZero() {
		at = s.now()
	}

	switch ev.Op {
	case model.ReactionOpRemove:
		if err := s.reactions.Remove(ctx, ev.SightingID, ev.UserID, ev.Type); err != nil {
			return err
		}
	default:
		r := model.Reaction{
			ID:         ev.EventID,
			SightingID: ev.SightingID,
			UserID:     ev.UserID,
			Type:       ev.Type,
			CreatedAt:  at,
		}
		if err := s.reactions.Add(ctx, r); err != nil {
			return err
		}
	}

	counts, err := s.reactions.GetCounts(ctx, ev.SightingID)
	if err != nil {
		return fmt.Errorf("load counts: %w", err)
	}

	scoreStart := time.Now()
	updated := s.calc.Recompute(sighting, counts, s.now())
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Milliseconds()))

	if err := s.sightings.Update(ctx, updated); err != nil {
		return fmt.Errorf("persist scores: %w", err)
	}

	if ev.Op == model.ReactionOpAdd || ev.Op == "" {
		s.accrueReporterReputation(ctx, updated, ev)
	}

	for _, trigger := range triggersFor(ev) {
		if _, err := s.dispatcher.EvaluateAll(ctx, updated, trigger); err != nil {
			return fmt.Errorf("evaluate signals: %w", err)
		}
	}

	return nil
}

// accrueReporterReputation credits the sighting's reporter for the
// reaction. Downvotes and spam reports carry no reputation delta.
// Ledger failures are logged, not escalated: the reaction itself already
// landed.
func (s *Service) accrueReporterReputation(ctx context.Context, sighting model.Sighting, ev model.ReactionEvent) {
	if sighting.ReporterID == "" || sighting.ReporterID == ev.UserID {
		return
	}

	var reason model.ReputationReason
	switch ev.Type {
	case model.ReactionUpvote:
		reason = model.ReasonSightingUpvoted
	case model.ReactionConfirmed:
		reason = model.ReasonSightingConfirmed
	case model.ReactionDisputed:
		reason = model.ReasonSightingDisputed
	default:
		return
	}

	if _, err := s.ledger.AddEvent(ctx, sighting.ReporterID, reason, sighting.ID.String()); err != nil {
		s.logger.Error(ctx, "reputation accrual failed",
			logger.String("sightingID", sighting.ID.String()),
			logger.Error(err),
		)
	}
}

// triggersFor maps a reaction event to the signal triggers it raises.
// Every reaction changes the score; confirms and disputes additionally
// raise their own trigger.
func triggersFor(ev model.ReactionEvent) []model.TriggerType {
	triggers := []model.TriggerType{model.TriggerScoreChanged}
	if ev.Op == model.ReactionOpRemove {
		return triggers
	}
	switch ev.Type {
	case model.ReactionConfirmed:
		triggers = append(triggers, model.TriggerSightingConfirmed)
	case model.ReactionDisputed:
		triggers = append(triggers, model.TriggerSightingDisputed)
	}
	return triggers
}

// CreateSignal stores a signal and credits its owner.
func (s *Service) CreateSignal(ctx context.Context, sig model.Signal) error {
	if err := s.signals.Put(ctx, sig); err != nil {
		return fmt.Errorf("store signal: %w", err)
	}
	_, err := s.ledger.AddEvent(ctx, sig.OwnerID, model.ReasonSignalCreated, sig.ID.String())
	return err
}

// SubscribeToSignal credits a subscriber of an existing signal.
func (s *Service) SubscribeToSignal(ctx context.Context, signalID model.SignalID, userID model.UserID) error {
	if _, found, err := s.signals.GetByID(ctx, signalID); err != nil {
		return fmt.Errorf("load signal: %w", err)
	} else if !found {
		return fault.New(fault.CodeNotFound, "signal %s not found", signalID)
	}
	_, err := s.ledger.AddEvent(ctx, userID, model.ReasonSignalSubscribed, signalID.String())
	return err
}

// VerifySignal marks a signal verified and credits its owner.
func (s *Service) VerifySignal(ctx context.Context, signalID model.SignalID) error {
	sig, found, err := s.signals.GetByID(ctx, signalID)
	if err != nil {
		return fmt.Errorf("load signal: %w", err)
	}
	if !found {
		return fault.New(fault.CodeNotFound, "signal %s not found", signalID)
	}
	sig.Verified = true
	if err := s.signals.Put(ctx, sig); err != nil {
		return fmt.Errorf("store signal: %w", err)
	}
	_, err = s.ledger.AddEvent(ctx, sig.OwnerID, model.ReasonSignalVerified, signalID.String())
	return err
}

// SetSignalActive flips a signal's active flag. Deactivated signals are
// skipped by every evaluation until reactivated.
func (s *Service) SetSignalActive(ctx context.Context, signalID model.SignalID, active bool) error {
	if _, found, err := s.signals.GetByID(ctx, signalID); err != nil {
		return fmt.Errorf("load signal: %w", err)
	} else if !found {
		return fault.New(fault.CodeNotFound, "signal %s not found", signalID)
	}
	return s.signals.SetActive(ctx, signalID, active)
}

// UpholdReport debits a sighting's reporter after moderation upholds a
// spam report against the sighting.
func (s *Service) UpholdReport(ctx context.Context, sightingID model.SightingID) error {
	sighting, found, err := s.sightings.GetSighting(ctx, sightingID)
	if err != nil {
		return fmt.Errorf("load sighting: %w", err)
	}
	if !found {
		return fault.New(fault.CodeNotFound, "sighting %s not found", sightingID)
	}
	if sighting.ReporterID == "" {
		return nil
	}
	_, err = s.ledger.AddEvent(ctx, sighting.ReporterID, model.ReasonReportUpheld, sightingID.String())
	return err
}

// EvaluateSignals runs the dispatcher for one sighting and trigger.
func (s *Service) EvaluateSignals(ctx context.Context, sightingID model.SightingID, trigger model.TriggerType) ([]model.SignalID, error) {
	sighting, found, err := s.sightings.GetSighting(ctx, sightingID)
	if err != nil {
		return nil, fmt.Errorf("load sighting: %w", err)
	}
	if !found {
		return nil, fault.New(fault.CodeNotFound, "sighting %s not found", sightingID)
	}
	return s.dispatcher.EvaluateAll(ctx, sighting, trigger)
}

// AssignFlair attaches a flair directly.
func (s *Service) AssignFlair(ctx context.Context, sightingID model.SightingID, flairID model.FlairID, actorID model.UserID) (model.SightingFlair, error) {
	return s.flairEngine.Assign(ctx, sightingID, flairID, actorID)
}

// SuggestFlair opens a consensus vote for a flair.
func (s *Service) SuggestFlair(ctx context.Context, sightingID model.SightingID, flairID model.FlairID, userID model.UserID) (model.FlairSuggestion, error) {
	return s.flairEngine.Suggest(ctx, sightingID, flairID, userID)
}

// VoteOnFlairSuggestion casts a vote on a pending suggestion.
func (s *Service) VoteOnFlairSuggestion(ctx context.Context, suggestionID model.SuggestionID, voterID model.UserID) (model.FlairSuggestion, error) {
	return s.flairEngine.Vote(ctx, suggestionID, voterID)
}

// RemoveFlair detaches a flair, subject to the removal permissions.
func (s *Service) RemoveFlair(ctx context.Context, sightingID model.SightingID, flairID model.FlairID, actorID model.UserID) error {
	return s.flairEngine.Remove(ctx, sightingID, flairID, actorID)
}

// SightingFlairs lists the flairs currently attached to a sighting.
func (s *Service) SightingFlairs(ctx context.Context, sightingID model.SightingID) ([]model.SightingFlair, error) {
	if _, found, err := s.sightings.GetSighting(ctx, sightingID); err != nil {
		return nil, fmt.Errorf("load sighting: %w", err)
	} else if !found {
		return nil, fault.New(fault.CodeNotFound, "sighting %s not found", sightingID)
	}
	return s.flairs.SightingFlairs(ctx, sightingID)
}

// AutoAssignFlairs applies rule-based flairs to one sighting.
func (s *Service) AutoAssignFlairs(ctx context.Context, sightingID model.SightingID) ([]model.FlairID, error) {
	return s.flairEngine.AutoAssign(ctx, sightingID)
}

// AutoAssignAllFlairs applies rule-based flairs across every tracked
// sighting and returns the number of assignments made.
func (s *Service) AutoAssignAllFlairs(ctx context.Context) (int, error) {
	all, err := s.sightings.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sightings: %w", err)
	}
	ids := make([]model.SightingID, len(all))
	for i, sighting := range all {
		ids[i] = sighting.ID
	}
	return s.flairEngine.AutoAssignBatch(ctx, ids)
}

// RefreshHotScores recomputes every sighting's hot score against the
// current time. Base scores are untouched; only the age decay moves.
func (s *Service) RefreshHotScores(ctx context.Context) error {
	all, err := s.sightings.All(ctx)
	if err != nil {
		return fmt.Errorf("list sightings: %w", err)
	}
	now := s.now()
	for _, sighting := range all {
		updated := s.calc.Recompute(sighting, sighting.Counts, now)
		if err := s.sightings.Update(ctx, updated); err != nil {
			return fmt.Errorf("persist scores: %w", err)
		}
	}
	return nil
}

// TopSightings returns up to n sightings ordered by hot score, highest
// first. Ties break on the sighting id for a stable order.
func (s *Service) TopSightings(ctx context.Context, n int) ([]model.Sighting, error) {
	all, err := s.sightings.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sightings: %w", err)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].HotScore != all[j].HotScore {
			return all[i].HotScore > all[j].HotScore
		}
		return all[i].ID < all[j].ID
	})
	if n > 0 && n < len(all) {
		all = all[:n]
	}
	return all, nil
}

// GetSighting returns one sighting.
func (s *Service) GetSighting(ctx context.Context, id model.SightingID) (model.Sighting, bool, error) {
	return s.sightings.GetSighting(ctx, id)
}

// TrustLevelFor resolves a user's current trust tier.
func (s *Service) TrustLevelFor(ctx context.Context, userID model.UserID) (model.TrustLevel, error) {
	return s.ledger.TrustLevelFor(ctx, userID)
}

// Reputations exposes the reputation store for administrative actions
// such as flipping the verified flag.
func (s *Service) Reputations() *repository.ReputationStore {
	return s.reputations
}

// Flairs exposes the flair store for taxonomy management.
func (s *Service) Flairs() *repository.FlairStore {
	return s.flairs
}

// Roles exposes the role store for moderator management.
func (s *Service) Roles() *repository.RoleStore {
	return s.roles
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		tracked := s.sightings.Count(ctx)

		stats["queueLength"] = queueLen
		stats["trackedSightings"] = tracked

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTrackedSightings(tracked)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
