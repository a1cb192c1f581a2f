// Package flair implements the three paths by which a tag gets attached
// to a sighting: direct assignment by the reporter or a moderator,
// community consensus voting with an engagement-scaled threshold, and
// rule-based auto-assignment from numeric, age and engagement bounds.
package flair

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spotline/spotline/internal/domain/fault"
	"github.com/spotline/spotline/internal/domain/model"
	"github.com/spotline/spotline/pkg/logger"
	"github.com/spotline/spotline/pkg/metrics"
)

// Consensus threshold constants. A suggestion auto-applies once its vote
// count reaches baseConsensusVotes plus one extra vote per
// engagementStep total reactions on the sighting, so a handful of votes
// cannot tag a very active post.
const (
	baseConsensusVotes = 3
	engagementStep     = 10
)

// Store is the flair persistence contract.
type Store interface {
	// GetFlair returns a flair by id, or found=false.
	GetFlair(ctx context.Context, id model.FlairID) (model.Flair, bool, error)

	// ActiveFlairs returns all flairs with IsActive set.
	ActiveFlairs(ctx context.Context) ([]model.Flair, error)

	// HasFlair reports whether the flair is already assigned to the sighting.
	HasFlair(ctx context.Context, sightingID model.SightingID, flairID model.FlairID) (bool, error)

	// Assign persists an assignment record.
	Assign(ctx context.Context, sf model.SightingFlair) error

	// Assignment returns the assignment record, or found=false.
	Assignment(ctx context.Context, sightingID model.SightingID, flairID model.FlairID) (model.SightingFlair, bool, error)

	// Unassign removes an assignment record.
	Unassign(ctx context.Context, sightingID model.SightingID, flairID model.FlairID) error

	// CreateSuggestion persists a new suggestion.
	CreateSuggestion(ctx context.Context, sg model.FlairSuggestion) error

	// Suggestion returns a suggestion by id, or found=false.
	Suggestion(ctx context.Context, id model.SuggestionID) (model.FlairSuggestion, bool, error)

	// SuggestionForPair returns the suggestion for a (sighting, flair)
	// pair regardless of status, or found=false.
	SuggestionForPair(ctx context.Context, sightingID model.SightingID, flairID model.FlairID) (model.FlairSuggestion, bool, error)

	// UpdateSuggestionVotes overwrites a suggestion's vote count.
	UpdateSuggestionVotes(ctx context.Context, id model.SuggestionID, votes int) error

	// UpdateSuggestionStatus overwrites a suggestion's status.
	UpdateSuggestionStatus(ctx context.Context, id model.SuggestionID, status model.SuggestionStatus) error

	// HasVoted reports whether the user already voted on the suggestion.
	// The suggester's implicit self-vote counts as a vote.
	HasVoted(ctx context.Context, id model.SuggestionID, userID model.UserID) (bool, error)

	// RecordVote marks the user as having voted on the suggestion.
	RecordVote(ctx context.Context, id model.SuggestionID, userID model.UserID) error
}

// SightingSource loads sightings for existence and engagement checks.
type SightingSource interface {
	GetSighting(ctx context.Context, id model.SightingID) (model.Sighting, bool, error)
}

// Roles answers moderator checks for assignment and removal permissions.
type Roles interface {
	IsModerator(ctx context.Context, userID model.UserID) (bool, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine runs the flair assignment workflows.
type Engine struct {
	store     Store
	sightings SightingSource
	roles     Roles
	now       func() time.Time
	logger    logger.Logger
}

// NewEngine creates a flair engine over the given collaborators.
func NewEngine(store Store, sightings SightingSource, roles Roles, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		sightings: sightings,
		roles:     roles,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("flair")
	}

	return e
}

// ShouldAutoApply reports whether voteCount crosses the engagement-scaled
// consensus threshold.
func ShouldAutoApply(voteCount, totalEngagement int) bool {
	return voteCount >= baseConsensusVotes+totalEngagement/engagementStep
}

// Assign attaches a flair directly. Moderators assign with the moderator
// method; the sighting's reporter assigns with the manual method; anyone
// else is denied.
func (e *Engine) Assign(ctx context.Context, sightingID model.SightingID, flairID model.FlairID, actorID model.UserID) (model.SightingFlair, error) {
	s, f, err := e.loadPair(ctx, sightingID, flairID)
	if err != nil {
		return model.SightingFlair{}, err
	}

	assigned, err := e.store.HasFlair(ctx, sightingID, flairID)
	if err != nil {
		return model.SightingFlair{}, fmt.Errorf("check assignment: %w", err)
	}
	if assigned {
		return model.SightingFlair{}, fault.New(fault.CodeAlreadyExists, "flair %s already assigned to sighting %s", flairID, sightingID)
	}

	mod, err := e.roles.IsModerator(ctx, actorID)
	if err != nil {
		return model.SightingFlair{}, fmt.Errorf("check moderator: %w", err)
	}

	method := model.AssignManual
	switch {
	case mod:
		method = model.AssignModerator
	case actorID != "" && actorID == s.ReporterID:
		// reporter tags their own sighting
	default:
		return model.SightingFlair{}, fault.New(fault.CodePermissionDenied, "user %s may not assign flair %s", actorID, f.ID)
	}

	sf := model.SightingFlair{
		SightingID: sightingID,
		FlairID:    flairID,
		AssignedBy: actorID,
		Method:     method,
		AssignedAt: e.now(),
	}
	if err := e.store.Assign(ctx, sf); err != nil {
		return model.SightingFlair{}, fmt.Errorf("assign flair: %w", err)
	}

	metrics.RecordFlairAssigned(string(method))

	return sf, nil
}

// Suggest opens a consensus vote for attaching a flair. The suggester
// casts an implicit self-vote. The same (sighting, flair) pair cannot be
// suggested twice, settled or not.
func (e *Engine) Suggest(ctx context.Context, sightingID model.SightingID, flairID model.FlairID, userID model.UserID) (model.FlairSuggestion, error) {
	s, _, err := e.loadPair(ctx, sightingID, flairID)
	if err != nil {
		return model.FlairSuggestion{}, err
	}

	assigned, err := e.store.HasFlair(ctx, sightingID, flairID)
	if err != nil {
		return model.FlairSuggestion{}, fmt.Errorf("check assignment: %w", err)
	}
	if assigned {
		return model.FlairSuggestion{}, fault.New(fault.CodeAlreadyExists, "flair %s already assigned to sighting %s", flairID, sightingID)
	}

	if _, exists, err := e.store.SuggestionForPair(ctx, sightingID, flairID); err != nil {
		return model.FlairSuggestion{}, fmt.Errorf("check suggestion: %w", err)
	} else if exists {
		return model.FlairSuggestion{}, fault.New(fault.CodeAlreadyExists, "flair %s already suggested for sighting %s", flairID, sightingID)
	}

	sg := model.FlairSuggestion{
		ID:          model.SuggestionID(uuid.NewString()),
		SightingID:  sightingID,
		FlairID:     flairID,
		SuggestedBy: userID,
		VoteCount:   1,
		Status:      model.SuggestionPending,
		CreatedAt:   e.now(),
	}
	if err := e.store.CreateSuggestion(ctx, sg); err != nil {
		return model.FlairSuggestion{}, fmt.Errorf("create suggestion: %w", err)
	}
	if err := e.store.RecordVote(ctx, sg.ID, userID); err != nil {
		return model.FlairSuggestion{}, fmt.Errorf("record self-vote: %w", err)
	}

	metrics.RecordSuggestionCreated()

	// The implicit self-vote can already cross the threshold on a
	// sighting with no engagement.
	return e.settleIfCrossed(ctx, sg, s)
}

// Vote adds a distinct user's vote to a pending suggestion and applies
// the flair once the engagement-scaled threshold is crossed. Votes on a
// settled suggestion, self-votes and repeat votes are rejected.
func (e *Engine) Vote(ctx context.Context, suggestionID model.SuggestionID, voterID model.UserID) (model.FlairSuggestion, error) {
	sg, found, err := e.store.Suggestion(ctx, suggestionID)
	if err != nil {
		return model.FlairSuggestion{}, fmt.Errorf("load suggestion: %w", err)
	}
	if !found {
		return model.FlairSuggestion{}, fault.New(fault.CodeNotFound, "suggestion %s not found", suggestionID)
	}

	if sg.Status != model.SuggestionPending {
		return model.FlairSuggestion{}, fault.New(fault.CodeSuggestionSettled, "suggestion %s is %s", suggestionID, sg.Status)
	}
	if voterID == sg.SuggestedBy {
		return model.FlairSuggestion{}, fault.New(fault.CodePermissionDenied, "user %s cannot vote on their own suggestion", voterID)
	}

	voted, err := e.store.HasVoted(ctx, suggestionID, voterID)
	if err != nil {
		return model.FlairSuggestion{}, fmt.Errorf("check vote: %w", err)
	}
	if voted {
		return model.FlairSuggestion{}, fault.New(fault.CodeAlreadyVoted, "user %s already voted on suggestion %s", voterID, suggestionID)
	}

	sg.VoteCount++
	if err := e.store.UpdateSuggestionVotes(ctx, suggestionID, sg.VoteCount); err != nil {
		return model.FlairSuggestion{}, fmt.Errorf("update votes: %w", err)
	}
	if err := e.store.RecordVote(ctx, suggestionID, voterID); err != nil {
		return model.FlairSuggestion{}, fmt.Errorf("record vote: %w", err)
	}

	s, found, err := e.sightings.GetSighting(ctx, sg.SightingID)
	if err != nil {
		return model.FlairSuggestion{}, fmt.Errorf("load sighting: %w", err)
	}
	if !found {
		return model.FlairSuggestion{}, fault.New(fault.CodeNotFound, "sighting %s not found", sg.SightingID)
	}

	return e.settleIfCrossed(ctx, sg, s)
}

// settleIfCrossed applies the suggestion's flair and flips the status to
// applied when the threshold is crossed. The pending check in Vote makes
// the transition one-way.
func (e *Engine) settleIfCrossed(ctx context.Context, sg model.FlairSuggestion, s model.Sighting) (model.FlairSuggestion, error) {
	if !ShouldAutoApply(sg.VoteCount, s.Counts.TotalEngagement()) {
		return sg, nil
	}

	sf := model.SightingFlair{
		SightingID: sg.SightingID,
		FlairID:    sg.FlairID,
		AssignedBy: sg.SuggestedBy,
		Method:     model.AssignConsensus,
		AssignedAt: e.now(),
	}
	if err := e.store.Assign(ctx, sf); err != nil {
		return model.FlairSuggestion{}, fmt.Errorf("assign consensus flair: %w", err)
	}
	if err := e.store.UpdateSuggestionStatus(ctx, sg.ID, model.SuggestionApplied); err != nil {
		return model.FlairSuggestion{}, fmt.Errorf("apply suggestion: %w", err)
	}
	sg.Status = model.SuggestionApplied

	metrics.RecordFlairAssigned(string(model.AssignConsensus))
	metrics.RecordSuggestionApplied()

	e.logger.Info(ctx, "suggestion applied by consensus",
		logger.String("suggestionID", sg.ID.String()),
		logger.String("sightingID", sg.SightingID.String()),
		logger.Int("votes", sg.VoteCount),
	)

	return sg, nil
}

// AutoAssign applies every matching rule-based flair to the sighting and
// returns the flair ids it assigned. Flairs already present are skipped;
// nothing is ever removed.
func (e *Engine) AutoAssign(ctx context.Context, sightingID model.SightingID) ([]model.FlairID, error) {
	s, found, err := e.sightings.GetSighting(ctx, sightingID)
	if err != nil {
		return nil, fmt.Errorf("load sighting: %w", err)
	}
	if !found {
		return nil, fault.New(fault.CodeNotFound, "sighting %s not found", sightingID)
	}

	flairs, err := e.store.ActiveFlairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active flairs: %w", err)
	}

	var assigned []model.FlairID
	for _, f := range flairs {
		if f.AutoAssign == nil {
			continue
		}
		if f.CategoryID != "" && f.CategoryID != s.CategoryID {
			continue
		}
		if !e.conditionsMet(*f.AutoAssign, s) {
			continue
		}

		present, err := e.store.HasFlair(ctx, sightingID, f.ID)
		if err != nil {
			return assigned, fmt.Errorf("check assignment: %w", err)
		}
		if present {
			continue
		}

		sf := model.SightingFlair{
			SightingID: sightingID,
			FlairID:    f.ID,
			Method:     model.AssignAuto,
			AssignedAt: e.now(),
		}
		if err := e.store.Assign(ctx, sf); err != nil {
			return assigned, fmt.Errorf("auto-assign flair %s: %w", f.ID, err)
		}
		assigned = append(assigned, f.ID)
		metrics.RecordFlairAssigned(string(model.AssignAuto))
	}

	return assigned, nil
}

// AutoAssignBatch runs AutoAssign over many sightings and returns the
// total number of assignments made. Per-sighting failures abort the batch.
func (e *Engine) AutoAssignBatch(ctx context.Context, sightingIDs []model.SightingID) (int, error) {
	total := 0
	for _, id := range sightingIDs {
		ids, err := e.AutoAssign(ctx, id)
		if err != nil {
			return total, err
		}
		total += len(ids)
	}
	return total, nil
}

// conditionsMet checks the populated auto-assign bounds against the
// sighting. A crossed spam-report threshold short-circuits to a match;
// an uncrossed one leaves the decision to the remaining bounds, and a
// flair whose only bound is an uncrossed spam threshold does not match.
func (e *Engine) conditionsMet(c model.AutoAssignConditions, s model.Sighting) bool {
	if c.Empty() {
		return false
	}

	if c.SpamReportThreshold != nil {
		if s.Counts.SpamReports >= *c.SpamReportThreshold {
			return true
		}
		rest := c
		rest.SpamReportThreshold = nil
		if rest.Empty() {
			return false
		}
	}

	if c.MinScore != nil && s.Score < *c.MinScore {
		return false
	}
	if c.MaxScore != nil && s.Score > *c.MaxScore {
		return false
	}

	ageHours := e.now().Sub(s.ObservedAt).Hours()
	if c.MinAgeHours != nil && ageHours < *c.MinAgeHours {
		return false
	}
	if c.MaxAgeHours != nil && ageHours > *c.MaxAgeHours {
		return false
	}

	if c.MinEngagement != nil && s.Counts.TotalEngagement() < *c.MinEngagement {
		return false
	}

	return true
}

// Remove detaches a flair. Moderators, the sighting's reporter and the
// original assigner may remove any assignment; auto-assigned flairs may
// be removed by anyone since no human asserted that assignment.
func (e *Engine) Remove(ctx context.Context, sightingID model.SightingID, flairID model.FlairID, actorID model.UserID) error {
	sf, found, err := e.store.Assignment(ctx, sightingID, flairID)
	if err != nil {
		return fmt.Errorf("load assignment: %w", err)
	}
	if !found {
		return fault.New(fault.CodeNotFound, "flair %s not assigned to sighting %s", flairID, sightingID)
	}

	allowed := sf.Method == model.AssignAuto || (actorID != "" && actorID == sf.AssignedBy)
	if !allowed {
		s, foundS, err := e.sightings.GetSighting(ctx, sightingID)
		if err != nil {
			return fmt.Errorf("load sighting: %w", err)
		}
		if foundS && actorID != "" && actorID == s.ReporterID {
			allowed = true
		}
	}
	if !allowed {
		mod, err := e.roles.IsModerator(ctx, actorID)
		if err != nil {
			return fmt.Errorf("check moderator: %w", err)
		}
		allowed = mod
	}
	if !allowed {
		return fault.New(fault.CodePermissionDenied, "user %s may not remove flair %s", actorID, flairID)
	}

	if err := e.store.Unassign(ctx, sightingID, flairID); err != nil {
		return fmt.Errorf("remove flair: %w", err)
	}

	return nil
}

// loadPair fetches the sighting and flair, faulting when either is
// missing.
func (e *Engine) loadPair(ctx context.Context, sightingID model.SightingID, flairID model.FlairID) (model.Sighting, model.Flair, error) {
	s, found, err := e.sightings.GetSighting(ctx, sightingID)
	if err != nil {
		return model.Sighting{}, model.Flair{}, fmt.Errorf("load sighting: %w", err)
	}
	if !found {
		return model.Sighting{}, model.Flair{}, fault.New(fault.CodeNotFound, "sighting %s not found", sightingID)
	}

	f, found, err := e.store.GetFlair(ctx, flairID)
	if err != nil {
		return model.Sighting{}, model.Flair{}, fmt.Errorf("load flair: %w", err)
	}
	if !found {
		return model.Sighting{}, model.Flair{}, fault.New(fault.CodeNotFound, "flair %s not found", flairID)
	}

	return s, f, nil
}
