package seed

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/spotline/spotline/internal/domain/model"
)

// Constants for random generation.
const (
	randomFloatDivisor  = 1000000
	reactionTypeDivisor = 5
	importanceDivisor   = 10
)

// Reaction mix cases. Upvotes dominate so the seeded data skews positive,
// the way organic engagement does.
const (
	caseUpvote   = 0
	caseUpvote2  = 1
	caseConfirm  = 2
	caseDownvote = 3
	caseDispute  = 4
)

var seedCategories = []model.CategoryID{"wildlife", "traffic", "weather", "hazard"}

var seedTags = [][]string{
	{"urgent"},
	{"verified-photo"},
	{"urgent", "verified-photo"},
	nil,
}

// randInt returns a random int in [0, n) using crypto/rand.
func randInt(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// randFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func randFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateUsers builds the synthetic user pool.
func generateUsers(n int) []model.UserID {
	users := make([]model.UserID, n)
	for i := range users {
		users[i] = model.UserID("user_" + strconv.Itoa(i) + "_" + uuid.NewString()[:8])
	}
	return users
}

// generateSighting creates one sighting with a randomized category,
// importance and age. Ages spread across the last two days so the hot
// score decay is visible in the final ranking.
func generateSighting(index int, reporter model.UserID, now time.Time) model.Sighting {
	category := seedCategories[int(randInt(int64(len(seedCategories))))]
	tags := seedTags[int(randInt(int64(len(seedTags))))]

	importance := model.ImportanceNormal
	switch randInt(importanceDivisor) {
	case 0:
		importance = model.ImportanceCritical
	case 1, 2:
		importance = model.ImportanceHigh
	case 3:
		importance = model.ImportanceLow
	}

	age := time.Duration(randFloat() * float64(48*time.Hour))
	createdAt := now.Add(-age)

	return model.Sighting{
		ID:         model.SightingID("sighting_" + strconv.Itoa(index) + "_" + uuid.NewString()[:8]),
		CategoryID: category,
		TypeID:     model.TypeID(string(category) + "_generic"),
		Importance: importance,
		ReporterID: reporter,
		Tags:       tags,
		CreatedAt:  createdAt,
		ObservedAt: createdAt,
	}
}

// generateReaction creates one reaction event against the sighting from
// a random non-reporter user.
func generateReaction(s model.Sighting, users []model.UserID) model.ReactionEvent {
	user := users[int(randInt(int64(len(users))))]
	for user == s.ReporterID && len(users) > 1 {
		user = users[int(randInt(int64(len(users))))]
	}

	var rt model.ReactionType
	switch randInt(reactionTypeDivisor) {
	case caseUpvote, caseUpvote2:
		rt = model.ReactionUpvote
	case caseConfirm:
		rt = model.ReactionConfirmed
	case caseDownvote:
		rt = model.ReactionDownvote
	case caseDispute:
		rt = model.ReactionDisputed
	}

	return model.ReactionEvent{
		EventID:    uuid.NewString(),
		SightingID: s.ID,
		UserID:     user,
		Type:       rt,
		Op:         model.ReactionOpAdd,
	}
}
