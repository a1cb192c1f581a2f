package seed

import (
	"context"
	"fmt"

	app "github.com/spotline/spotline/internal/app"
	"github.com/spotline/spotline/internal/domain/model"
	"github.com/spotline/spotline/pkg/logger"
)

// verifyRanking checks that the returned ranking is ordered by hot
// score, highest first.
func verifyRanking(ctx context.Context, top []model.Sighting) error {
	for i := 1; i < len(top); i++ {
		if top[i].HotScore > top[i-1].HotScore {
			return fmt.Errorf("ranking out of order at position %d: %.4f > %.4f",
				i, top[i].HotScore, top[i-1].HotScore)
		}
	}

	logger.Get().Info(ctx, "ranking verified", logger.Int("entries", len(top)))
	return nil
}

// verifyReputations checks the reputation floor: no user ends below zero
// and every resolved trust tier is a known one.
func verifyReputations(ctx context.Context, svc *app.Service, users []model.UserID) error {
	tiers := make(map[model.TrustLevel]int)

	for _, user := range users {
		rep, found, err := svc.Reputations().GetByUserID(ctx, user)
		if err != nil {
			return fmt.Errorf("load reputation for %s: %w", user, err)
		}
		if found && rep.Score < 0 {
			return fmt.Errorf("user %s has negative reputation %d", user, rep.Score)
		}

		tier, err := svc.TrustLevelFor(ctx, user)
		if err != nil {
			return fmt.Errorf("resolve trust for %s: %w", user, err)
		}
		tiers[tier]++
	}

	logger.Get().Info(ctx, "reputations verified",
		logger.Int("users", len(users)),
		logger.Int("unverified", tiers[model.TrustUnverified]),
		logger.Int("new", tiers[model.TrustNew]),
		logger.Int("trusted", tiers[model.TrustTrusted]),
		logger.Int("verified", tiers[model.TrustVerified]))
	return nil
}
