package scoring_test

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"github.com/spotline/spotline/internal/domain/model"
	"github.com/spotline/spotline/internal/domain/scoring"
)

func TestBaseScore(t *testing.T) {
	convey.Convey("Given a calculator with default weights", t, func() {
		calc := scoring.NewCalculator()

		convey.Convey("When all counts are zero", func() {
			score := calc.BaseScore(model.ReactionCounts{})

			convey.Convey("Then the base score is zero", func() {
				convey.So(score, convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When each reaction type is counted once", func() {
			counts := model.ReactionCounts{
				Upvotes:       1,
				Downvotes:     1,
				Confirmations: 1,
				Disputes:      1,
			}
			score := calc.BaseScore(counts)

			convey.Convey("Then the weights cancel out", func() {
				// +1 - 1 + 2 - 2
				convey.So(score, convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When a sighting has mixed engagement", func() {
			counts := model.ReactionCounts{
				Upvotes:       10,
				Downvotes:     3,
				Confirmations: 2,
				Disputes:      1,
			}
			score := calc.BaseScore(counts)

			convey.Convey("Then the weighted sum is exact", func() {
				// 10*1 + 3*(-1) + 2*2 + 1*(-2)
				convey.So(score, convey.ShouldEqual, 9.0)
			})
		})

		convey.Convey("When a sighting only collects spam reports", func() {
			counts := model.ReactionCounts{SpamReports: 50}
			score := calc.BaseScore(counts)

			convey.Convey("Then spam carries no weight", func() {
				convey.So(score, convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When heavily disputed", func() {
			counts := model.ReactionCounts{
				Upvotes:  1,
				Disputes: 5,
			}
			score := calc.BaseScore(counts)

			convey.Convey("Then the base score can go negative", func() {
				convey.So(score, convey.ShouldEqual, -9.0)
			})
		})
	})

	convey.Convey("Given a calculator with custom weights", t, func() {
		calc := scoring.NewCalculator(scoring.WithWeights(scoring.Weights{
			Upvote:       3.0,
			Confirmation: 5.0,
			Downvote:     -0.5,
			Dispute:      -1.0,
		}))

		convey.Convey("When scoring mixed counts", func() {
			counts := model.ReactionCounts{
				Upvotes:       2,
				Downvotes:     2,
				Confirmations: 1,
				Disputes:      1,
			}
			score := calc.BaseScore(counts)

			convey.Convey("Then the override weights are applied", func() {
				// 2*3 + 2*(-0.5) + 1*5 + 1*(-1)
				convey.So(score, convey.ShouldEqual, 9.0)
			})
		})
	})
}

func TestHotScore(t *testing.T) {
	convey.Convey("Given a calculator with default decay", t, func() {
		calc := scoring.NewCalculator()

		convey.Convey("When the base score is positive", func() {
			base := 10.0

			convey.Convey("Then the hot score only shrinks with age", func() {
				prev := calc.HotScore(base, 0)
				for _, age := range []time.Duration{
					time.Hour, 6 * time.Hour, 24 * time.Hour, 72 * time.Hour,
				} {
					cur := calc.HotScore(base, age)
					convey.So(cur, convey.ShouldBeLessThan, prev)
					convey.So(cur, convey.ShouldBeGreaterThan, 0)
					prev = cur
				}
			})

			convey.Convey("And a higher base wins at equal age", func() {
				age := 5 * time.Hour
				convey.So(calc.HotScore(20.0, age), convey.ShouldBeGreaterThan, calc.HotScore(base, age))
			})
		})

		convey.Convey("When the base score is negative", func() {
			base := -10.0

			convey.Convey("Then the hot score decays toward zero without flipping sign", func() {
				fresh := calc.HotScore(base, 0)
				old := calc.HotScore(base, 48*time.Hour)
				convey.So(fresh, convey.ShouldBeLessThan, 0)
				convey.So(old, convey.ShouldBeLessThan, 0)
				convey.So(old, convey.ShouldBeGreaterThan, fresh)
			})
		})

		convey.Convey("When the age is negative", func() {
			convey.Convey("Then it clamps to zero age", func() {
				convey.So(calc.HotScore(10.0, -time.Hour), convey.ShouldEqual, calc.HotScore(10.0, 0))
			})
		})

		convey.Convey("When the base score is zero", func() {
			convey.Convey("Then the hot score stays zero at any age", func() {
				convey.So(calc.HotScore(0, 0), convey.ShouldEqual, 0.0)
				convey.So(calc.HotScore(0, 100*time.Hour), convey.ShouldEqual, 0.0)
			})
		})
	})

	convey.Convey("Given a calculator with a steeper gravity", t, func() {
		defaultCalc := scoring.NewCalculator()
		steepCalc := scoring.NewCalculator(scoring.WithDecay(3.0, 2.0))

		convey.Convey("Then old sightings fall faster", func() {
			age := 24 * time.Hour
			convey.So(steepCalc.HotScore(10.0, age), convey.ShouldBeLessThan, defaultCalc.HotScore(10.0, age))
		})
	})
}

func TestRecompute(t *testing.T) {
	convey.Convey("Given a sighting and fresh counts", t, func() {
		calc := scoring.NewCalculator()
		now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		s := model.Sighting{
			ID:        "sighting-1",
			CreatedAt: now.Add(-4 * time.Hour),
		}
		counts := model.ReactionCounts{Upvotes: 6, Confirmations: 2}

		convey.Convey("When recomputing", func() {
			updated := calc.Recompute(s, counts, now)

			convey.Convey("Then counts and both scores update together", func() {
				convey.So(updated.Counts, convey.ShouldResemble, counts)
				convey.So(updated.Score, convey.ShouldEqual, 10.0)
				convey.So(updated.HotScore, convey.ShouldEqual, calc.HotScore(10.0, 4*time.Hour))
			})

			convey.Convey("And the input sighting is not mutated", func() {
				convey.So(s.Score, convey.ShouldEqual, 0.0)
				convey.So(s.Counts, convey.ShouldResemble, model.ReactionCounts{})
			})
		})
	})
}
