package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	app "github.com/spotline/spotline/internal/app"
	"github.com/spotline/spotline/internal/domain/fault"
	"github.com/spotline/spotline/internal/domain/model"
	"github.com/spotline/spotline/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func startedService(ctx context.Context, opts ...app.Option) *app.Service {
	opts = append([]app.Option{
		app.WithWorkerCount(2),
		app.WithQueueSize(256),
		app.WithDedupeSize(1024),
	}, opts...)
	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		panic(err)
	}
	return svc
}

func addReaction(ctx context.Context, svc *app.Service, sightingID model.SightingID, userID model.UserID, t model.ReactionType) error {
	return svc.ApplyReaction(ctx, model.ReactionEvent{
		EventID:    string(sightingID) + "_" + string(userID) + "_" + string(t),
		SightingID: sightingID,
		UserID:     userID,
		Type:       t,
		Op:         model.ReactionOpAdd,
	})
}

func TestRegisterSighting(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(ctx)
		defer svc.Stop()

		convey.Convey("When a sighting is registered", func() {
			s := model.Sighting{
				ID:         "s1",
				CategoryID: "wildlife",
				ReporterID: "reporter",
				CreatedAt:  time.Now(),
			}
			matched, err := svc.RegisterSighting(ctx, s)

			convey.Convey("Then it is stored and no signals fire yet", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(matched, convey.ShouldBeEmpty)

				got, found, err := svc.GetSighting(ctx, "s1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(found, convey.ShouldBeTrue)
				convey.So(got.ReporterID, convey.ShouldEqual, model.UserID("reporter"))
			})

			convey.Convey("And the reporter is credited for the creation", func() {
				convey.So(err, convey.ShouldBeNil)
				rep, found, err := svc.Reputations().GetByUserID(ctx, "reporter")
				convey.So(err, convey.ShouldBeNil)
				convey.So(found, convey.ShouldBeTrue)
				convey.So(rep.Score, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a signal subscribes to created sightings", func() {
			convey.So(svc.CreateSignal(ctx, model.Signal{
				ID:       "sig-1",
				OwnerID:  "owner",
				Target:   model.TargetGlobal,
				Triggers: []model.TriggerType{model.TriggerSightingCreated},
				IsActive: true,
			}), convey.ShouldBeNil)

			matched, err := svc.RegisterSighting(ctx, model.Sighting{
				ID: "s2", ReporterID: "reporter", CreatedAt: time.Now(),
			})

			convey.Convey("Then registration reports the match", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(matched, convey.ShouldResemble, []model.SignalID{"sig-1"})
			})
		})
	})
}

func TestApplyReaction(t *testing.T) {
	convey.Convey("Given a service with one sighting", t, func() {
		ctx := context.Background()
		svc := startedService(ctx)
		defer svc.Stop()

		created := time.Now().Add(-2 * time.Hour)
		_, err := svc.RegisterSighting(ctx, model.Sighting{
			ID:         "s1",
			CategoryID: "traffic",
			ReporterID: "reporter",
			CreatedAt:  created,
		})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When a user upvotes", func() {
			convey.So(addReaction(ctx, svc, "s1", "alice", model.ReactionUpvote), convey.ShouldBeNil)

			convey.Convey("Then the score and counts update together", func() {
				got, _, err := svc.GetSighting(ctx, "s1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Counts.Upvotes, convey.ShouldEqual, 1)
				convey.So(got.Score, convey.ShouldEqual, 1.0)
				convey.So(got.HotScore, convey.ShouldBeGreaterThan, 0)
			})

			convey.Convey("And the reporter earns reputation for it", func() {
				rep, _, err := svc.Reputations().GetByUserID(ctx, "reporter")
				convey.So(err, convey.ShouldBeNil)
				// +1 creation, +1 upvoted
				convey.So(rep.Score, convey.ShouldEqual, 2)
			})

			convey.Convey("And repeating the same reaction faults", func() {
				err := addReaction(ctx, svc, "s1", "alice", model.ReactionUpvote)
				convey.So(fault.IsCode(err, fault.CodeAlreadyReacted), convey.ShouldBeTrue)
			})

			convey.Convey("And retracting restores the base score", func() {
				err := svc.ApplyReaction(ctx, model.ReactionEvent{
					EventID:    "retract-1",
					SightingID: "s1",
					UserID:     "alice",
					Type:       model.ReactionUpvote,
					Op:         model.ReactionOpRemove,
				})
				convey.So(err, convey.ShouldBeNil)

				got, _, err := svc.GetSighting(ctx, "s1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Counts.Upvotes, convey.ShouldEqual, 0)
				convey.So(got.Score, convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When a confirmation arrives", func() {
			convey.So(addReaction(ctx, svc, "s1", "bob", model.ReactionConfirmed), convey.ShouldBeNil)

			convey.Convey("Then it weighs double", func() {
				got, _, err := svc.GetSighting(ctx, "s1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Score, convey.ShouldEqual, 2.0)
			})

			convey.Convey("And the reporter earns the confirmation credit", func() {
				rep, _, err := svc.Reputations().GetByUserID(ctx, "reporter")
				convey.So(err, convey.ShouldBeNil)
				// +1 creation, +2 confirmed
				convey.So(rep.Score, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the reporter reacts to their own sighting", func() {
			convey.So(addReaction(ctx, svc, "s1", "reporter", model.ReactionUpvote), convey.ShouldBeNil)

			convey.Convey("Then the score moves but no reputation accrues", func() {
				got, _, err := svc.GetSighting(ctx, "s1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Score, convey.ShouldEqual, 1.0)

				rep, _, err := svc.Reputations().GetByUserID(ctx, "reporter")
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.Score, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the reaction type is unknown", func() {
			err := svc.ApplyReaction(ctx, model.ReactionEvent{
				EventID:    "bad-1",
				SightingID: "s1",
				UserID:     "alice",
				Type:       "sparkle",
			})

			convey.Convey("Then it faults invalid_reaction_type", func() {
				convey.So(fault.IsCode(err, fault.CodeInvalidReaction), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the sighting does not exist", func() {
			err := addReaction(ctx, svc, "ghost", "alice", model.ReactionUpvote)

			convey.Convey("Then it faults not found", func() {
				convey.So(fault.IsCode(err, fault.CodeNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a spam report arrives", func() {
			convey.So(addReaction(ctx, svc, "s1", "carol", model.ReactionSpam), convey.ShouldBeNil)

			convey.Convey("Then it counts without moving the score", func() {
				got, _, err := svc.GetSighting(ctx, "s1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Counts.SpamReports, convey.ShouldEqual, 1)
				convey.So(got.Score, convey.ShouldEqual, 0.0)
			})
		})
	})
}

func TestEnqueueReaction(t *testing.T) {
	convey.Convey("Given a service with one sighting", t, func() {
		ctx := context.Background()
		svc := startedService(ctx)
		defer svc.Stop()

		_, err := svc.RegisterSighting(ctx, model.Sighting{
			ID: "s1", ReporterID: "reporter", CreatedAt: time.Now(),
		})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the same event id is enqueued twice", func() {
			ev := model.ReactionEvent{
				EventID:    "ev-1",
				SightingID: "s1",
				UserID:     "alice",
				Type:       model.ReactionUpvote,
				Op:         model.ReactionOpAdd,
			}
			convey.So(svc.EnqueueReaction(ctx, ev), convey.ShouldBeTrue)
			convey.So(svc.EnqueueReaction(ctx, ev), convey.ShouldBeTrue)

			convey.Convey("Then the pipeline applies it once", func() {
				deadline := time.Now().Add(2 * time.Second)
				var got model.Sighting
				for time.Now().Before(deadline) {
					got, _, _ = svc.GetSighting(ctx, "s1")
					if got.Counts.Upvotes > 0 {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				convey.So(got.Counts.Upvotes, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the reaction type is invalid", func() {
			accepted := svc.EnqueueReaction(ctx, model.ReactionEvent{
				EventID:    "ev-bad",
				SightingID: "s1",
				UserID:     "alice",
				Type:       "sparkle",
			})

			convey.Convey("Then it is rejected at the door", func() {
				convey.So(accepted, convey.ShouldBeFalse)
			})
		})
	})
}

func TestEnqueueReactionWithoutEventIDs(t *testing.T) {
	convey.Convey("Given a single-worker service and a client that sends no event ids", t, func() {
		ctx := context.Background()
		svc := startedService(ctx, app.WithWorkerCount(1))
		defer svc.Stop()

		_, err := svc.RegisterSighting(ctx, model.Sighting{
			ID: "s1", ReporterID: "reporter", CreatedAt: time.Now(),
		})
		convey.So(err, convey.ShouldBeNil)

		reaction := func(op model.ReactionOp) model.ReactionEvent {
			return model.ReactionEvent{
				SightingID: "s1",
				UserID:     "alice",
				Type:       model.ReactionUpvote,
				Op:         op,
			}
		}

		convey.Convey("When the user adds, retracts and re-adds the same reaction", func() {
			convey.So(svc.EnqueueReaction(ctx, reaction(model.ReactionOpAdd)), convey.ShouldBeTrue)
			convey.So(svc.EnqueueReaction(ctx, reaction(model.ReactionOpRemove)), convey.ShouldBeTrue)
			convey.So(svc.EnqueueReaction(ctx, reaction(model.ReactionOpAdd)), convey.ShouldBeTrue)

			convey.Convey("Then the re-add survives the pipeline", func() {
				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) {
					if svc.GetStats()["queueLength"] == 0 {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				// Let the in-flight event land.
				time.Sleep(100 * time.Millisecond)

				got, _, err := svc.GetSighting(ctx, "s1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Counts.Upvotes, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestSignalOperations(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(ctx)
		defer svc.Stop()

		convey.Convey("When a user creates a signal", func() {
			convey.So(svc.CreateSignal(ctx, model.Signal{
				ID:       "sig-1",
				OwnerID:  "owner",
				IsActive: true,
			}), convey.ShouldBeNil)

			convey.Convey("Then the owner is credited five points", func() {
				rep, _, err := svc.Reputations().GetByUserID(ctx, "owner")
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.Score, convey.ShouldEqual, 5)
			})

			convey.Convey("And a subscriber earns two points", func() {
				convey.So(svc.SubscribeToSignal(ctx, "sig-1", "subscriber"), convey.ShouldBeNil)

				rep, _, err := svc.Reputations().GetByUserID(ctx, "subscriber")
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.Score, convey.ShouldEqual, 2)
			})

			convey.Convey("And verifying it credits the owner fifty points", func() {
				convey.So(svc.VerifySignal(ctx, "sig-1"), convey.ShouldBeNil)

				rep, _, err := svc.Reputations().GetByUserID(ctx, "owner")
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.Score, convey.ShouldEqual, 55)

				tier, err := svc.TrustLevelFor(ctx, "owner")
				convey.So(err, convey.ShouldBeNil)
				convey.So(tier, convey.ShouldEqual, model.TrustTrusted)
			})
		})

		convey.Convey("When a signal is deactivated and later reactivated", func() {
			convey.So(svc.CreateSignal(ctx, model.Signal{
				ID:       "sig-toggle",
				OwnerID:  "owner",
				Triggers: []model.TriggerType{model.TriggerSightingCreated},
				IsActive: true,
			}), convey.ShouldBeNil)

			register := func(id model.SightingID) []model.SignalID {
				matched, err := svc.RegisterSighting(ctx, model.Sighting{
					ID: id, ReporterID: "reporter", CreatedAt: time.Now(),
				})
				convey.So(err, convey.ShouldBeNil)
				return matched
			}

			convey.So(register("s-armed"), convey.ShouldResemble, []model.SignalID{"sig-toggle"})

			convey.So(svc.SetSignalActive(ctx, "sig-toggle", false), convey.ShouldBeNil)

			convey.Convey("Then it stops firing while inactive", func() {
				convey.So(register("s-muted"), convey.ShouldBeEmpty)
			})

			convey.Convey("And it fires again once reactivated", func() {
				convey.So(svc.SetSignalActive(ctx, "sig-toggle", true), convey.ShouldBeNil)
				convey.So(register("s-rearmed"), convey.ShouldResemble, []model.SignalID{"sig-toggle"})
			})
		})

		convey.Convey("When toggling an unknown signal", func() {
			err := svc.SetSignalActive(ctx, "ghost", false)

			convey.Convey("Then it faults not found", func() {
				convey.So(fault.IsCode(err, fault.CodeNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When subscribing to an unknown signal", func() {
			err := svc.SubscribeToSignal(ctx, "ghost", "subscriber")

			convey.Convey("Then it faults not found", func() {
				convey.So(fault.IsCode(err, fault.CodeNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an upheld report lands on a sighting", func() {
			_, err := svc.RegisterSighting(ctx, model.Sighting{
				ID: "s1", ReporterID: "reporter", CreatedAt: time.Now(),
			})
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.UpholdReport(ctx, "s1"), convey.ShouldBeNil)

			convey.Convey("Then the reporter's score clamps at zero", func() {
				rep, _, err := svc.Reputations().GetByUserID(ctx, "reporter")
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.Score, convey.ShouldEqual, 0)
			})
		})
	})
}

func TestRanking(t *testing.T) {
	convey.Convey("Given sightings with different engagement and age", t, func() {
		ctx := context.Background()
		now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		svc := startedService(ctx, app.WithClock(func() time.Time { return now }))
		defer svc.Stop()

		register := func(id model.SightingID, age time.Duration) {
			_, err := svc.RegisterSighting(ctx, model.Sighting{
				ID:         id,
				ReporterID: "reporter",
				CreatedAt:  now.Add(-age),
			})
			convey.So(err, convey.ShouldBeNil)
		}

		register("fresh-popular", time.Hour)
		register("old-popular", 40*time.Hour)
		register("fresh-quiet", time.Hour)

		upvote := func(id model.SightingID, n int) {
			for i := 0; i < n; i++ {
				user := model.UserID("voter-" + string(rune('a'+i)))
				convey.So(addReaction(ctx, svc, id, user, model.ReactionUpvote), convey.ShouldBeNil)
			}
		}
		upvote("fresh-popular", 10)
		upvote("old-popular", 10)
		upvote("fresh-quiet", 1)

		convey.Convey("When ranking the top sightings", func() {
			top, err := svc.TopSightings(ctx, 10)

			convey.Convey("Then recency beats age at equal engagement", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(top, convey.ShouldHaveLength, 3)
				convey.So(top[0].ID, convey.ShouldEqual, model.SightingID("fresh-popular"))
				convey.So(top[1].ID, convey.ShouldEqual, model.SightingID("fresh-quiet"))
				convey.So(top[2].ID, convey.ShouldEqual, model.SightingID("old-popular"))
			})
		})

		convey.Convey("When asking for fewer entries", func() {
			top, err := svc.TopSightings(ctx, 1)

			convey.Convey("Then the list is truncated", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(top, convey.ShouldHaveLength, 1)
				convey.So(top[0].ID, convey.ShouldEqual, model.SightingID("fresh-popular"))
			})
		})

		convey.Convey("When hot scores are refreshed later", func() {
			before, err := svc.TopSightings(ctx, 1)
			convey.So(err, convey.ShouldBeNil)

			convey.So(svc.RefreshHotScores(ctx), convey.ShouldBeNil)

			after, err := svc.TopSightings(ctx, 1)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the base score is untouched", func() {
				convey.So(after[0].Score, convey.ShouldEqual, before[0].Score)
			})
		})
	})
}

func TestFlairWorkflow(t *testing.T) {
	convey.Convey("Given a service with a sighting and a flair", t, func() {
		ctx := context.Background()
		svc := startedService(ctx)
		defer svc.Stop()

		_, err := svc.RegisterSighting(ctx, model.Sighting{
			ID: "s1", ReporterID: "reporter", CreatedAt: time.Now(),
		})
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Flairs().PutFlair(ctx, model.Flair{
			ID: "fl1", Name: "Notable", IsActive: true,
		}), convey.ShouldBeNil)

		convey.Convey("When the consensus path runs end to end", func() {
			sg, err := svc.SuggestFlair(ctx, "s1", "fl1", "alice")
			convey.So(err, convey.ShouldBeNil)

			sg, err = svc.VoteOnFlairSuggestion(ctx, sg.ID, "bob")
			convey.So(err, convey.ShouldBeNil)
			sg, err = svc.VoteOnFlairSuggestion(ctx, sg.ID, "carol")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then three votes settle a quiet sighting", func() {
				convey.So(sg.Status, convey.ShouldEqual, model.SuggestionApplied)

				flairs, err := svc.SightingFlairs(ctx, "s1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(flairs, convey.ShouldHaveLength, 1)
				convey.So(flairs[0].Method, convey.ShouldEqual, model.AssignConsensus)
			})
		})

		convey.Convey("When a moderator assigns directly", func() {
			convey.So(svc.Roles().GrantModerator(ctx, "mod"), convey.ShouldBeNil)
			sf, err := svc.AssignFlair(ctx, "s1", "fl1", "mod")

			convey.Convey("Then the assignment lands with the moderator method", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sf.Method, convey.ShouldEqual, model.AssignModerator)
			})

			convey.Convey("And the reporter may remove it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.RemoveFlair(ctx, "s1", "fl1", "reporter"), convey.ShouldBeNil)
			})
		})

		convey.Convey("When listing flairs for an unknown sighting", func() {
			_, err := svc.SightingFlairs(ctx, "ghost")

			convey.Convey("Then it faults not found", func() {
				convey.So(fault.IsCode(err, fault.CodeNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an auto-assign sweep runs over all sightings", func() {
			minScore := -100.0
			convey.So(svc.Flairs().PutFlair(ctx, model.Flair{
				ID:       "fl-auto",
				Name:     "Tracked",
				IsActive: true,
				AutoAssign: &model.AutoAssignConditions{
					MinScore: &minScore,
				},
			}), convey.ShouldBeNil)

			total, err := svc.AutoAssignAllFlairs(ctx)

			convey.Convey("Then the matching flair is applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(total, convey.ShouldEqual, 1)
			})
		})
	})
}
