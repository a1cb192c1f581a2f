package dedupe_test

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/spotline/spotline/internal/domain/dedupe"
)

func TestSeenAndRecord(t *testing.T) {
	convey.Convey("Given a fresh deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewRingDeduper()

		convey.Convey("When an id is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "ev-1")

			convey.Convey("Then it was not seen before", func() {
				convey.So(seen, convey.ShouldBeFalse)
				convey.So(d.Size(), convey.ShouldEqual, 1)
			})

			convey.Convey("And the second time it is a duplicate", func() {
				convey.So(d.SeenAndRecord(ctx, "ev-1"), convey.ShouldBeTrue)
				convey.So(d.Size(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When distinct ids are recorded", func() {
			for i := 0; i < 100; i++ {
				convey.So(d.SeenAndRecord(ctx, "ev-"+strconv.Itoa(i)), convey.ShouldBeFalse)
			}

			convey.Convey("Then all of them are tracked", func() {
				convey.So(d.Size(), convey.ShouldEqual, 100)
			})
		})
	})
}

func TestUnrecord(t *testing.T) {
	convey.Convey("Given a deduper with a recorded id", t, func() {
		ctx := context.Background()
		d := dedupe.NewRingDeduper()
		convey.So(d.SeenAndRecord(ctx, "ev-1"), convey.ShouldBeFalse)

		convey.Convey("When the id is unrecorded", func() {
			d.Unrecord(ctx, "ev-1")

			convey.Convey("Then it can be recorded again", func() {
				convey.So(d.Size(), convey.ShouldEqual, 0)
				convey.So(d.SeenAndRecord(ctx, "ev-1"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When an unknown id is unrecorded", func() {
			d.Unrecord(ctx, "ghost")

			convey.Convey("Then nothing changes", func() {
				convey.So(d.Size(), convey.ShouldEqual, 1)
			})
		})
	})
}

func TestEviction(t *testing.T) {
	convey.Convey("Given a deduper bounded at three ids", t, func() {
		ctx := context.Background()
		d := dedupe.NewRingDeduper(dedupe.WithMaxSize(3))

		convey.Convey("When a fourth id arrives", func() {
			for _, id := range []string{"a", "b", "c", "d"} {
				convey.So(d.SeenAndRecord(ctx, id), convey.ShouldBeFalse)
			}

			convey.Convey("Then the oldest id is evicted", func() {
				convey.So(d.Size(), convey.ShouldEqual, 3)
				convey.So(d.SeenAndRecord(ctx, "a"), convey.ShouldBeFalse)
			})

			convey.Convey("And newer ids are still duplicates", func() {
				convey.So(d.SeenAndRecord(ctx, "c"), convey.ShouldBeTrue)
				convey.So(d.SeenAndRecord(ctx, "d"), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an unrecorded slot is evicted", func() {
			for _, id := range []string{"a", "b", "c"} {
				convey.So(d.SeenAndRecord(ctx, id), convey.ShouldBeFalse)
			}
			d.Unrecord(ctx, "a")
			convey.So(d.SeenAndRecord(ctx, "d"), convey.ShouldBeFalse)

			convey.Convey("Then the tombstone does not distort the size", func() {
				convey.So(d.Size(), convey.ShouldEqual, 3)
				convey.So(d.SeenAndRecord(ctx, "b"), convey.ShouldBeTrue)
				convey.So(d.SeenAndRecord(ctx, "c"), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewRingDeduper(dedupe.WithMaxSize(0))

		convey.Convey("When many ids are recorded", func() {
			for i := 0; i < 1000; i++ {
				convey.So(d.SeenAndRecord(ctx, "ev-"+strconv.Itoa(i)), convey.ShouldBeFalse)
			}

			convey.Convey("Then nothing is evicted", func() {
				convey.So(d.Size(), convey.ShouldEqual, 1000)
				convey.So(d.SeenAndRecord(ctx, "ev-0"), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConcurrentAccess(t *testing.T) {
	convey.Convey("Given concurrent recorders racing on the same ids", t, func() {
		ctx := context.Background()
		d := dedupe.NewRingDeduper()

		const workers = 8
		const ids = 200

		firsts := make([]int, workers)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < ids; i++ {
					if !d.SeenAndRecord(ctx, "ev-"+strconv.Itoa(i)) {
						firsts[w]++
					}
				}
			}(w)
		}
		wg.Wait()

		convey.Convey("Then each id is first exactly once", func() {
			total := 0
			for _, n := range firsts {
				total += n
			}
			convey.So(total, convey.ShouldEqual, ids)
			convey.So(d.Size(), convey.ShouldEqual, ids)
		})
	})
}
