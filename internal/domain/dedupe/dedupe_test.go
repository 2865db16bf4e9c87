package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	dedupe "github.com/okian/readiness/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		So(d.Size(), ShouldEqual, 0)

		Convey("When a key is reserved for the first time", func() {
			id, seen := d.Reserve(ctx, "k1")

			Convey("Then it is new", func() {
				So(seen, ShouldBeFalse)
				So(id, ShouldEqual, "")
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a second reservation sees it in flight", func() {
				id, seen := d.Reserve(ctx, "k1")
				So(seen, ShouldBeTrue)
				So(id, ShouldEqual, "")
			})

			Convey("And after commit the record ID is returned", func() {
				d.Commit(ctx, "k1", "rec-1")
				id, seen := d.Reserve(ctx, "k1")
				So(seen, ShouldBeTrue)
				So(id, ShouldEqual, "rec-1")
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And after release it can be reserved again", func() {
				d.Release(ctx, "k1")
				So(d.Size(), ShouldEqual, 0)
				_, seen := d.Reserve(ctx, "k1")
				So(seen, ShouldBeFalse)
			})
		})

		Convey("When releasing or committing an unknown key", func() {
			d.Release(ctx, "missing")
			d.Commit(ctx, "missing", "rec")
			So(d.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given owner-scoped keys", t, func() {
		d := dedupe.NewInMemoryDeduper()
		_, seenA := d.Reserve(ctx, dedupe.Key("alice", "k"))
		_, seenB := d.Reserve(ctx, dedupe.Key("bob", "k"))

		Convey("Then the same key under two owners does not collide", func() {
			So(seenA, ShouldBeFalse)
			So(seenB, ShouldBeFalse)
			So(dedupe.Key("a", "bc"), ShouldNotEqual, dedupe.Key("ab", "c"))
		})
	})
}

func TestDedupeEviction(t *testing.T) {
	ctx := context.Background()

	Convey("Given a bounded deduper at capacity", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for _, k := range []string{"k1", "k2", "k3"} {
			d.Reserve(ctx, k)
		}

		Convey("When a fourth key arrives", func() {
			_, seen := d.Reserve(ctx, "k4")

			Convey("Then the oldest key is evicted", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 3)
				_, seen2 := d.Reserve(ctx, "k2")
				So(seen2, ShouldBeTrue)
				_, seen1 := d.Reserve(ctx, "k1")
				So(seen1, ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.Reserve(ctx, fmt.Sprintf("k-%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
		_, seen := d.Reserve(ctx, "k-0")
		So(seen, ShouldBeTrue)
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given many goroutines racing on one key", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var wins atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, seen := d.Reserve(context.Background(), "same"); !seen {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one reservation wins", func() {
			So(wins.Load(), ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
