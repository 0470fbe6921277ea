package api

import (
	"fmt"
	"testing"

	"golang.org/x/time/rate"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCreatorLimiter(t *testing.T) {
	Convey("Given a per-creator limiter with a burst of one", t, func() {
		l := newCreatorLimiter(rate.Limit(0.001), 1)

		Convey("Then each creator gets its own bucket", func() {
			So(l.Allow("c1"), ShouldBeTrue)
			So(l.Allow("c1"), ShouldBeFalse)
			So(l.Allow("c2"), ShouldBeTrue)
		})

		Convey("When the map is full of refilled buckets", func() {
			full := newCreatorLimiter(rate.Limit(1), 1)
			for i := 0; i < maxTrackedCreators; i++ {
				full.limiters[fmt.Sprintf("c%d", i)] = rate.NewLimiter(rate.Limit(1), 1)
			}
			So(full.Allow("fresh"), ShouldBeTrue)

			Convey("Then idle buckets are swept", func() {
				So(len(full.limiters), ShouldEqual, 1)
			})
		})

		Convey("When the map is full of drained buckets", func() {
			for i := 0; i < maxTrackedCreators; i++ {
				id := fmt.Sprintf("c%d", i)
				So(l.Allow(id), ShouldBeTrue)
			}
			So(l.Allow("fresh"), ShouldBeTrue)

			Convey("Then busy creators keep their state", func() {
				So(len(l.limiters), ShouldEqual, maxTrackedCreators+1)
				So(l.Allow("c0"), ShouldBeFalse)
			})
		})
	})
}
