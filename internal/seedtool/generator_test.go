package seedtool

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Given a seeding configuration", t, func() {
		cfg := &Config{
			Season:   "2025",
			NumUsers: 50,
			PoolSize: 30,
			MaxPrefs: 8,
		}

		Convey("it produces the requested number of users", func() {
			subs := generate(cfg)
			So(subs, ShouldHaveLength, 50)
		})

		Convey("every submission is well formed", func() {
			for _, sub := range generate(cfg) {
				So(sub.Season, ShouldEqual, "2025")
				So(sub.UserID, ShouldStartWith, "seed_")
				So(sub.Name, ShouldNotBeEmpty)
				So(len(sub.RankedItems), ShouldBeBetweenOrEqual, 1, 8)

				seen := make(map[string]bool)
				for _, id := range sub.RankedItems {
					So(seen[id], ShouldBeFalse)
					seen[id] = true
				}
			}
		})

		Convey("orders increase strictly without gaps by default", func() {
			subs := generate(cfg)
			for i, sub := range subs {
				So(sub.Order, ShouldEqual, i+1)
			}
		})

		Convey("enabling gaps keeps orders strictly increasing", func() {
			cfg.Gaps = true
			subs := generate(cfg)
			for i := 1; i < len(subs); i++ {
				So(subs[i].Order, ShouldBeGreaterThan, subs[i-1].Order)
			}
		})
	})
}

func TestRankedPicks(t *testing.T) {
	Convey("Given a small destination pool", t, func() {
		pool := destinationPool(5)

		Convey("the pool renders numeric string IDs", func() {
			So(pool, ShouldResemble, []string{"1000", "1001", "1002", "1003", "1004"})
		})

		Convey("picks never exceed the pool", func() {
			for i := 0; i < 20; i++ {
				picks := rankedPicks(pool, 10)
				So(len(picks), ShouldBeLessThanOrEqualTo, len(pool))
			}
		})
	})
}
