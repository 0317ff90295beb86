package synth_test

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/mvidal/destino/internal/domain/model"
	"github.com/mvidal/destino/internal/domain/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func seeded() *synth.Generator {
	return synth.NewGenerator(synth.WithRand(rand.New(rand.NewSource(42))))
}

func TestAnalyzePatterns(t *testing.T) {
	Convey("Given real submissions across order buckets", t, func() {
		subs := []model.Submission{
			{ID: "u1", Order: 3, RankedItems: []string{"10", "20", "30"}},
			{ID: "u2", Order: 7, RankedItems: []string{"20", "10"}},
			{ID: "u3", Order: 120, RankedItems: []string{"500"}},
		}

		patterns := synth.AnalyzePatterns(subs)

		Convey("Then each populated bucket gets a popular set ordered by decayed weight", func() {
			top50 := patterns.ForOrder(12)
			// "20": 9 (pos 1) + 10 (pos 0) = 19; "10": 10 + 9 = 19; tie breaks by ID.
			So(top50[0], ShouldEqual, "10")
			So(top50[1], ShouldEqual, "20")
			So(top50, ShouldContain, "30")
		})

		Convey("Then orders resolve to their own bucket", func() {
			So(patterns.ForOrder(150), ShouldResemble, []string{"500"})
		})

		Convey("Then an empty bucket yields no pattern", func() {
			So(patterns.ForOrder(250), ShouldBeEmpty)
		})

		Convey("Then non-positive orders fall back to the earliest bucket", func() {
			So(patterns.ForOrder(0), ShouldNotBeEmpty)
		})
	})
}

func TestFillMissing(t *testing.T) {
	Convey("Given real submissions occupying orders 2 and 4", t, func() {
		real := []model.Submission{
			{ID: "u2", Name: "Dos", Order: 2, RankedItems: []string{"1", "2", "3"}, SubmittedAt: 50_000},
			{ID: "u4", Name: "Cuatro", Order: 4, RankedItems: []string{"2", "3"}, SubmittedAt: 60_000},
		}

		Convey("When filling up to target order 5", func() {
			merged := seeded().FillMissing(real, 5)

			Convey("Then exactly orders 1 and 3 are fabricated", func() {
				var fakeOrders []int
				for _, s := range merged {
					if s.IsSynthetic {
						fakeOrders = append(fakeOrders, s.Order)
					}
				}
				So(fakeOrders, ShouldResemble, []int{1, 3})
			})

			Convey("Then real submissions survive untouched", func() {
				So(merged, ShouldHaveLength, 4)
				byID := map[string]model.Submission{}
				for _, s := range merged {
					byID[s.ID] = s
				}
				So(byID["u2"].RankedItems, ShouldResemble, []string{"1", "2", "3"})
				So(byID["u4"].IsSynthetic, ShouldBeFalse)
			})

			Convey("Then the merge is in processing order", func() {
				for i := 1; i < len(merged); i++ {
					So(merged[i-1].Before(merged[i]), ShouldBeTrue)
				}
			})

			Convey("Then synthetic timestamps sit before every real one", func() {
				for _, s := range merged {
					if s.IsSynthetic {
						So(s.SubmittedAt, ShouldBeLessThan, int64(50_000))
					}
				}
			})
		})

		Convey("When no order is missing", func() {
			full := []model.Submission{
				{ID: "u1", Order: 1, SubmittedAt: 1},
				{ID: "u2", Order: 2, SubmittedAt: 2},
			}
			merged := seeded().FillMissing(full, 3)

			Convey("Then the input comes back unchanged", func() {
				So(merged, ShouldResemble, full)
			})
		})
	})
}

func TestPreferenceListShape(t *testing.T) {
	Convey("Given a populated early bucket", t, func() {
		var real []model.Submission
		for i := 0; i < 10; i++ {
			real = append(real, model.Submission{
				ID:          "r" + strconv.Itoa(i),
				Order:       i*2 + 2, // evens occupied, odds missing
				RankedItems: []string{"100", "101", "102", "103"},
				SubmittedAt: int64(1000 + i),
			})
		}

		merged := seeded().FillMissing(real, 21)

		Convey("Then every synthetic list is bounded by the user's order and free of duplicates", func() {
			for _, s := range merged {
				if !s.IsSynthetic {
					continue
				}
				So(len(s.RankedItems), ShouldBeLessThanOrEqualTo, max(s.Order, 15))
				seen := map[string]bool{}
				for _, id := range s.RankedItems {
					So(seen[id], ShouldBeFalse)
					seen[id] = true
				}
			}
		})

		Convey("Then synthetic IDs and names derive from the order slot", func() {
			for _, s := range merged {
				if s.IsSynthetic {
					So(s.ID, ShouldEqual, "fake_"+strconv.Itoa(s.Order))
					So(s.Name, ShouldEqual, "Usuario "+strconv.Itoa(s.Order))
				}
			}
		})
	})
}
