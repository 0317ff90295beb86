package allocation_test

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/mvidal/destino/internal/domain/allocation"
	"github.com/mvidal/destino/internal/domain/model"
	"github.com/mvidal/destino/internal/domain/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func engine() *allocation.Engine {
	return allocation.NewEngine(
		allocation.WithSyntheticGenerator(synth.NewGenerator(synth.WithRand(rand.New(rand.NewSource(7))))),
	)
}

func byUser(results []model.AllocationResult, id string) model.AllocationResult {
	for _, r := range results {
		if r.UserID == id {
			return r
		}
	}
	return model.AllocationResult{}
}

func TestAllocateBasics(t *testing.T) {
	Convey("Given two users wanting the same items", t, func() {
		subs := []model.Submission{
			{ID: "u1", Name: "User 1", Order: 1, RankedItems: []string{"A", "B"}, SubmittedAt: 1000},
			{ID: "u2", Name: "User 2", Order: 2, RankedItems: []string{"A", "B"}, SubmittedAt: 1001},
		}

		out := engine().Allocate(subs, allocation.ScenarioCurrent, nil, 1)

		Convey("Then the higher priority takes the shared first choice", func() {
			So(byUser(out, "u1").AssignedItemIDs, ShouldResemble, []string{"A"})
			So(byUser(out, "u2").AssignedItemIDs, ShouldResemble, []string{"B"})
		})

		Convey("Then backup lists show the next fallback and exclude the assignment", func() {
			So(byUser(out, "u1").AvailableByPreference, ShouldResemble, []string{"B"})
			So(byUser(out, "u2").AvailableByPreference, ShouldBeEmpty)
		})
	})

	Convey("Given an order tie", t, func() {
		subs := []model.Submission{
			{ID: "late", Order: 1, RankedItems: []string{"X", "Y"}, SubmittedAt: 20},
			{ID: "early", Order: 1, RankedItems: []string{"X", "Y"}, SubmittedAt: 10},
		}

		out := engine().Allocate(subs, allocation.ScenarioCurrent, nil, 1)

		Convey("Then the earlier submittedAt wins the shared choice", func() {
			So(byUser(out, "early").AssignedItemIDs, ShouldResemble, []string{"X"})
			So(byUser(out, "late").AssignedItemIDs, ShouldResemble, []string{"Y"})
		})
	})

	Convey("Given zero and negative orders", t, func() {
		subs := []model.Submission{
			{ID: "u1", Order: 0, RankedItems: []string{"A", "B"}, SubmittedAt: 1},
			{ID: "u2", Order: -3, RankedItems: []string{"A", "B"}, SubmittedAt: 2},
			{ID: "u3", Order: 1, RankedItems: []string{"A", "B"}, SubmittedAt: 3},
		}

		out := engine().Allocate(subs, allocation.ScenarioCurrent, nil, 1)

		Convey("Then they are served by order value, not treated as invalid", func() {
			So(byUser(out, "u2").AssignedItemIDs, ShouldResemble, []string{"A"})
			So(byUser(out, "u1").AssignedItemIDs, ShouldResemble, []string{"B"})
			So(byUser(out, "u3").AssignedItemIDs, ShouldBeEmpty)
		})
	})

	Convey("Given a user with no preferences", t, func() {
		subs := []model.Submission{
			{ID: "u1", Order: 1, RankedItems: nil, SubmittedAt: 1},
			{ID: "u2", Order: 2, RankedItems: []string{"A"}, SubmittedAt: 2},
		}

		out := engine().Allocate(subs, allocation.ScenarioCurrent, nil, 1)

		Convey("Then they get an empty assignment, not an error", func() {
			So(byUser(out, "u1").AssignedItemIDs, ShouldBeEmpty)
			So(byUser(out, "u1").AvailableByPreference, ShouldBeEmpty)
			So(byUser(out, "u2").AssignedItemIDs, ShouldResemble, []string{"A"})
		})
	})

	Convey("Given no submissions at all", t, func() {
		So(engine().Allocate(nil, allocation.ScenarioCurrent, nil, 1), ShouldBeEmpty)
	})
}

func TestAllocateProperties(t *testing.T) {
	Convey("Given a larger population with overlapping preferences", t, func() {
		rng := rand.New(rand.NewSource(99))
		var subs []model.Submission
		for i := 0; i < 60; i++ {
			var ranked []string
			for j := 0; j < 12; j++ {
				ranked = append(ranked, strconv.Itoa(rng.Intn(40)+1))
			}
			subs = append(subs, model.Submission{
				ID:          "u" + strconv.Itoa(i),
				Order:       rng.Intn(50) + 1,
				RankedItems: ranked,
				SubmittedAt: int64(1000 + i),
			})
		}

		out := engine().Allocate(subs, allocation.ScenarioCurrent, nil, 1)

		Convey("Then no item is assigned twice", func() {
			seen := map[string]bool{}
			for _, r := range out {
				for _, id := range r.AssignedItemIDs {
					So(seen[id], ShouldBeFalse)
					seen[id] = true
				}
			}
		})

		Convey("Then every user gets at most one item", func() {
			for _, r := range out {
				So(len(r.AssignedItemIDs), ShouldBeLessThanOrEqualTo, 1)
			}
		})

		Convey("Then backup lists never contain the assignment nor duplicates", func() {
			for _, r := range out {
				seen := map[string]bool{}
				for _, id := range r.AvailableByPreference {
					So(seen[id], ShouldBeFalse)
					seen[id] = true
					if len(r.AssignedItemIDs) == 1 {
						So(id, ShouldNotEqual, r.AssignedItemIDs[0])
					}
				}
				So(len(r.AvailableByPreference), ShouldBeLessThanOrEqualTo, 40)
			}
		})

		Convey("Then the current-state scenario is deterministic", func() {
			again := engine().Allocate(subs, allocation.ScenarioCurrent, nil, 1)
			So(again, ShouldResemble, out)
		})
	})
}

func TestAllocatePreferenceDepth(t *testing.T) {
	Convey("Given three users and the preference-depth scenario", t, func() {
		subs := []model.Submission{
			{ID: "u1", Order: 1, RankedItems: []string{"A", "B"}, SubmittedAt: 1},
			{ID: "u2", Order: 2, RankedItems: []string{"C", "D"}, SubmittedAt: 2},
			{ID: "u3", Order: 3, RankedItems: []string{"B", "D", "E"}, SubmittedAt: 3},
		}

		Convey("When depth is zero (current state)", func() {
			out := engine().Allocate(subs, allocation.ScenarioCurrent, nil, 0)

			Convey("Then only actual assignments block the backup list", func() {
				So(byUser(out, "u3").AssignedItemIDs, ShouldResemble, []string{"B"})
				So(byUser(out, "u3").AvailableByPreference, ShouldResemble, []string{"D", "E"})
			})
		})

		Convey("When depth covers the higher users' top two", func() {
			out := engine().Allocate(subs, allocation.ScenarioPreferenceDepth, nil, 2)

			Convey("Then their unclaimed wishes block the backup list too", func() {
				So(byUser(out, "u3").AssignedItemIDs, ShouldResemble, []string{"B"})
				So(byUser(out, "u3").AvailableByPreference, ShouldResemble, []string{"E"})
			})

			Convey("Then the primary assignments are untouched by depth", func() {
				So(byUser(out, "u1").AssignedItemIDs, ShouldResemble, []string{"A"})
				So(byUser(out, "u2").AssignedItemIDs, ShouldResemble, []string{"C"})
			})
		})

		Convey("When everything above is consumed", func() {
			tight := []model.Submission{
				{ID: "u1", Order: 1, RankedItems: []string{"A", "B", "C"}, SubmittedAt: 1},
				{ID: "u2", Order: 2, RankedItems: []string{"B", "C", "A"}, SubmittedAt: 2},
				{ID: "u3", Order: 3, RankedItems: []string{"C", "B", "A"}, SubmittedAt: 3},
			}
			out := engine().Allocate(tight, allocation.ScenarioPreferenceDepth, nil, 1)

			Convey("Then the backup list is empty, which is a normal outcome", func() {
				// Taken for u3: assignments {A, B} plus top-1 wishes {A, B};
				// C is u3's own assignment, so nothing remains.
				So(byUser(out, "u3").AvailableByPreference, ShouldBeEmpty)
			})
		})
	})
}

func TestAllocateForUserBlockedDestinations(t *testing.T) {
	Convey("Given a catalog and one higher-priority user", t, func() {
		catalog := []model.Item{
			{ID: "101", Localidad: "Madrid", Centro: "IES Norte"},
			{ID: "102", Localidad: "Madrid", Centro: "IES Sur"},
			{ID: "103", Localidad: "Sevilla", Centro: "IES Norte"},
			{ID: "104", Localidad: "Sevilla", Centro: "IES Sur"},
		}
		above := []model.Submission{
			{ID: "u1", Order: 1, RankedItems: []string{"104"}, SubmittedAt: 1},
		}
		target := model.Submission{
			ID: "u2", Order: 2, RankedItems: []string{"101", "102", "103", "104"}, SubmittedAt: 2,
		}

		Convey("When a localidad is blocked", func() {
			out := engine().AllocateForUser(above, target, allocation.ScenarioBlockedDestinations,
				catalog, model.BlockedItems{SelectedLocalidades: []string{"Madrid"}}, 1)

			Convey("Then the assignment skips every item in it", func() {
				So(out.AssignedItemIDs, ShouldResemble, []string{"103"})
			})

			Convey("Then blocked items never reach the backup list", func() {
				So(out.AvailableByPreference, ShouldBeEmpty)
			})
		})

		Convey("When a centro is blocked", func() {
			out := engine().AllocateForUser(above, target, allocation.ScenarioBlockedDestinations,
				catalog, model.BlockedItems{SelectedCentros: []string{"IES Norte"}}, 1)

			Convey("Then items of that centro are gone across localidades", func() {
				So(out.AssignedItemIDs, ShouldResemble, []string{"102"})
				So(out.AvailableByPreference, ShouldBeEmpty)
			})
		})

		Convey("When localidades and centros are blocked together", func() {
			out := engine().AllocateForUser(above, target, allocation.ScenarioBlockedDestinations,
				catalog, model.BlockedItems{
					SelectedLocalidades: []string{"Madrid"},
					SelectedCentros:     []string{"IES Norte"},
				}, 1)

			Convey("Then only items matching both filters are removed", func() {
				So(out.AssignedItemIDs, ShouldResemble, []string{"102"})
			})
		})

		Convey("When the filter is empty", func() {
			blocked := engine().AllocateForUser(above, target, allocation.ScenarioBlockedDestinations,
				catalog, model.BlockedItems{}, 1)
			current := engine().AllocateForUser(above, target, allocation.ScenarioCurrent,
				catalog, model.BlockedItems{}, 1)

			Convey("Then the run behaves exactly like the current state", func() {
				So(blocked, ShouldResemble, current)
				So(blocked.AssignedItemIDs, ShouldResemble, []string{"101"})
			})
		})
	})
}

func TestAllocateRemainingUsers(t *testing.T) {
	Convey("Given gaps in the priority sequence", t, func() {
		subs := []model.Submission{
			{ID: "u2", Order: 2, RankedItems: []string{"1", "2"}, SubmittedAt: 5000},
			{ID: "u5", Order: 5, RankedItems: []string{"2", "3"}, SubmittedAt: 6000},
		}

		out := engine().Allocate(subs, allocation.ScenarioRemainingUsers, nil, 1)

		Convey("Then results include synthetic users for orders 1, 3 and 4", func() {
			ids := map[string]bool{}
			for _, r := range out {
				ids[r.UserID] = true
			}
			So(ids["fake_1"], ShouldBeTrue)
			So(ids["fake_3"], ShouldBeTrue)
			So(ids["fake_4"], ShouldBeTrue)
			So(len(out), ShouldEqual, 5)
		})

		Convey("Then real users are still present with one item at most", func() {
			So(len(byUser(out, "u2").AssignedItemIDs), ShouldBeLessThanOrEqualTo, 1)
			So(len(byUser(out, "u5").AssignedItemIDs), ShouldBeLessThanOrEqualTo, 1)
		})
	})
}
