package items_test

import (
	"testing"

	"github.com/mvidal/destino/internal/domain/items"
	"github.com/mvidal/destino/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func catalog() []model.Item {
	return []model.Item{
		{ID: "1", Localidad: "Madrid", Centro: "IES Norte"},
		{ID: "2", Localidad: "Madrid", Centro: "IES Sur"},
		{ID: "3", Localidad: "Toledo", Centro: "IES Norte"},
		{ID: "4", Localidad: "Toledo", Centro: "CEIP Centro"},
	}
}

func TestBlockedItemIDs(t *testing.T) {
	Convey("Given a season catalog", t, func() {
		cat := catalog()

		Convey("When no filter is selected", func() {
			So(items.BlockedItemIDs(cat, model.BlockedItems{}), ShouldBeEmpty)
		})

		Convey("When only localidades are selected", func() {
			got := items.BlockedItemIDs(cat, model.BlockedItems{SelectedLocalidades: []string{"Madrid"}})

			Convey("Then every item in those localidades is blocked", func() {
				So(got, ShouldResemble, []string{"1", "2"})
			})
		})

		Convey("When only centros are selected", func() {
			got := items.BlockedItemIDs(cat, model.BlockedItems{SelectedCentros: []string{"IES Norte"}})
			So(got, ShouldResemble, []string{"1", "3"})
		})

		Convey("When both axes are selected", func() {
			got := items.BlockedItemIDs(cat, model.BlockedItems{
				SelectedLocalidades: []string{"Toledo"},
				SelectedCentros:     []string{"IES Norte"},
			})

			Convey("Then only the intersection matches", func() {
				So(got, ShouldResemble, []string{"3"})
			})
		})
	})
}

func TestMostDesiredItems(t *testing.T) {
	Convey("Given submissions with first preferences", t, func() {
		subs := []model.Submission{
			{ID: "u1", RankedItems: []string{"2", "1"}},
			{ID: "u2", RankedItems: []string{"2", "3"}},
			{ID: "u3", RankedItems: []string{"1"}},
			{ID: "u4"}, // no preferences, ignored
		}

		Convey("Then items rank by first-preference count", func() {
			So(items.MostDesiredItems(subs, 2), ShouldResemble, []string{"2", "1"})
		})

		Convey("Then the limit caps the result", func() {
			So(items.MostDesiredItems(subs, 1), ShouldResemble, []string{"2"})
		})
	})
}

func TestItemsFromPopularCentros(t *testing.T) {
	Convey("Given submissions pointing at centros", t, func() {
		cat := catalog()
		subs := []model.Submission{
			{ID: "u1", RankedItems: []string{"1"}}, // IES Norte
			{ID: "u2", RankedItems: []string{"3"}}, // IES Norte
			{ID: "u3", RankedItems: []string{"2"}}, // IES Sur
		}

		Convey("When limited to the single most popular centro", func() {
			got := items.ItemsFromPopularCentros(subs, cat, 1)

			Convey("Then all of that centro's items are returned", func() {
				So(got, ShouldResemble, []string{"1", "3"})
			})
		})

		Convey("When no submission references a known item", func() {
			got := items.ItemsFromPopularCentros([]model.Submission{{ID: "x", RankedItems: []string{"999"}}}, cat, 2)
			So(got, ShouldBeEmpty)
		})
	})
}
