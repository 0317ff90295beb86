package model_test

import (
	"testing"

	"github.com/mvidal/destino/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSubmissionBefore(t *testing.T) {
	Convey("Given two submissions", t, func() {
		Convey("When orders differ", func() {
			a := model.Submission{ID: "a", Order: 1, SubmittedAt: 2000}
			b := model.Submission{ID: "b", Order: 2, SubmittedAt: 1000}

			Convey("Then the lower order is served first regardless of timestamps", func() {
				So(a.Before(b), ShouldBeTrue)
				So(b.Before(a), ShouldBeFalse)
			})
		})

		Convey("When orders tie", func() {
			early := model.Submission{ID: "early", Order: 5, SubmittedAt: 10}
			late := model.Submission{ID: "late", Order: 5, SubmittedAt: 20}

			Convey("Then the earlier submittedAt wins", func() {
				So(early.Before(late), ShouldBeTrue)
				So(late.Before(early), ShouldBeFalse)
			})
		})

		Convey("When order and submittedAt both tie", func() {
			a := model.Submission{ID: "a", Order: 5, SubmittedAt: 10}
			b := model.Submission{ID: "b", Order: 5, SubmittedAt: 10}

			Convey("Then the ID breaks the tie deterministically", func() {
				So(a.Before(b), ShouldBeTrue)
				So(b.Before(a), ShouldBeFalse)
			})
		})

		Convey("When orders are zero or negative", func() {
			neg := model.Submission{ID: "neg", Order: -3, SubmittedAt: 2}
			zero := model.Submission{ID: "zero", Order: 0, SubmittedAt: 1}

			Convey("Then they still sort below positive orders", func() {
				So(neg.Before(zero), ShouldBeTrue)
				So(zero.Before(model.Submission{ID: "one", Order: 1}), ShouldBeTrue)
			})
		})
	})
}

func TestNormalizeID(t *testing.T) {
	Convey("Given item identifiers in the shapes catalogs and clients produce", t, func() {
		Convey("Then all of them normalize to the same canonical string", func() {
			So(model.NormalizeID("101"), ShouldEqual, "101")
			So(model.NormalizeID(101), ShouldEqual, "101")
			So(model.NormalizeID(int64(101)), ShouldEqual, "101")
			So(model.NormalizeID(float64(101)), ShouldEqual, "101") // JSON number
		})

		Convey("Then NormalizeIDs preserves order", func() {
			So(model.NormalizeIDs([]any{3, "1", float64(2)}), ShouldResemble, []string{"3", "1", "2"})
		})
	})
}

func TestBlockedItemsEmpty(t *testing.T) {
	Convey("Given blocked-items selections", t, func() {
		So(model.BlockedItems{}.Empty(), ShouldBeTrue)
		So(model.BlockedItems{SelectedLocalidades: []string{"Madrid"}}.Empty(), ShouldBeFalse)
		So(model.BlockedItems{SelectedCentros: []string{"IES Norte"}}.Empty(), ShouldBeFalse)
	})
}
