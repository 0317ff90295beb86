package allocation_test

import (
	"testing"

	"github.com/mvidal/destino/internal/domain/allocation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParamsFor(t *testing.T) {
	Convey("Given the scenario codes", t, func() {
		Convey("Then current state carries no switches", func() {
			So(allocation.ParamsFor(allocation.ScenarioCurrent, 5), ShouldResemble, allocation.Params{})
		})

		Convey("Then remaining-users only enables the synthetic fill", func() {
			p := allocation.ParamsFor(allocation.ScenarioRemainingUsers, 5)
			So(p.IncludeSyntheticUsers, ShouldBeTrue)
			So(p.CompetitionDepth, ShouldEqual, 0)
			So(p.BlockSpecificItems, ShouldBeFalse)
		})

		Convey("Then blocked-destinations only enables the item filter", func() {
			p := allocation.ParamsFor(allocation.ScenarioBlockedDestinations, 5)
			So(p.BlockSpecificItems, ShouldBeTrue)
			So(p.CompetitionDepth, ShouldEqual, 0)
		})

		Convey("Then preference-depth passes the caller's depth through", func() {
			So(allocation.ParamsFor(allocation.ScenarioPreferenceDepth, 7).CompetitionDepth, ShouldEqual, 7)
		})

		Convey("Then a negative depth is clamped to zero", func() {
			So(allocation.ParamsFor(allocation.ScenarioPreferenceDepth, -1).CompetitionDepth, ShouldEqual, 0)
		})

		Convey("Then unknown codes fall back to current state", func() {
			So(allocation.ParamsFor(42, 5), ShouldResemble, allocation.Params{})
			So(allocation.ParamsFor(-1, 5), ShouldResemble, allocation.Params{})
		})
	})
}
