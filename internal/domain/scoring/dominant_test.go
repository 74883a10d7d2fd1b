package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/appraise/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolveDominant(t *testing.T) {
	Convey("Given sub-dimension scores", t, func() {
		Convey("When one label is highest", func() {
			got := scoring.ResolveDominant([]scoring.LabeledScore{{Label: "D", Value: 3.2}, {Label: "I", Value: 4.1}, {Label: "S", Value: 2}})
			So(got, ShouldEqual, "I")
		})

		Convey("When two labels tie for the maximum", func() {
			got := scoring.ResolveDominant([]scoring.LabeledScore{{Label: "A", Value: 5}, {Label: "B", Value: 5}, {Label: "C", Value: 3}})
			So(got, ShouldEqual, "A/B")
		})

		Convey("When more than two labels tie", func() {
			got := scoring.ResolveDominant([]scoring.LabeledScore{{Label: "C", Value: 4}, {Label: "A", Value: 4}, {Label: "B", Value: 4}, {Label: "D", Value: 1}})
			So(got, ShouldEqual, "C/A")
		})

		Convey("When a total pseudo-label outscores everything", func() {
			got := scoring.ResolveDominant([]scoring.LabeledScore{{Label: "total", Value: 9}, {Label: "A", Value: 2}, {Label: "B", Value: 1}})
			So(got, ShouldEqual, "A")
		})

		Convey("When the input is empty", func() {
			So(scoring.ResolveDominant(nil), ShouldEqual, "composite")
		})

		Convey("When no value is numeric", func() {
			got := scoring.ResolveDominant([]scoring.LabeledScore{{Label: "A", Value: math.NaN()}, {Label: "Total", Value: 3}})
			So(got, ShouldEqual, "composite")
		})
	})
}
