package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/appraise/internal/domain/model"
	"github.com/okian/appraise/internal/domain/scoring"
	"github.com/okian/appraise/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAggregate(t *testing.T) {
	Convey("Given a percentage-scale category", t, func() {
		c := taxonomy.Category{
			Name:  "aptitude",
			Scale: model.ScalePercentage,
			SubDimensions: []taxonomy.SubDimension{
				{Name: "verbal", QuestionIDs: []int{1, 2}},
				{Name: "logic", QuestionIDs: []int{3}},
				{Name: "spatial", QuestionIDs: []int{4}},
			},
		}

		Convey("When three items score (1,1),(0,1),(1,1)", func() {
			cs := scoring.Aggregate(c, map[string][]scoring.Item{
				"verbal": {{QuestionID: 2, Score: 0, Max: 1}, {QuestionID: 1, Score: 1, Max: 1}},
				"logic":  {{QuestionID: 3, Score: 1, Max: 1}},
			})

			Convey("Then the total is 66.67", func() {
				So(cs.Total, ShouldEqual, 66.67)
				So(cs.ItemCount, ShouldEqual, 3)
			})

			Convey("And each sub-dimension is normalized on its own", func() {
				So(cs.SubDimensions[0].Average, ShouldEqual, 50)
				So(cs.SubDimensions[1].Average, ShouldEqual, 100)
				So(cs.SubDimensions[2].Average, ShouldEqual, 0)
				So(cs.SubDimensions[2].ItemCount, ShouldEqual, 0)
			})

			Convey("And the label falls back to the name", func() {
				So(cs.Label, ShouldEqual, "aptitude")
				So(cs.SubDimensions[0].Label, ShouldEqual, "verbal")
			})
		})
	})

	Convey("Given a raw-scale category with unequal sub-dimensions", t, func() {
		c := taxonomy.Category{
			Name:  "traits",
			Scale: model.ScaleRaw,
			SubDimensions: []taxonomy.SubDimension{
				{Name: "x", QuestionIDs: []int{1}},
				{Name: "y", QuestionIDs: []int{2, 3, 4}},
			},
		}

		Convey("When aggregating", func() {
			cs := scoring.Aggregate(c, map[string][]scoring.Item{
				"x": {{QuestionID: 1, Score: 5, Max: 5}},
				"y": {{QuestionID: 2, Score: 1, Max: 5}, {QuestionID: 3, Score: 1, Max: 5}, {QuestionID: 4, Score: 2, Max: 5}},
			})

			Convey("Then the total is weighted by item, not by sub-dimension", func() {
				So(cs.Total, ShouldEqual, 2.25) // (5+1+1+2)/4
				So(cs.SubDimensions[0].Average, ShouldEqual, 5)
				So(cs.SubDimensions[1].Average, ShouldEqual, 1.33)
			})
		})

		Convey("When nothing was answered", func() {
			cs := scoring.Aggregate(c, nil)

			Convey("Then everything averages zero", func() {
				So(cs.Total, ShouldEqual, 0)
				for _, d := range cs.SubDimensions {
					So(d.Average, ShouldEqual, 0)
				}
			})
		})

		Convey("When item order differs", func() {
			items := []scoring.Item{{QuestionID: 4, Score: 0.1, Max: 5}, {QuestionID: 2, Score: 0.2, Max: 5}, {QuestionID: 3, Score: 0.3, Max: 5}}
			reversed := []scoring.Item{items[2], items[1], items[0]}
			a := scoring.Aggregate(c, map[string][]scoring.Item{"y": items})
			b := scoring.Aggregate(c, map[string][]scoring.Item{"y": reversed})

			Convey("Then the result is identical", func() {
				So(math.Float64bits(a.Total), ShouldEqual, math.Float64bits(b.Total))
			})
		})
	})
}
