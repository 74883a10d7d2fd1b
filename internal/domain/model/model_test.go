package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/appraise/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRawValue_UnmarshalJSON(t *testing.T) {
	Convey("Given answers encoded in different JSON shapes", t, func() {
		var sub model.Submission
		body := `{"respondent_id":"e1","answers":[
			{"id":1,"answer":"2"},
			{"id":2,"answer":4},
			{"id":3,"answer":null},
			{"id":4,"answer":true},
			{"id":5,"answer":" a "},
			{"id":6,"answer":2.5},
			{"id":7,"answer":4.0},
			{"id":8,"answer":-2.9},
			{"id":9,"answer":"3.5"},
			{"id":10,"answer":1e20}
		]}`
		So(json.Unmarshal([]byte(body), &sub), ShouldBeNil)

		Convey("Then every value is kept as text and numbers are truncated", func() {
			got := make([]string, 0, len(sub.Answers))
			for _, a := range sub.Answers {
				got = append(got, a.Value.String())
			}
			So(got, ShouldResemble, []string{"2", "4", "", "true", " a ", "2", "4", "-2", "3.5", "2147483647"})
		})
	})
}

func TestSubmission_Validate(t *testing.T) {
	Convey("Given submissions at the boundary", t, func() {
		Convey("Then a blank respondent id is rejected first", func() {
			s := model.Submission{RespondentID: "  "}
			err := s.Validate()
			var pe *model.PreconditionError
			So(errors.As(err, &pe), ShouldBeTrue)
			So(errors.Is(err, model.ErrMissingRespondentID), ShouldBeTrue)
			So(pe.Precondition(), ShouldEqual, "missing respondent id")
		})

		Convey("Then an empty answer set is rejected", func() {
			s := model.Submission{RespondentID: "e1", Answers: []model.Answer{}}
			err := s.Validate()
			So(errors.Is(err, model.ErrEmptySubmission), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `"e1"`)
		})

		Convey("Then a populated submission passes", func() {
			s := model.Submission{RespondentID: "e1", Answers: []model.Answer{{QuestionID: 1, Value: "3"}}}
			So(s.Validate(), ShouldBeNil)
		})
	})
}

func TestParseResponseType(t *testing.T) {
	Convey("Given catalog spellings", t, func() {
		for _, s := range []string{"rating", " Likert ", "评分", "反向题"} {
			got, err := model.ParseResponseType(s)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, model.ResponseRating)
		}
		for _, s := range []string{"single_choice", "Single-Choice", "单选"} {
			got, err := model.ParseResponseType(s)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, model.ResponseSingleChoice)
		}
		_, err := model.ParseResponseType("essay")
		So(errors.Is(err, model.ErrUnknownResponseType), ShouldBeTrue)
	})
}

func TestReport(t *testing.T) {
	Convey("Given a report", t, func() {
		r := model.Report{
			RespondentID: "e1",
			Categories: []model.CategoryScore{
				{
					Category: "disc", Label: "DISC", Scale: model.ScaleRaw, Total: 3.5,
					SubDimensions: []model.DimensionScore{
						{SubDimension: "d", Label: "D-Dominance", Average: 4},
						{SubDimension: "i", Label: "I-Influence", Average: 3},
					},
					DominantLabel: "D-Dominance",
				},
				{
					Category: "aptitude", Label: "Aptitude", Scale: model.ScalePercentage, Total: 66.667,
					SubDimensions: []model.DimensionScore{{SubDimension: "verbal", Label: "Verbal", Average: 50}},
				},
			},
		}

		Convey("Then categories can be looked up by name", func() {
			c, ok := r.Category("aptitude")
			So(ok, ShouldBeTrue)
			So(c.Scale, ShouldEqual, model.ScalePercentage)
			_, ok = r.Category("missing")
			So(ok, ShouldBeFalse)
			So(r.Totals(), ShouldResemble, map[string]float64{"disc": 3.5, "aptitude": 66.667})
		})

		Convey("Then the flattened text lists totals, facets and types", func() {
			want := "DISC total: 3.50\n" +
				"- D-Dominance: 4.00\n" +
				"- I-Influence: 3.00\n" +
				"- type: D-Dominance\n" +
				"\n" +
				"Aptitude total: 66.67\n" +
				"- Verbal: 50.00\n"
			So(r.Text(), ShouldEqual, want)
		})
	})

	Convey("Given scales", t, func() {
		So(model.ScaleRaw.Valid(), ShouldBeTrue)
		So(model.Scale("zscore").Valid(), ShouldBeFalse)
	})
}
