package loadgen_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/appraise/internal/adapters/http/api"
	service "github.com/okian/appraise/internal/app"
	"github.com/okian/appraise/internal/domain/catalog"
	"github.com/okian/appraise/internal/domain/model"
	"github.com/okian/appraise/internal/domain/scoring"
	"github.com/okian/appraise/internal/domain/taxonomy"
	"github.com/okian/appraise/internal/loadgen"
	"github.com/okian/appraise/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGenerator(t *testing.T) {
	Convey("Given a generator over a small questionnaire", t, func() {
		qs := []model.Question{
			{ID: 1, Type: model.ResponseRating},
			{ID: 2, Type: model.ResponseRating},
			{ID: 3, Type: model.ResponseSingleChoice},
		}
		subs := loadgen.NewGenerator(qs, 0.5, 42).Generate(50)

		Convey("Then every submission answers every question once", func() {
			So(subs, ShouldHaveLength, 50)
			ids := make(map[string]bool)
			for _, s := range subs {
				So(s.Validate(), ShouldBeNil)
				So(s.Answers, ShouldHaveLength, 3)
				So(s.Answers[2].QuestionID, ShouldEqual, 3)
				So(ids[s.ID], ShouldBeFalse)
				ids[s.ID] = true
			}
		})

		Convey("Then the same seed yields the same answers", func() {
			again := loadgen.NewGenerator(qs, 0.5, 42).Generate(50)
			for i := range subs {
				So(again[i].Answers, ShouldResemble, subs[i].Answers)
			}
		})
	})
}

func TestCompare(t *testing.T) {
	Convey("Given two reports", t, func() {
		base := model.Report{
			Categories: []model.CategoryScore{{
				Category: "traits", Total: 3.4, DominantLabel: "A/B",
				SubDimensions: []model.DimensionScore{{SubDimension: "a", Average: 4}},
			}},
			Diagnostics: model.Diagnostics{Answered: 5, Scored: 5},
		}
		clone := func() model.Report {
			r := base
			r.Categories = []model.CategoryScore{base.Categories[0]}
			r.Categories[0].SubDimensions = []model.DimensionScore{base.Categories[0].SubDimensions[0]}
			return r
		}

		Convey("Then equal reports have no difference", func() {
			So(loadgen.Compare(base, clone()), ShouldBeEmpty)
		})

		Convey("Then each kind of difference is described", func() {
			r := clone()
			r.Categories[0].Total = 3.5
			So(loadgen.Compare(base, r), ShouldContainSubstring, "total")

			r = clone()
			r.Categories[0].DominantLabel = "A"
			So(loadgen.Compare(base, r), ShouldContainSubstring, "dominant")

			r = clone()
			r.Categories[0].SubDimensions[0].Average = 1
			So(loadgen.Compare(base, r), ShouldContainSubstring, "traits/a")

			r = clone()
			r.Diagnostics.Malformed = 1
			So(loadgen.Compare(base, r), ShouldContainSubstring, "diagnostics")

			r = clone()
			r.Categories = nil
			So(loadgen.Compare(base, r), ShouldContainSubstring, "category count")
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx := context.Background()
		reg, err := taxonomy.NewRegistry()
		So(err, ShouldBeNil)
		tax, err := reg.Get(taxonomy.DefaultVersion)
		So(err, ShouldBeNil)

		svc := service.New(tax, catalog.FromTaxonomy(tax), service.WithWorkerCount(4), service.WithQueueSize(1000))
		So(svc.Start(ctx), ShouldBeNil)
		srv := httptest.NewServer(api.NewServer(svc, svc).Handler(ctx))
		defer srv.Close()
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When a load run completes", func() {
			out := filepath.Join(t.TempDir(), "subs", "generated.json")
			stats, err := loadgen.Run(ctx, &loadgen.Config{
				BaseURL:       srv.URL,
				Submissions:   25,
				Workers:       4,
				Timeout:       5 * time.Second,
				Settle:        5 * time.Second,
				MalformedRate: 0.1,
				Seed:          7,
				OutputFile:    out,
			}, reg, scoring.NewEngine())

			Convey("Then every stored report matches local scoring", func() {
				So(err, ShouldBeNil)
				So(stats.Accepted, ShouldEqual, 25)
				So(stats.Verified, ShouldEqual, 25)
				So(stats.Mismatched, ShouldEqual, 0)
				So(svc.GetStats().Reports, ShouldEqual, 25)
			})

			Convey("Then the generated submissions are saved", func() {
				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var subs []model.Submission
				So(json.Unmarshal(data, &subs), ShouldBeNil)
				So(subs, ShouldHaveLength, 25)
			})
		})

		Convey("When the service is unreachable", func() {
			_, err := loadgen.Run(ctx, &loadgen.Config{
				BaseURL:     "http://127.0.0.1:1",
				Submissions: 1,
				Workers:     1,
				Timeout:     time.Second,
			}, reg, scoring.NewEngine())

			Convey("Then the run fails the health check", func() {
				So(errors.Is(err, loadgen.ErrUnhealthy), ShouldBeTrue)
			})
		})
	})
}
