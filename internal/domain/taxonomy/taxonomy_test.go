package taxonomy_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/appraise/internal/domain/model"
	"github.com/okian/appraise/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given a taxonomy mixing ids and ranges", t, func() {
		doc := `
version: " beta "
reverse_items: [2]
categories:
  - name: disc
    scale: raw
    dominant: true
    sub_dimensions:
      - name: d
        label: D-Dominance
        ids: [5, 3]
        ranges: [{from: 1, to: 3}]
      - name: i
        ranges: [{from: 10, to: 11}]
`
		tax, err := taxonomy.Parse([]byte(doc))

		Convey("Then ids are expanded, sorted and deduplicated", func() {
			So(err, ShouldBeNil)
			So(tax.Version, ShouldEqual, "beta")
			c, ok := tax.Category("disc")
			So(ok, ShouldBeTrue)
			So(c.Dominant, ShouldBeTrue)
			So(c.SubDimensions[0].QuestionIDs, ShouldResemble, []int{1, 2, 3, 5})
			So(c.SubDimensions[1].QuestionIDs, ShouldResemble, []int{10, 11})
			So(tax.QuestionIDs(), ShouldResemble, []int{1, 2, 3, 5, 10, 11})
		})

		Convey("Then lookups resolve locations and reverse flags", func() {
			loc, ok := tax.Locate(11)
			So(ok, ShouldBeTrue)
			So(loc, ShouldResemble, taxonomy.Location{Category: "disc", SubDimension: "i"})
			_, ok = tax.Locate(4)
			So(ok, ShouldBeFalse)
			So(tax.IsReverse(2), ShouldBeTrue)
			So(tax.IsReverse(3), ShouldBeFalse)
		})

		Convey("Then missing labels fall back to names", func() {
			c, _ := tax.Category("disc")
			So(c.DisplayLabel(), ShouldEqual, "disc")
			So(c.SubDimensions[0].DisplayLabel(), ShouldEqual, "D-Dominance")
			So(c.SubDimensions[1].DisplayLabel(), ShouldEqual, "i")
		})
	})

	Convey("Given invalid taxonomies", t, func() {
		cases := []struct{ name, doc string }{
			{"missing version", `
categories: [{name: a, scale: raw, sub_dimensions: [{name: x, ids: [1]}]}]`},
			{"no categories", `version: v9`},
			{"unknown scale", `
version: v9
categories: [{name: a, scale: zscore, sub_dimensions: [{name: x, ids: [1]}]}]`},
			{"reserved sub-dimension", `
version: v9
categories: [{name: a, scale: raw, sub_dimensions: [{name: total, ids: [1]}]}]`},
			{"duplicate category", `
version: v9
categories:
  - {name: a, scale: raw, sub_dimensions: [{name: x, ids: [1]}]}
  - {name: a, scale: raw, sub_dimensions: [{name: y, ids: [2]}]}`},
			{"shared question id", `
version: v9
categories:
  - {name: a, scale: raw, sub_dimensions: [{name: x, ranges: [{from: 1, to: 5}]}]}
  - {name: b, scale: raw, sub_dimensions: [{name: y, ids: [5]}]}`},
			{"reversed range", `
version: v9
categories: [{name: a, scale: raw, sub_dimensions: [{name: x, ranges: [{from: 5, to: 1}]}]}]`},
			{"non-positive id", `
version: v9
categories: [{name: a, scale: raw, sub_dimensions: [{name: x, ids: [0]}]}]`},
			{"non-numeric id", `
version: v9
categories: [{name: a, scale: raw, sub_dimensions: [{name: x, ids: [one]}]}]`},
			{"reverse item outside every sub-dimension", `
version: v9
reverse_items: [1, 7]
categories: [{name: a, scale: raw, sub_dimensions: [{name: x, ids: [1, 2]}]}]`},
		}

		for _, tc := range cases {
			Convey("Then "+tc.name+" is rejected", func() {
				_, err := taxonomy.Parse([]byte(tc.doc))
				So(errors.Is(err, taxonomy.ErrInvalidTaxonomy), ShouldBeTrue)
			})
		}
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg, err := taxonomy.NewRegistry()
		So(err, ShouldBeNil)

		Convey("Then the built-in version is available", func() {
			tax, err := reg.Get(taxonomy.DefaultVersion)
			So(err, ShouldBeNil)
			So(len(tax.Categories), ShouldEqual, 4)
			So(len(tax.ReverseItems), ShouldEqual, 42)
			So(len(tax.QuestionIDs()), ShouldEqual, 180)

			apt, ok := tax.Category("aptitude")
			So(ok, ShouldBeTrue)
			So(apt.Scale, ShouldEqual, model.ScalePercentage)
			sizes := make([]int, 0, len(apt.SubDimensions))
			for _, s := range apt.SubDimensions {
				sizes = append(sizes, len(s.QuestionIDs))
			}
			So(sizes, ShouldResemble, []int{15, 15, 14, 16})

			for _, name := range []string{"personality", "disc"} {
				c, _ := tax.Category(name)
				So(c.Dominant, ShouldBeTrue)
			}
			mgmt, _ := tax.Category("management")
			So(mgmt.Dominant, ShouldBeFalse)
		})

		Convey("Then an unknown version is reported", func() {
			_, err := reg.Get("v0")
			So(errors.Is(err, taxonomy.ErrUnknownVersion), ShouldBeTrue)
		})

		Convey("When a directory with another version is loaded", func() {
			dir := t.TempDir()
			doc := "version: v2\ncategories: [{name: a, scale: raw, sub_dimensions: [{name: x, ids: [1]}]}]\n"
			So(os.WriteFile(filepath.Join(dir, "v2.yml"), []byte(doc), 0o600), ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600), ShouldBeNil)

			So(reg.LoadDir(dir), ShouldBeNil)

			Convey("Then both versions are listed", func() {
				So(reg.Versions(), ShouldResemble, []string{"v1", "v2"})
			})

			Convey("Then loading it again is a duplicate", func() {
				err := reg.LoadDir(dir)
				So(errors.Is(err, taxonomy.ErrDuplicateVersion), ShouldBeTrue)
			})
		})

		Convey("When a directory holds an invalid version", func() {
			dir := t.TempDir()
			So(os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("version: bad\n"), 0o600), ShouldBeNil)

			err := reg.LoadDir(dir)
			So(errors.Is(err, taxonomy.ErrInvalidTaxonomy), ShouldBeTrue)
		})
	})
}
