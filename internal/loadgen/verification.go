package loadgen

import (
	"context"
	"fmt"
	"net/url"

	"github.com/okian/appraise/internal/domain/catalog"
	"github.com/okian/appraise/internal/domain/model"
	"github.com/okian/appraise/internal/domain/scoring"
	"github.com/okian/appraise/internal/domain/taxonomy"
	"github.com/okian/appraise/pkg/logger"
)

// verify fetches the stored report of each accepted submission and compares
// it with a local engine run over the same answers.
func verify(ctx context.Context, client *httpClient, cfg *Config, accepted []model.Submission,
	cat catalog.Catalog, tax *taxonomy.Taxonomy, engine *scoring.Engine, stats *Stats,
) error {
	log := logger.Get().Named("loadgen")
	sample := accepted
	if cfg.Verify > 0 && cfg.Verify < len(sample) {
		sample = sample[:cfg.Verify]
	}

	for _, sub := range sample {
		want, err := engine.BuildReport(sub, cat, tax)
		if err != nil {
			return fmt.Errorf("local scoring of %s: %w", sub.ID, err)
		}
		var got model.Report
		if err := client.getJSON(ctx, "/reports/"+url.PathEscape(sub.RespondentID), &got); err != nil {
			stats.Unavailable++
			if cfg.Verbose {
				log.Warn(ctx, "report unavailable", logger.String("respondent_id", sub.RespondentID), logger.Error(err))
			}
			continue
		}
		if diff := Compare(want, got); diff != "" {
			stats.Mismatched++
			log.Warn(ctx, "report mismatch",
				logger.String("respondent_id", sub.RespondentID),
				logger.String("diff", diff),
			)
			continue
		}
		stats.Verified++
	}
	log.Info(ctx, "verification completed",
		logger.Int("verified", stats.Verified),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("unavailable", stats.Unavailable),
	)
	return nil
}

// Compare returns a description of the first difference between two
// reports, or "" when totals, sub-dimension averages, dominant labels and
// diagnostics agree.
func Compare(want, got model.Report) string {
	if len(want.Categories) != len(got.Categories) {
		return fmt.Sprintf("category count %d != %d", len(got.Categories), len(want.Categories))
	}
	for i, w := range want.Categories {
		g := got.Categories[i]
		switch {
		case g.Category != w.Category:
			return fmt.Sprintf("category %d is %q, want %q", i, g.Category, w.Category)
		case g.Total != w.Total:
			return fmt.Sprintf("%s total %v, want %v", w.Category, g.Total, w.Total)
		case g.DominantLabel != w.DominantLabel:
			return fmt.Sprintf("%s dominant %q, want %q", w.Category, g.DominantLabel, w.DominantLabel)
		case len(g.SubDimensions) != len(w.SubDimensions):
			return fmt.Sprintf("%s sub-dimension count %d != %d", w.Category, len(g.SubDimensions), len(w.SubDimensions))
		}
		for j, wd := range w.SubDimensions {
			if gd := g.SubDimensions[j]; gd.SubDimension != wd.SubDimension || gd.Average != wd.Average {
				return fmt.Sprintf("%s/%s average %v, want %v", w.Category, wd.SubDimension, gd.Average, wd.Average)
			}
		}
	}
	if want.Diagnostics != got.Diagnostics {
		return fmt.Sprintf("diagnostics %+v, want %+v", got.Diagnostics, want.Diagnostics)
	}
	return ""
}
