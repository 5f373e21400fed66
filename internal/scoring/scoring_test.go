// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"fmt"
	"math"
	"testing"

	"github.com/pdiddy/curation-engine/pkg/types"
)

func rec(cat types.EvidenceCategory, level types.EvidenceLevel, confidence float64, year int) types.EvidenceRecord {
	return types.EvidenceRecord{
		Category:    cat,
		Level:       level,
		Confidence:  confidence,
		Year:        year,
		Description: fmt.Sprintf("%s %s evidence", cat, level),
	}
}

func categoryPoints(t *testing.T, scores []types.CategoryScore, cat types.EvidenceCategory) types.CategoryScore {
	t.Helper()
	for _, s := range scores {
		if s.Category == cat {
			return s
		}
	}
	t.Fatalf("category %s missing from scores", cat)
	return types.CategoryScore{}
}

func inDelta(t *testing.T, name string, got, want, delta float64) {
	t.Helper()
	if math.Abs(got-want) > delta {
		t.Errorf("%s = %.4f, want %.4f (±%.4f)", name, got, want, delta)
	}
}

func TestScoreEmptyCollection(t *testing.T) {
	scores := Score(nil, types.DefaultScoringConfig())

	if len(scores) != 4 {
		t.Fatalf("len(scores) = %d, want 4", len(scores))
	}
	for i, cat := range types.Categories {
		s := scores[i]
		if s.Category != cat {
			t.Errorf("scores[%d].Category = %s, want %s (canonical order)", i, s.Category, cat)
		}
		if s.Points != 0 || s.ItemCount != 0 || s.Capped {
			t.Errorf("scores[%d] = %+v, want zero entry", i, s)
		}
	}
}

func TestScoreSingleStrongVariant(t *testing.T) {
	records := []types.EvidenceRecord{
		rec(types.CategoryVariant, types.LevelStrong, 1.0, 2022),
	}
	scores := Score(records, types.DefaultScoringConfig())

	v := categoryPoints(t, scores, types.CategoryVariant)
	inDelta(t, "variant points", v.Points, 3.0, 1e-9)
	if v.ItemCount != 1 {
		t.Errorf("item count = %d, want 1", v.ItemCount)
	}
}

func TestScoreLevelWeightTable(t *testing.T) {
	cfg := types.DefaultScoringConfig()

	tests := []struct {
		cat   types.EvidenceCategory
		level types.EvidenceLevel
		want  float64
	}{
		{types.CategoryVariant, types.LevelStrong, 3.0},
		{types.CategoryVariant, types.LevelModerate, 1.5},
		{types.CategoryVariant, types.LevelWeak, 0.5},
		{types.CategoryFunctional, types.LevelStrong, 2.4},
		{types.CategoryFunctional, types.LevelModerate, 1.2},
		{types.CategoryFunctional, types.LevelWeak, 0.4},
		{types.CategorySegregation, types.LevelStrong, 3.6},
		{types.CategorySegregation, types.LevelModerate, 1.8},
		{types.CategorySegregation, types.LevelWeak, 0.6},
		{types.CategoryCohort, types.LevelStrong, 4.5},
		{types.CategoryCohort, types.LevelModerate, 2.25},
		{types.CategoryCohort, types.LevelWeak, 0.75},
	}
	for _, tt := range tests {
		t.Run(string(tt.cat)+"/"+string(tt.level), func(t *testing.T) {
			scores := Score([]types.EvidenceRecord{rec(tt.cat, tt.level, 1.0, 2022)}, cfg)
			inDelta(t, "points", categoryPoints(t, scores, tt.cat).Points, tt.want, 1e-9)
		})
	}
}

func TestScoreUnknownLevelCountsButScoresZero(t *testing.T) {
	records := []types.EvidenceRecord{
		rec(types.CategoryVariant, types.EvidenceLevel("inconclusive"), 0.9, 2022),
	}
	scores := Score(records, types.DefaultScoringConfig())

	v := categoryPoints(t, scores, types.CategoryVariant)
	if v.Points != 0 {
		t.Errorf("points = %f, want 0 for unknown level", v.Points)
	}
	if v.ItemCount != 1 {
		t.Errorf("item count = %d, want 1", v.ItemCount)
	}
}

func TestScoreZeroConfidenceIsNeutral(t *testing.T) {
	// Confidence 0 means "not reported", not "worthless".
	records := []types.EvidenceRecord{
		rec(types.CategoryFunctional, types.LevelModerate, 0, 2022),
	}
	scores := Score(records, types.DefaultScoringConfig())
	inDelta(t, "functional points", categoryPoints(t, scores, types.CategoryFunctional).Points, 1.2, 1e-9)
}

func TestScoreCapSaturation(t *testing.T) {
	var records []types.EvidenceRecord
	for i := 0; i < 10; i++ {
		records = append(records, rec(types.CategoryVariant, types.LevelStrong, 1.0, 2022))
	}
	cfg := types.DefaultScoringConfig()
	scores := Score(records, cfg)

	v := categoryPoints(t, scores, types.CategoryVariant)
	if v.Points != cfg.Caps[types.CategoryVariant] {
		t.Errorf("points = %f, want cap %f", v.Points, cfg.Caps[types.CategoryVariant])
	}
	if !v.Capped {
		t.Error("Capped = false, want true")
	}

	// Adding more evidence past the cap never lowers the score.
	more := append(records, rec(types.CategoryVariant, types.LevelWeak, 0.5, 2022))
	again := categoryPoints(t, Score(more, cfg), types.CategoryVariant)
	if again.Points < v.Points {
		t.Errorf("points fell from %f to %f after adding a record", v.Points, again.Points)
	}
	if again.ItemCount != 11 {
		t.Errorf("item count = %d, want 11", again.ItemCount)
	}
}

func TestScoreMonotoneUnderAddedEvidence(t *testing.T) {
	cfg := types.DefaultScoringConfig()
	base := []types.EvidenceRecord{
		rec(types.CategoryCohort, types.LevelModerate, 0.6, 2022),
		rec(types.CategorySegregation, types.LevelWeak, 0.4, 2022),
	}
	before := Total(Score(base, cfg))

	added := append(base, rec(types.CategoryCohort, types.LevelWeak, 0.3, 2022))
	after := Total(Score(added, cfg))

	if after < before {
		t.Errorf("total fell from %f to %f after adding evidence", before, after)
	}
}

func TestScoreRecencyDecay(t *testing.T) {
	cfg := types.DefaultScoringConfig()
	cfg.ReferenceYear = 2024

	tests := []struct {
		name string
		year int
		want float64
	}{
		{"current year", 2024, 3.0},
		{"at threshold age", 2014, 3.0},
		{"one year past threshold", 2013, 3.0 * 0.8},
		{"five years past threshold", 2009, 3.0 * math.Pow(0.8, 5)},
		{"unknown year exempt", 0, 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := Score([]types.EvidenceRecord{rec(types.CategoryVariant, types.LevelStrong, 1.0, tt.year)}, cfg)
			inDelta(t, "points", categoryPoints(t, scores, types.CategoryVariant).Points, tt.want, 1e-9)
		})
	}
}

func TestScoreRecencyNeverRewardsOlderRecords(t *testing.T) {
	cfg := types.DefaultScoringConfig()
	cfg.ReferenceYear = 2024

	prev := math.Inf(1)
	for year := 2024; year >= 1990; year-- {
		scores := Score([]types.EvidenceRecord{rec(types.CategoryVariant, types.LevelStrong, 1.0, year)}, cfg)
		pts := categoryPoints(t, scores, types.CategoryVariant).Points
		if pts > prev+1e-12 {
			t.Fatalf("year %d scores %f, more than the newer year's %f", year, pts, prev)
		}
		prev = pts
	}
}

func TestScoreDefaultReferenceYearIsNewestRecord(t *testing.T) {
	// With no explicit reference year, ages anchor on the newest record so
	// the result does not depend on the wall clock.
	cfg := types.DefaultScoringConfig()
	records := []types.EvidenceRecord{
		rec(types.CategoryVariant, types.LevelStrong, 1.0, 2013),
		rec(types.CategoryVariant, types.LevelStrong, 1.0, 2020),
	}
	scores := Score(records, cfg)
	// 2013 is seven years before 2020: inside the threshold, no decay.
	inDelta(t, "variant points", categoryPoints(t, scores, types.CategoryVariant).Points, 6.0, 1e-9)

	cfg.ReferenceYear = 2030
	scores = Score(records, cfg)
	// Now 2013 is seventeen years old: seven years of decay.
	want := 3.0*math.Pow(0.8, 7) + 3.0
	inDelta(t, "variant points", categoryPoints(t, scores, types.CategoryVariant).Points, want, 1e-9)
}

func TestScoreOrderIndependence(t *testing.T) {
	cfg := types.DefaultScoringConfig()
	cfg.ReferenceYear = 2024

	records := regressionRecords()
	forward := Score(records, cfg)

	reversed := make([]types.EvidenceRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}
	backward := Score(reversed, cfg)

	for i := range forward {
		if forward[i].Category != backward[i].Category || forward[i].ItemCount != backward[i].ItemCount {
			t.Fatalf("scores[%d] differ structurally: %+v vs %+v", i, forward[i], backward[i])
		}
		inDelta(t, string(forward[i].Category)+" points", backward[i].Points, forward[i].Points, 1e-9)
	}
}

// regressionRecords builds the 50-record reference collection over 30
// documents used to pin the scoring arithmetic: 19 scoring records plus 31
// records whose unrecognized level contributes zero points.
func regressionRecords() []types.EvidenceRecord {
	type spec struct {
		cat        types.EvidenceCategory
		level      types.EvidenceLevel
		confidence float64
		year       int
	}
	specs := []spec{
		// variant: 2.76 + 1.80 + 1.20 + 0.45 + 0.30 + 0.25 = 6.76
		{types.CategoryVariant, types.LevelStrong, 0.92, 2022},
		{types.CategoryVariant, types.LevelStrong, 0.75, 2013},
		{types.CategoryVariant, types.LevelModerate, 0.80, 2022},
		{types.CategoryVariant, types.LevelWeak, 0.90, 2022},
		{types.CategoryVariant, types.LevelWeak, 0.60, 2022},
		{types.CategoryVariant, types.LevelWeak, 0.50, 2022},
		// functional: 1.80 + 1.20 + 0.90 + 1.20 + 0.60 + 0.25 = 5.95
		{types.CategoryFunctional, types.LevelStrong, 0.75, 2022},
		{types.CategoryFunctional, types.LevelStrong, 0.50, 2022},
		{types.CategoryFunctional, types.LevelModerate, 0.75, 2022},
		{types.CategoryFunctional, types.LevelModerate, 0, 2022},
		{types.CategoryFunctional, types.LevelModerate, 0.50, 2022},
		{types.CategoryFunctional, types.LevelWeak, 0.625, 2022},
		// segregation: 0.51 + 0.36 + 0.198 = 1.068
		{types.CategorySegregation, types.LevelWeak, 0.85, 2022},
		{types.CategorySegregation, types.LevelWeak, 0.75, 2013},
		{types.CategorySegregation, types.LevelWeak, 0.33, 2022},
		// cohort: 2.70 + 0.90 + 0.90 + 0.21 = 4.71
		{types.CategoryCohort, types.LevelStrong, 0.60, 2022},
		{types.CategoryCohort, types.LevelModerate, 0.40, 2022},
		{types.CategoryCohort, types.LevelModerate, 0.50, 2013},
		{types.CategoryCohort, types.LevelWeak, 0.28, 2022},
	}

	// Pad to 50 records with findings whose level the weight table does not
	// recognize. They count as items but contribute no points.
	padCats := []types.EvidenceCategory{
		types.CategoryVariant, types.CategoryVariant, types.CategoryVariant,
		types.CategoryVariant, types.CategoryVariant, types.CategoryVariant,
		types.CategoryVariant, types.CategoryVariant, types.CategoryVariant,
		types.CategoryFunctional, types.CategoryFunctional, types.CategoryFunctional,
		types.CategoryFunctional, types.CategoryFunctional, types.CategoryFunctional,
		types.CategoryFunctional, types.CategoryFunctional,
		types.CategoryCohort, types.CategoryCohort, types.CategoryCohort,
		types.CategoryCohort, types.CategoryCohort, types.CategoryCohort,
		types.CategoryCohort,
		types.CategorySegregation, types.CategorySegregation, types.CategorySegregation,
		types.CategorySegregation, types.CategorySegregation, types.CategorySegregation,
		types.CategorySegregation,
	}
	for _, cat := range padCats {
		specs = append(specs, spec{cat, types.EvidenceLevel("inconclusive"), 0.5, 2022})
	}

	records := make([]types.EvidenceRecord, 0, len(specs))
	for i, s := range specs {
		r := rec(s.cat, s.level, s.confidence, s.year)
		r.DocumentID = fmt.Sprintf("pmid%02d", i%30+1)
		r.Description = fmt.Sprintf("%s finding %d", s.cat, i)
		records = append(records, r)
	}
	return records
}

func TestScoreRegressionCollection(t *testing.T) {
	cfg := types.DefaultScoringConfig()
	cfg.ReferenceYear = 2024

	records := regressionRecords()
	if len(records) != 50 {
		t.Fatalf("fixture has %d records, want 50", len(records))
	}
	docs := make(map[string]bool)
	for _, r := range records {
		docs[r.DocumentID] = true
	}
	if len(docs) != 30 {
		t.Fatalf("fixture spans %d documents, want 30", len(docs))
	}

	scores := Score(records, cfg)

	v := categoryPoints(t, scores, types.CategoryVariant)
	f := categoryPoints(t, scores, types.CategoryFunctional)
	c := categoryPoints(t, scores, types.CategoryCohort)
	s := categoryPoints(t, scores, types.CategorySegregation)

	inDelta(t, "variant points", v.Points, 6.76, 0.005)
	inDelta(t, "functional points", f.Points, 5.95, 0.005)
	inDelta(t, "cohort points", c.Points, 4.71, 0.005)
	inDelta(t, "segregation points", s.Points, 1.07, 0.005)

	if v.ItemCount != 15 || f.ItemCount != 14 || c.ItemCount != 11 || s.ItemCount != 10 {
		t.Errorf("item counts = %d/%d/%d/%d, want 15/14/11/10",
			v.ItemCount, f.ItemCount, c.ItemCount, s.ItemCount)
	}
	for _, sc := range scores {
		if sc.Capped {
			t.Errorf("%s capped, want uncapped", sc.Category)
		}
	}

	inDelta(t, "total", Total(scores), 18.49, 0.01)
}
