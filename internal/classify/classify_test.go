// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"math"
	"testing"

	"github.com/pdiddy/curation-engine/pkg/types"
)

func scoresWith(points float64, items int) []types.CategoryScore {
	return []types.CategoryScore{
		{Category: types.CategoryVariant, Points: points, ItemCount: items},
		{Category: types.CategoryFunctional},
		{Category: types.CategoryCohort},
		{Category: types.CategorySegregation},
	}
}

func TestClassifyThresholds(t *testing.T) {
	cfg := types.DefaultClassifierConfig()

	tests := []struct {
		name  string
		total float64
		want  types.ValidityLabel
	}{
		{"below limited", 1.99, types.LabelNoEvidence},
		{"exactly limited", 2.0, types.LabelLimited},
		{"between limited and moderate", 4.5, types.LabelLimited},
		{"exactly moderate", 5.0, types.LabelModerate},
		{"between moderate and strong", 14.99, types.LabelModerate},
		{"exactly strong", 15.0, types.LabelStrong},
		{"regression collection total", 18.49, types.LabelStrong},
		{"just under definitive", 29.99, types.LabelStrong},
		{"exactly definitive", 30.0, types.LabelDefinitive},
		{"far above definitive", 42.0, types.LabelDefinitive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(scoresWith(tt.total, 10), cfg)
			if got.Label != tt.want {
				t.Errorf("Classify(total=%.2f).Label = %s, want %s", tt.total, got.Label, tt.want)
			}
			if math.Abs(got.TotalScore-tt.total) > 1e-9 {
				t.Errorf("TotalScore = %f, want %f", got.TotalScore, tt.total)
			}
		})
	}
}

func TestClassifyTotalIsSumOfCategories(t *testing.T) {
	scores := []types.CategoryScore{
		{Category: types.CategoryVariant, Points: 6.76, ItemCount: 15},
		{Category: types.CategoryFunctional, Points: 5.95, ItemCount: 14},
		{Category: types.CategoryCohort, Points: 4.71, ItemCount: 11},
		{Category: types.CategorySegregation, Points: 1.07, ItemCount: 10},
	}
	got := Classify(scores, types.DefaultClassifierConfig())

	if math.Abs(got.TotalScore-18.49) > 1e-9 {
		t.Errorf("TotalScore = %f, want 18.49", got.TotalScore)
	}
	if got.Label != types.LabelStrong {
		t.Errorf("Label = %s, want strong", got.Label)
	}
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %f, want 1.0 (50 items saturate at 25)", got.Confidence)
	}
}

func TestClassifyConfidenceScalesWithItems(t *testing.T) {
	cfg := types.DefaultClassifierConfig()

	tests := []struct {
		items int
		want  float64
	}{
		{5, 0.2},
		{10, 0.4},
		{25, 1.0},
		{40, 1.0},
	}
	for _, tt := range tests {
		got := Classify(scoresWith(10, tt.items), cfg)
		if math.Abs(got.Confidence-tt.want) > 1e-9 {
			t.Errorf("Confidence(%d items) = %f, want %f", tt.items, got.Confidence, tt.want)
		}
	}
}

func TestClassifyNoEvidence(t *testing.T) {
	got := Classify(scoresWith(0, 0), types.DefaultClassifierConfig())
	if got.Label != types.LabelNoEvidence {
		t.Errorf("Label = %s, want no_evidence", got.Label)
	}
	if got.Confidence != 0.0 {
		t.Errorf("Confidence = %f, want 0.0", got.Confidence)
	}
}

func TestClassifyZeroItemsOverridesScore(t *testing.T) {
	// No items means no evidence regardless of any residual points.
	got := Classify(scoresWith(20, 0), types.DefaultClassifierConfig())
	if got.Label != types.LabelNoEvidence {
		t.Errorf("Label = %s, want no_evidence when item count is zero", got.Label)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	cfg := types.DefaultClassifierConfig()
	scores := scoresWith(7.3, 12)

	first := Classify(scores, cfg)
	second := Classify(scores, cfg)

	if first.Label != second.Label || first.TotalScore != second.TotalScore || first.Confidence != second.Confidence {
		t.Errorf("repeated classification differs: %+v vs %+v", first, second)
	}
}
