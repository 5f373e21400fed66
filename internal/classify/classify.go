// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify maps category scores to a discrete validity label.
// Implements: prd004-classification (R1-R3).
package classify

import "github.com/pdiddy/curation-engine/pkg/types"

// Classify derives the terminal classification from the four category
// scores. The total is the plain sum of the capped category points; the
// label comes from comparing the total against the ascending thresholds
// with half-open intervals, so a total exactly at a threshold earns the
// higher label.
//
// Confidence reflects evidential breadth only: the total item count against
// cfg.SaturationItems, clamped to 1.0. A collection with no items at all
// classifies as no evidence with zero confidence.
func Classify(scores []types.CategoryScore, cfg types.ClassifierConfig) types.ClassificationResult {
	result := types.ClassificationResult{
		CategoryScores: scores,
	}

	var totalItems int
	for _, s := range scores {
		result.TotalScore += s.Points
		totalItems += s.ItemCount
	}

	switch {
	case result.TotalScore >= cfg.Definitive:
		result.Label = types.LabelDefinitive
	case result.TotalScore >= cfg.Strong:
		result.Label = types.LabelStrong
	case result.TotalScore >= cfg.Moderate:
		result.Label = types.LabelModerate
	case result.TotalScore >= cfg.Limited:
		result.Label = types.LabelLimited
	default:
		result.Label = types.LabelNoEvidence
	}

	if totalItems == 0 {
		result.Label = types.LabelNoEvidence
		result.Confidence = 0.0
		return result
	}

	saturation := cfg.SaturationItems
	if saturation <= 0 {
		saturation = 25
	}
	result.Confidence = float64(totalItems) / float64(saturation)
	if result.Confidence > 1.0 {
		result.Confidence = 1.0
	}
	return result
}
