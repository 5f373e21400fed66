// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring converts an evidence collection into per-category point
// totals. Implements: prd003-scoring (R1-R4).
//
// Scoring is a pure function: no I/O, no clock reads, no mutation of its
// input. The same record collection and configuration always produce the
// same scores regardless of record order.
package scoring

import (
	"math"

	"github.com/pdiddy/curation-engine/pkg/types"
)

// Score computes the weighted, decayed, capped point total for each of the
// four evidence categories. The result always contains all four categories
// in canonical order, with zero-valued entries for categories that have no
// records.
//
// Each record contributes
//
//	weight(category, level) x confidence x decay(age)
//
// where a zero confidence counts as a neutral 1.0 and decay multiplies by
// cfg.RecencyDecayFactor for every year the record's age exceeds
// cfg.RecencyThresholdYears. Records with an unknown publication year are
// exempt from decay. An unrecognized evidence level contributes zero points
// but still increments the category's item count.
func Score(records []types.EvidenceRecord, cfg types.ScoringConfig) []types.CategoryScore {
	refYear := cfg.ReferenceYear
	if refYear == 0 {
		refYear = newestYear(records)
	}

	points := make(map[types.EvidenceCategory]float64, len(types.Categories))
	items := make(map[types.EvidenceCategory]int, len(types.Categories))

	for _, rec := range records {
		if !rec.Category.Valid() {
			continue
		}
		items[rec.Category]++
		points[rec.Category] += recordPoints(rec, refYear, cfg)
	}

	scores := make([]types.CategoryScore, 0, len(types.Categories))
	for _, cat := range types.Categories {
		score := types.CategoryScore{
			Category:  cat,
			Points:    points[cat],
			ItemCount: items[cat],
		}
		if cap, ok := cfg.Caps[cat]; ok && score.Points > cap {
			score.Points = cap
			score.Capped = true
		}
		scores = append(scores, score)
	}
	return scores
}

// Total sums the capped category scores. There are no cross-category terms.
func Total(scores []types.CategoryScore) float64 {
	var total float64
	for _, s := range scores {
		total += s.Points
	}
	return total
}

// recordPoints computes one record's contribution before capping.
func recordPoints(rec types.EvidenceRecord, refYear int, cfg types.ScoringConfig) float64 {
	weights := cfg.Weights[rec.Category]

	var base float64
	switch rec.Level {
	case types.LevelStrong:
		base = weights.Strong
	case types.LevelModerate:
		base = weights.Moderate
	case types.LevelWeak:
		base = weights.Weak
	default:
		return 0
	}

	confidence := rec.Confidence
	if confidence == 0 {
		confidence = 1.0
	}

	return base * confidence * decayFactor(rec.Year, refYear, cfg)
}

// decayFactor returns the recency multiplier for a publication year. Years
// at or under the threshold age, unknown years, and years newer than the
// reference are all neutral.
func decayFactor(year, refYear int, cfg types.ScoringConfig) float64 {
	if year == 0 || refYear == 0 {
		return 1.0
	}
	excess := (refYear - year) - cfg.RecencyThresholdYears
	if excess <= 0 {
		return 1.0
	}
	if cfg.RecencyDecayFactor <= 0 {
		return 0
	}
	return math.Pow(cfg.RecencyDecayFactor, float64(excess))
}

func newestYear(records []types.EvidenceRecord) int {
	newest := 0
	for _, rec := range records {
		if rec.Year > newest {
			newest = rec.Year
		}
	}
	return newest
}
