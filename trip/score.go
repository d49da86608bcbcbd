package trip

import (
	"math"

	"github.com/paulmach/orb"
)

// DefaultScoringRadius is the walkability radius around each hotel.
const DefaultScoringRadius = 350.0

// ScoreHotels counts the amenities of each category within radiusMeters
// of every hotel, weights the counts, and normalizes the weighted
// totals to [0, 100] against the best hotel in the batch. Per-category
// scores are normalized the same way against each category's own
// maximum. When every hotel scores zero, all normalized scores are
// zero. Inputs are never mutated.
func ScoreHotels(hotels []Hotel, amenities []Amenity, weights Weights, radiusMeters float64) []ScoredHotel {
	if len(hotels) == 0 {
		return nil
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultScoringRadius
	}

	proj := NewProjection(hotels[0].Location)
	planarAmenities := make([]orb.Point, len(amenities))
	for i, a := range amenities {
		planarAmenities[i] = proj.ToPlanar(a.Location)
	}

	scored := make([]ScoredHotel, len(hotels))
	for i, h := range hotels {
		buffer := Buffer(proj.ToPlanar(h.Location), radiusMeters)

		counts := make(map[Category]int, len(Categories))
		for j, a := range amenities {
			if !ValidLocation(a.Location) {
				continue
			}
			if Within(planarAmenities[j], buffer) {
				counts[a.Category]++
			}
		}

		scores := make(map[Category]float64, len(counts))
		total := 0.0
		for cat, n := range counts {
			s := float64(n) * weights[cat]
			scores[cat] = s
			total += s
		}

		scored[i] = ScoredHotel{
			Hotel:          h,
			CategoryCounts: counts,
			CategoryScores: scores,
			TotalScore:     total,
		}
	}

	normalizeScores(scored)
	return scored
}

// normalizeScores rescales raw weighted totals and per-category scores
// to [0, 100] by the batch maxima, rounded to two decimals.
func normalizeScores(scored []ScoredHotel) {
	maxTotal := 0.0
	maxByCategory := make(map[Category]float64)
	for _, s := range scored {
		if s.TotalScore > maxTotal {
			maxTotal = s.TotalScore
		}
		for cat, v := range s.CategoryScores {
			if v > maxByCategory[cat] {
				maxByCategory[cat] = v
			}
		}
	}

	for i := range scored {
		norm := make(map[Category]float64, len(scored[i].CategoryScores))
		for cat, v := range scored[i].CategoryScores {
			if maxByCategory[cat] > 0 {
				norm[cat] = round2(v / maxByCategory[cat] * 100)
			} else {
				norm[cat] = 0
			}
		}
		scored[i].CategoryNormalized = norm

		if maxTotal > 0 {
			scored[i].TotalScore = round2(scored[i].TotalScore / maxTotal * 100)
		} else {
			scored[i].TotalScore = 0
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ScoreBand maps a normalized score onto a display quality band.
func ScoreBand(score float64) string {
	switch {
	case score > 75:
		return "green"
	case score > 50:
		return "orange"
	case score > 25:
		return "red"
	default:
		return "darkred"
	}
}
