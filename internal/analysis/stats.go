package analysis

import (
	"sort"

	"github.com/spigell/hire-engine/internal/model"
)

// Stats compares the overall scores of reports for one job.
type Stats struct {
	Reports int     `json:"reports"`
	Count   int     `json:"count"`
	Average float64 `json:"average_score"`
	Highest float64 `json:"highest_score"`
	// Percentiles holds only the percentiles the sample is large enough for.
	Percentiles map[string]float64 `json:"percentiles"`
}

type percentile struct {
	name      string
	p         float64
	minSample int
}

var percentiles = []percentile{
	{"25", 0.25, 4},
	{"50", 0.50, 2},
	{"75", 0.75, 4},
	{"90", 0.90, 10},
}

// CompareReports summarizes reports with an overall score. Reports that could
// not be assessed count towards Reports only.
func CompareReports(reports []*model.AssessmentReport) Stats {
	stats := Stats{Reports: len(reports), Percentiles: map[string]float64{}}

	scores := make([]float64, 0, len(reports))
	for _, r := range reports {
		if r != nil && r.OverallScore != nil {
			scores = append(scores, *r.OverallScore)
		}
	}
	if len(scores) == 0 {
		return stats
	}

	sort.Float64s(scores)
	stats.Count = len(scores)
	stats.Average = round(mean(scores))
	stats.Highest = scores[len(scores)-1]

	for _, pc := range percentiles {
		if len(scores) >= pc.minSample {
			stats.Percentiles[pc.name] = scores[int(float64(len(scores))*pc.p)]
		}
	}
	return stats
}
