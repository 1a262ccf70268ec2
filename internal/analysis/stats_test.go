package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/hire-engine/internal/model"
)

func reports(scores ...float64) []*model.AssessmentReport {
	out := make([]*model.AssessmentReport, 0, len(scores))
	for _, s := range scores {
		out = append(out, &model.AssessmentReport{OverallScore: model.FloatPtr(s)})
	}
	return out
}

func TestCompareReports(t *testing.T) {
	tests := []struct {
		name    string
		reports []*model.AssessmentReport
		want    Stats
	}{
		{
			name:    "empty",
			reports: nil,
			want:    Stats{Percentiles: map[string]float64{}},
		},
		{
			name:    "unscored only",
			reports: []*model.AssessmentReport{{}, {}},
			want:    Stats{Reports: 2, Percentiles: map[string]float64{}},
		},
		{
			name:    "median needs two",
			reports: reports(0.4, 0.8),
			want: Stats{
				Reports: 2, Count: 2, Average: 0.6, Highest: 0.8,
				Percentiles: map[string]float64{"50": 0.8},
			},
		},
		{
			name:    "quartiles need four",
			reports: reports(0.9, 0.1, 0.5, 0.3),
			want: Stats{
				Reports: 4, Count: 4, Average: 0.45, Highest: 0.9,
				Percentiles: map[string]float64{"25": 0.3, "50": 0.5, "75": 0.9},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareReports(tt.reports))
		})
	}
}

func TestCompareReportsNinetiethPercentile(t *testing.T) {
	scores := make([]float64, 0, 10)
	for i := 1; i <= 10; i++ {
		scores = append(scores, float64(i)/10)
	}

	stats := CompareReports(reports(scores...))
	assert.Equal(t, 1.0, stats.Percentiles["90"])
	assert.Equal(t, 0.3, stats.Percentiles["25"])
	assert.Equal(t, 0.6, stats.Percentiles["50"])
}
