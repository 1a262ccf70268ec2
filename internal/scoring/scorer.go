// Package scoring computes candidate-job fit.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/hire-engine/internal/config"
	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/skills"
)

const precision = 1e6

// Scorer holds no state besides its configuration; Score is safe for concurrent use.
type Scorer struct {
	cfg   config.Engine
	table *skills.Table
}

func New(cfg config.Engine, table *skills.Table) *Scorer {
	if table == nil {
		table = skills.NewTable(cfg.SkillSynonyms)
	}
	return &Scorer{cfg: cfg, table: table}
}

// Score computes the fit of a profile against a requirement.
func (s *Scorer) Score(profile *model.CandidateProfile, req *model.JobRequirement) (*model.MatchResult, error) {
	if profile == nil {
		return nil, errors.New("profile is required")
	}
	if req == nil {
		return nil, errors.New("requirement is required")
	}

	owned := make(map[string]struct{}, len(profile.Skills)+len(profile.Certifications))
	for _, sk := range profile.Skills {
		owned[s.table.Key(sk.Name)] = struct{}{}
	}
	for _, c := range profile.Certifications {
		owned[s.table.Key(c)] = struct{}{}
	}

	result := &model.MatchResult{
		CandidateID: profile.ID,
		JobID:       req.ID,
		Gaps:        []model.SkillGap{},
		Matched:     []string{},
	}

	var requiredTotal, requiredMatched, preferredTotal, preferredMatched float64
	for _, rs := range req.Skills {
		_, satisfied := owned[s.table.Key(rs.Name)]
		if rs.Required {
			requiredTotal += rs.Weight
		} else {
			preferredTotal += rs.Weight
		}

		if satisfied {
			if rs.Required {
				requiredMatched += rs.Weight
			} else {
				preferredMatched += rs.Weight
			}
			result.Matched = append(result.Matched, rs.Name)
			continue
		}
		result.Gaps = append(result.Gaps, model.SkillGap{
			Skill:    rs.Name,
			Weight:   rs.Weight,
			Required: rs.Required,
		})
	}

	sort.SliceStable(result.Gaps, func(i, j int) bool {
		if result.Gaps[i].Weight != result.Gaps[j].Weight {
			return result.Gaps[i].Weight > result.Gaps[j].Weight
		}
		return result.Gaps[i].Skill < result.Gaps[j].Skill
	})

	result.SkillScore = ratio(requiredMatched, requiredTotal)
	result.PreferredScore = ratio(preferredMatched, preferredTotal)
	result.ExperienceScore = experienceScore(profile.YearsOfExperience, req.MinimumYears)
	result.ExperienceGap = round(math.Max(0, req.MinimumYears-profile.YearsOfExperience))

	w := s.cfg.ScoreWeights
	prefCap := math.Min(w.Preferred, s.cfg.PreferredScoreCap)
	raw := w.Skill*result.SkillScore +
		math.Min(w.Preferred*result.PreferredScore, prefCap) +
		w.Experience*result.ExperienceScore

	// a fully satisfied requirement scores 1 whatever the preferred cap
	score := 1.0
	if best := w.Skill + prefCap + w.Experience; best > 0 {
		score = raw / best
	}
	result.Score = round(clamp(score))

	return result, nil
}

// Rank scores profiles concurrently and returns results best first, ties broken by
// candidate id. A positive limit truncates the list.
func (s *Scorer) Rank(ctx context.Context, req *model.JobRequirement, profiles []*model.CandidateProfile, limit int) ([]*model.MatchResult, error) {
	results := make([]*model.MatchResult, len(profiles))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, profile := range profiles {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			res, err := s.Score(profile, req)
			if err != nil {
				return fmt.Errorf("score candidate %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CandidateID < results[j].CandidateID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func ratio(matched, total float64) float64 {
	if total <= 0 {
		return 1
	}
	return round(clamp(matched / total))
}

func experienceScore(years, minimum float64) float64 {
	if minimum <= 0 {
		return 1
	}
	return round(math.Min(1, years/math.Max(1, minimum)))
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round(v float64) float64 {
	return math.Round(v*precision) / precision
}
