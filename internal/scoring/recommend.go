package scoring

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/hire-engine/internal/model"
)

const (
	recommendMatchShare = 0.7
	recommendRoleShare  = 0.3
)

// RecommendJobs scores every requirement against the profile and returns jobs
// best first. The match score carries most of the weight, a job whose title
// fits one of the candidate's roles gets the rest. Ties go to the lower job id.
func (s *Scorer) RecommendJobs(ctx context.Context, profile *model.CandidateProfile, reqs []*model.JobRequirement, limit int) ([]*model.Recommendation, error) {
	if profile == nil {
		return nil, errors.New("profile is required")
	}

	roles := rolesOf(profile)
	out := make([]*model.Recommendation, len(reqs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, req := range reqs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			match, err := s.Score(profile, req)
			if err != nil {
				return fmt.Errorf("score job %d: %w", i, err)
			}

			rec := &model.Recommendation{
				JobID:     req.ID,
				Title:     req.Title,
				RoleMatch: roleMatches(req.Title, roles),
				Match:     match,
			}
			score := recommendMatchShare * match.Score
			if rec.RoleMatch {
				score += recommendRoleShare
			}
			rec.Score = round(clamp(score))
			out[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].JobID < out[j].JobID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// rolesOf returns the word sets of the career interests and the latest title.
func rolesOf(profile *model.CandidateProfile) [][]string {
	var roles [][]string
	for _, interest := range profile.CareerInterests {
		if words := titleWords(interest); len(words) > 0 {
			roles = append(roles, words)
		}
	}
	// experience is kept most recent first
	if len(profile.Experience) > 0 {
		if words := titleWords(profile.Experience[0].Title); len(words) > 0 {
			roles = append(roles, words)
		}
	}
	return roles
}

// roleMatches reports whether every word of a role appears in the title or
// every word of the title appears in the role.
func roleMatches(title string, roles [][]string) bool {
	words := titleWords(title)
	if len(words) == 0 {
		return false
	}
	for _, role := range roles {
		if subset(role, words) || subset(words, role) {
			return true
		}
	}
	return false
}

func titleWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

func subset(small, big []string) bool {
	for _, w := range small {
		found := false
		for _, b := range big {
			if w == b {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
