// Package normalizer turns raw CV text and optional structured hints into a
// canonical CandidateProfile.
package normalizer

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/skills"
)

const hintReason = "provided by hint"

type Normalizer struct {
	table  *skills.Table
	logger *zap.Logger
	now    func() time.Time
}

func New(table *skills.Table, logger *zap.Logger) *Normalizer {
	if table == nil {
		table = skills.NewTable(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{table: table, logger: logger, now: time.Now}
}

// WithClock overrides the clock used to resolve "present" dates.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// Stages returns the extraction pipeline with stages covered by the hint disabled.
func (n *Normalizer) Stages(hint *model.ProfileHint) []Stage {
	stages := []Stage{
		newNameExtractor(),
		newSkillsExtractor(),
		newExperienceExtractor(),
		newEducationExtractor(),
		newCertificationsExtractor(),
		newLanguagesExtractor(),
		newInterestsExtractor(),
		newPersonalityExtractor(),
	}
	if hint == nil {
		return stages
	}

	provided := map[string]bool{
		nameStage:           hint.Name != nil,
		skillsStage:         hint.Skills != nil,
		experienceStage:     hint.Experience != nil,
		educationStage:      hint.Education != nil,
		certificationsStage: hint.Certifications != nil,
		languagesStage:      hint.Languages != nil,
		interestsStage:      hint.CareerInterests != nil,
		personalityStage:    hint.PersonalityTraits != nil,
	}
	for name, ok := range provided {
		if ok {
			DisableByName(stages, name, hintReason)
		}
	}
	return stages
}

// Normalize builds a profile. Hint fields are taken verbatim, the rest is
// extracted from text. Extraction problems become profile notes.
func (n *Normalizer) Normalize(ctx context.Context, text string, hint *model.ProfileHint) (*model.CandidateProfile, error) {
	if strings.TrimSpace(text) == "" && hint.Empty() {
		return nil, &model.MalformedInputError{Source: "cv", Reason: "no extractable text or profile hint supplied"}
	}

	profile := &model.CandidateProfile{}
	applyHint(profile, hint)
	if profile.ID.IsEmpty() {
		profile.ID = model.NewCandidateID()
	}

	stages := n.Stages(hint)
	doc := splitSections(text)
	deps := Deps{Table: n.table, Logger: n.logger}

	if err := Run(ctx, deps, stages, doc, profile); err != nil {
		return nil, err
	}

	fillEmpty(profile)
	profile.Canonicalize(model.FromTime(n.now()))

	n.logger.Info("profile normalized",
		zap.String("candidate_id", profile.ID.String()),
		zap.Int("skills", len(profile.Skills)),
		zap.Int("experience", len(profile.Experience)),
		zap.Float64("years_of_experience", profile.YearsOfExperience),
		zap.Int("notes", len(profile.Notes)),
	)
	for _, note := range profile.Notes {
		n.logger.Debug("normalization note", zap.String("note", note))
	}

	return profile, nil
}

func applyHint(p *model.CandidateProfile, hint *model.ProfileHint) {
	if hint == nil {
		return
	}
	p.ID = hint.ID
	if hint.Name != nil {
		p.Name = *hint.Name
	}
	p.Skills = append([]model.SkillTag(nil), hint.Skills...)
	p.Experience = copyExperience(hint.Experience)
	p.Education = append([]model.EducationEntry(nil), hint.Education...)
	p.Certifications = append([]string(nil), hint.Certifications...)
	p.Languages = append([]model.LanguageProficiency(nil), hint.Languages...)
	p.CareerInterests = append([]string(nil), hint.CareerInterests...)
	p.PersonalityTraits = append([]string(nil), hint.PersonalityTraits...)
}

func copyExperience(entries []model.ExperienceEntry) []model.ExperienceEntry {
	if entries == nil {
		return nil
	}
	out := make([]model.ExperienceEntry, len(entries))
	for i, e := range entries {
		out[i] = e
		out[i].Achievements = append([]string(nil), e.Achievements...)
		if e.Start != nil {
			start := *e.Start
			out[i].Start = &start
		}
		if e.End != nil {
			end := *e.End
			out[i].End = &end
		}
	}
	return out
}

func fillEmpty(p *model.CandidateProfile) {
	if p.Skills == nil {
		p.Skills = []model.SkillTag{}
	}
	if p.Experience == nil {
		p.Experience = []model.ExperienceEntry{}
	}
	if p.Education == nil {
		p.Education = []model.EducationEntry{}
	}
	if p.Certifications == nil {
		p.Certifications = []string{}
	}
	if p.Languages == nil {
		p.Languages = []model.LanguageProficiency{}
	}
	if p.CareerInterests == nil {
		p.CareerInterests = []string{}
	}
}
