package headhunter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/hire-engine/internal/model"
)

type Resumes struct {
	Items []*Resume
}

type Resume struct {
	Title string
	ID    string `json:"id,omitempty"`
}

func (c *Client) getResumes(ctx context.Context, id string) (*Resumes, error) {
	apiURLMineResumes := fmt.Sprintf("%s/resumes/%s", c.APIURL, id)

	items, err := c.GetItems(ctx, apiURLMineResumes, nil)
	if err != nil {
		return nil, err
	}

	var resumes []*Resume
	if err = mapstructure.Decode(items, &resumes); err != nil {
		return nil, err
	}

	return &Resumes{
		Items: resumes,
	}, nil
}

// GetMineResumes lists the resumes of the token owner.
func (c *Client) GetMineResumes(ctx context.Context) (*Resumes, error) {
	return c.getResumes(ctx, mineResumID)
}

func (r *Resumes) Len() int {
	return len(r.Items)
}

func (r *Resumes) Titles() []string {
	titles := make([]string, 0, len(r.Items))

	for _, v := range r.Items {
		titles = append(titles, v.Title)
	}

	return titles
}

func (r *Resumes) FindByTitle(title string) *Resume {
	for _, resume := range r.Items {
		if resume.Title == title {
			return resume
		}
	}

	return nil
}

// resumeDocument is the subset of the resume payload the engine understands.
type resumeDocument struct {
	ID         string   `mapstructure:"id"`
	FirstName  string   `mapstructure:"first_name"`
	LastName   string   `mapstructure:"last_name"`
	SkillSet   []string `mapstructure:"skill_set"`
	Experience []struct {
		Company     string `mapstructure:"company"`
		Position    string `mapstructure:"position"`
		Start       string `mapstructure:"start"`
		End         string `mapstructure:"end"`
		Description string `mapstructure:"description"`
	} `mapstructure:"experience"`
	Education struct {
		Primary []struct {
			Name         string `mapstructure:"name"`
			Organization string `mapstructure:"organization"`
			Result       string `mapstructure:"result"`
			Year         int    `mapstructure:"year"`
		} `mapstructure:"primary"`
	} `mapstructure:"education"`
	Language []struct {
		Name  string `mapstructure:"name"`
		Level struct {
			ID string `mapstructure:"id"`
		} `mapstructure:"level"`
	} `mapstructure:"language"`
	Certificate []struct {
		Title string `mapstructure:"title"`
	} `mapstructure:"certificate"`
}

var languageLevels = map[string]model.LanguageLevel{
	"l1": model.LevelNative,
	"c2": model.LevelProfessional,
	"c1": model.LevelProfessional,
	"b2": model.LevelIntermediate,
	"b1": model.LevelIntermediate,
	"a2": model.LevelBasic,
	"a1": model.LevelBasic,
}

// GetResume fetches a resume and maps it onto a profile hint. Only fields the
// resume actually carries are set; the rest stay absent for the normalizer.
func (c *Client) GetResume(ctx context.Context, id string) (*model.ProfileHint, error) {
	if id == "" {
		return nil, errors.New("resume id is required")
	}

	var raw map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("%s/resumes/%s", c.APIURL, url.PathEscape(id)), &raw); err != nil {
		return nil, fmt.Errorf("get resume %s: %w", id, err)
	}

	var doc resumeDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode resume %s: %w", id, err)
	}

	return doc.hint(), nil
}

func (d *resumeDocument) hint() *model.ProfileHint {
	hint := &model.ProfileHint{}
	if d.ID != "" {
		hint.ID = model.CandidateID("hh-" + d.ID)
	}

	if name := strings.TrimSpace(d.FirstName + " " + d.LastName); name != "" {
		hint.Name = &name
	}

	if len(d.SkillSet) > 0 {
		hint.Skills = make([]model.SkillTag, 0, len(d.SkillSet))
		for _, s := range d.SkillSet {
			if s = strings.TrimSpace(s); s != "" {
				hint.Skills = append(hint.Skills, model.SkillTag{Name: s})
			}
		}
	}

	if len(d.Experience) > 0 {
		hint.Experience = make([]model.ExperienceEntry, 0, len(d.Experience))
		for _, e := range d.Experience {
			entry := model.ExperienceEntry{
				Organization: strings.TrimSpace(e.Company),
				Title:        strings.TrimSpace(e.Position),
				Start:        parseAPIDate(e.Start),
				End:          parseAPIDate(e.End),
				Present:      strings.TrimSpace(e.End) == "",
			}
			for _, line := range strings.Split(e.Description, "\n") {
				if line = strings.TrimSpace(strings.TrimLeft(line, "-•* ")); line != "" {
					entry.Achievements = append(entry.Achievements, line)
				}
			}
			hint.Experience = append(hint.Experience, entry)
		}
	}

	if len(d.Education.Primary) > 0 {
		hint.Education = make([]model.EducationEntry, 0, len(d.Education.Primary))
		for _, e := range d.Education.Primary {
			entry := model.EducationEntry{
				Institution: strings.TrimSpace(e.Name),
				Degree:      strings.TrimSpace(strings.Trim(e.Organization+", "+e.Result, ", ")),
			}
			if e.Year > 0 {
				entry.Period = strconv.Itoa(e.Year)
			}
			hint.Education = append(hint.Education, entry)
		}
	}

	if len(d.Language) > 0 {
		hint.Languages = make([]model.LanguageProficiency, 0, len(d.Language))
		for _, l := range d.Language {
			level, ok := languageLevels[strings.ToLower(l.Level.ID)]
			if !ok {
				level = model.LevelIntermediate
			}
			hint.Languages = append(hint.Languages, model.LanguageProficiency{Language: l.Name, Level: level})
		}
	}

	if len(d.Certificate) > 0 {
		hint.Certifications = make([]string, 0, len(d.Certificate))
		for _, c := range d.Certificate {
			if t := strings.TrimSpace(c.Title); t != "" {
				hint.Certifications = append(hint.Certifications, t)
			}
		}
	}

	return hint
}

// parseAPIDate reads the API's YYYY-MM-DD dates.
func parseAPIDate(s string) *model.YearMonth {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) < 2 {
		return nil
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return nil
	}
	return &model.YearMonth{Year: year, Month: month}
}
