package headhunter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const vacanciesPath = "/vacancies"

type Vacancy struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	KeySkills   []struct {
		Name string `json:"name,omitempty"`
	} `json:"key_skills,omitempty"`
	Experience struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"experience,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
}

// experienceYears maps the API experience buckets onto a minimum-years phrase.
var experienceYears = map[string]string{
	"between1And3": "1+ years of experience",
	"between3And6": "3+ years of experience",
	"moreThan6":    "6+ years of experience",
}

func (c *Client) GetVacancy(ctx context.Context, id string) (*Vacancy, error) {
	if id == "" {
		return nil, errors.New("vacancy id is required")
	}

	var v Vacancy
	apiURLVacancy := fmt.Sprintf("%s%s/%s", c.APIURL, vacanciesPath, url.PathEscape(id))
	if err := c.getJSON(ctx, apiURLVacancy, &v); err != nil {
		return nil, fmt.Errorf("get vacancy %s: %w", id, err)
	}

	return &v, nil
}

func (v *Vacancy) SkillNames() []string {
	names := make([]string, 0, len(v.KeySkills))
	for _, s := range v.KeySkills {
		if name := strings.TrimSpace(s.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// RequirementText renders the vacancy as plain job-description text: title,
// the HTML description flattened to lines, then key skills as a requirements list.
func (v *Vacancy) RequirementText() (string, error) {
	description, err := htmlToText(v.Description)
	if err != nil {
		return "", fmt.Errorf("vacancy %s description: %w", v.ID, err)
	}

	var b strings.Builder
	if v.Name != "" {
		fmt.Fprintf(&b, "Title: %s\n\n", v.Name)
	}
	if description != "" {
		b.WriteString(description)
		b.WriteString("\n\n")
	}
	if skills := v.SkillNames(); len(skills) > 0 {
		b.WriteString("Requirements:\n")
		for _, s := range skills {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	if years, ok := experienceYears[v.Experience.ID]; ok {
		fmt.Fprintf(&b, "- %s\n", years)
	}

	return strings.TrimSpace(b.String()), nil
}

// htmlToText keeps one line per block element and prefixes list items with a bullet.
func htmlToText(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
		s.AppendHtml("\n")
	})
	doc.Find("p, div, ul, ol, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	text := doc.Text()

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || line == "-" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
