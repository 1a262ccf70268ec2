package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/hire-engine/internal/model"
)

func TestDecodeHint(t *testing.T) {
	raw := []byte(`{
		"name": "Ada Lovelace",
		"skills": [{"name": "Go", "proficiency": "expert"}],
		"experience": [{"organization": "Acme", "title": "Engineer", "start": {"year": 2019, "month": 3}, "present": true}],
		"languages": [{"language": "English", "level": "native"}]
	}`)

	hint, err := DecodeHint(raw)
	require.NoError(t, err)
	require.NotNil(t, hint.Name)
	assert.Equal(t, "Ada Lovelace", *hint.Name)
	assert.Equal(t, []model.SkillTag{{Name: "Go", Proficiency: "expert"}}, hint.Skills)
	assert.Equal(t, &model.YearMonth{Year: 2019, Month: 3}, hint.Experience[0].Start)
	assert.Nil(t, hint.Education)
}

func TestDecodeHintEmpty(t *testing.T) {
	hint, err := DecodeHint([]byte("  "))
	require.NoError(t, err)
	assert.Nil(t, hint)
}

func TestValidateHintRejects(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{name: "unknown level", raw: `{"languages": [{"language": "French", "level": "fluent"}]}`, field: "languages.0.level"},
		{name: "month out of range", raw: `{"experience": [{"start": {"year": 2020, "month": 13}}]}`, field: "experience.0.start.month"},
		{name: "skill without name", raw: `{"skills": [{"proficiency": "basic"}]}`, field: "skills.0"},
		{name: "unknown field", raw: `{"salary": 100}`, field: "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHint([]byte(tt.raw))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			fields := make([]string, 0, len(verr.Errors))
			for _, fe := range verr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateHintMalformedJSON(t *testing.T) {
	var malformed *model.MalformedInputError
	assert.True(t, errors.As(ValidateHint([]byte(`{"skills": [`)), &malformed))
}
