package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReply = `{
  "overall_score": 82,
  "skills_score": 40,
  "experience_score": 22,
  "education_score": 16,
  "skills_found": ["Python", "SQL", "Pandas"],
  "years_experience": 5,
  "education_level": "Master's",
  "detailed_analysis": "Strong analyst.",
  "recommendations": ["Learn Spark"],
  "market_insights": "High demand."
}`

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON("Sure! Here you go:\n" + validReply + "\nHope that helps.")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "{"))
	assert.True(t, strings.HasSuffix(got, "}"))

	_, err = ExtractJSON("I cannot evaluate this CV.")
	assert.ErrorIs(t, err, ErrNoJSON)

	for _, in := range []string{"} backwards {", "{ only open", "only close }"} {
		_, err = ExtractJSON(in)
		assert.ErrorIs(t, err, ErrMalformedJSON, in)
	}

	_, err = ExtractJSON(`{"overall_score": 80, "skills_score": }`)
	assert.ErrorIs(t, err, ErrMalformedJSON)
}

func TestParseEvaluationValid(t *testing.T) {
	res, err := ParseEvaluation("```json\n" + validReply + "\n```")
	require.NoError(t, err)

	assert.Equal(t, 82, res.OverallScore)
	assert.Equal(t, 40, res.SkillsScore)
	assert.Equal(t, 22, res.ExperienceScore)
	assert.Equal(t, 16, res.EducationScore)
	assert.Equal(t, []string{"Python", "SQL", "Pandas"}, res.SkillsFound)
	assert.Equal(t, 5, res.YearsExperience)
	assert.Equal(t, "Master's", res.EducationLevel)
	assert.Equal(t, []string{"Learn Spark"}, res.Recommendations)
}

func TestNormalizeFields(t *testing.T) {
	cases := map[string]struct {
		field string
		raw   string
		want  int
	}{
		"object scores are summed":     {"skills_score", `{"python": 10, "sql": 9.5, "note": "good"}`, 19},
		"object sum is clamped":        {"skills_score", `{"a": 40, "b": 30}`, 50},
		"floats are truncated":         {"experience_score", `12.9`, 12},
		"overflow is clamped":          {"overall_score", `250`, 100},
		"negative is clamped to zero":  {"education_score", `-4`, 0},
		"string score becomes zero":    {"overall_score", `"85"`, 0},
		"null score becomes zero":      {"overall_score", `null`, 0},
		"years from number":            {"years_experience", `7.8`, 7},
		"years from string":            {"years_experience", `"5+ years"`, 5},
		"years from unparseable value": {"years_experience", `"several"`, 0},
		"negative years":               {"years_experience", `-3`, 0},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			fields, err := NormalizeFields(`{"` + tc.field + `": ` + tc.raw + `}`)
			require.NoError(t, err)
			assert.Equal(t, tc.want, fields[tc.field])
		})
	}

	t.Run("missing scores default to zero", func(t *testing.T) {
		fields, err := NormalizeFields(`{}`)
		require.NoError(t, err)
		for key := range scoreLimits {
			assert.Equal(t, 0, fields[key], key)
		}
		assert.Equal(t, 0, fields["years_experience"])
	})

	t.Run("non-object input", func(t *testing.T) {
		_, err := NormalizeFields(`[1, 2]`)
		assert.ErrorIs(t, err, ErrMalformedJSON)
		_, err = NormalizeFields(`{bad`)
		assert.ErrorIs(t, err, ErrMalformedJSON)
	})
}

func TestParseEvaluationRepairsBreakdowns(t *testing.T) {
	reply := strings.Replace(validReply, `"skills_score": 40`, `"skills_score": {"python": 10, "sql": 10, "pandas": 8, "viz": 30}`, 1)
	reply = strings.Replace(reply, `"overall_score": 82`, `"overall_score": 104.7`, 1)

	res, err := ParseEvaluation(reply)
	require.NoError(t, err)
	assert.Equal(t, 50, res.SkillsScore)
	assert.Equal(t, 100, res.OverallScore)
}

func TestParseEvaluationRejectsIncompleteResults(t *testing.T) {
	_, err := ParseEvaluation(`{"overall_score": 80}`)
	assert.ErrorIs(t, err, ErrInvalidResult)

	bad := strings.Replace(validReply, `["Python", "SQL", "Pandas"]`, `"Python, SQL"`, 1)
	_, err = ParseEvaluation(bad)
	assert.ErrorIs(t, err, ErrInvalidResult)

	bad = strings.Replace(validReply, `"education_level": "Master's"`, `"education_level": 3`, 1)
	_, err = ParseEvaluation(bad)
	assert.True(t, errors.Is(err, ErrInvalidResult))
}

func TestFallback(t *testing.T) {
	res := Fallback("Experienced in PYTHON, SQL and Pandas; studied Machine Learning.")
	assert.Equal(t, 20, res.SkillsScore)
	assert.Equal(t, []string{"Python", "SQL"}, res.SkillsFound)

	res = Fallback("Python python python")
	assert.Equal(t, 5, res.SkillsScore)

	res = Fallback("Chef with 10 years of kitchen experience")
	assert.Equal(t, 0, res.SkillsScore)
	assert.NotNil(t, res.SkillsFound)
	assert.Empty(t, res.SkillsFound)

	assert.Equal(t, 50, res.OverallScore)
	assert.Equal(t, 15, res.ExperienceScore)
	assert.Equal(t, 10, res.EducationScore)
	assert.Equal(t, 2, res.YearsExperience)
	assert.Equal(t, "Bachelor's", res.EducationLevel)
	assert.Equal(t, "LLM analysis failed, showing basic fallback results.", res.DetailedAnalysis)
	assert.Equal(t, []string{"Please try again or check LLM service"}, res.Recommendations)
	assert.Equal(t, "Unable to provide insights at this time", res.MarketInsights)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Jane Doe, Data Scientist")
	assert.Contains(t, p, "CV TEXT:\nJane Doe, Data Scientist\n")
	assert.Contains(t, p, `"overall_score": <integer 0-100>`)
	assert.Contains(t, p, "CRITICAL: Return ONLY integers for all scores.")
	assert.Equal(t, p, BuildPrompt("Jane Doe, Data Scientist"))
	assert.NotContains(t, p, cvPlaceholder)
}
