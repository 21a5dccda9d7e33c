package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"alfredoptarigan/cv-engine/internal/models"
)

var (
	ErrNoJSON        = errors.New("no JSON object found in model response")
	ErrMalformedJSON = errors.New("malformed JSON in model response")
	ErrInvalidResult = errors.New("model response does not match evaluation schema")
)

// Upper bounds for each score; the lower bound is always 0.
var scoreLimits = map[string]int{
	"overall_score":    100,
	"skills_score":     50,
	"experience_score": 30,
	"education_score":  20,
}

// ExtractJSON returns the span from the first "{" to the last "}" in text.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 && end == -1 {
		return "", ErrNoJSON
	}
	if start == -1 || end < start {
		return "", ErrMalformedJSON
	}

	candidate := text[start : end+1]
	if !gjson.Valid(candidate) {
		return "", ErrMalformedJSON
	}
	return candidate, nil
}

// NormalizeFields repairs the loosely typed fields a model tends to get wrong.
// A score given as an object becomes the sum of its numeric members, a number
// is truncated, and anything else becomes 0. Scores are then clamped.
func NormalizeFields(raw string) (map[string]any, error) {
	if !gjson.Valid(raw) {
		return nil, ErrMalformedJSON
	}
	root := gjson.Parse(raw)
	if !root.IsObject() {
		return nil, ErrMalformedJSON
	}

	fields, ok := root.Value().(map[string]any)
	if !ok {
		return nil, ErrMalformedJSON
	}

	for key, limit := range scoreLimits {
		fields[key] = normalizeScore(root.Get(key), limit)
	}
	fields["years_experience"] = normalizeYears(root.Get("years_experience"))

	return fields, nil
}

func normalizeScore(v gjson.Result, limit int) int {
	var score float64
	switch {
	case v.IsObject():
		v.ForEach(func(_, member gjson.Result) bool {
			if member.Type == gjson.Number {
				score += member.Float()
			}
			return true
		})
	case v.Type == gjson.Number:
		score = v.Float()
	default:
		return 0
	}
	return clamp(truncate(score), 0, limit)
}

func normalizeYears(v gjson.Result) int {
	switch v.Type {
	case gjson.Number:
		return clamp(truncate(v.Float()), 0, math.MaxInt32)
	case gjson.String:
		// Models sometimes answer "5+ years".
		s := strings.TrimSpace(v.String())
		n := 0
		for _, r := range s {
			if r < '0' || r > '9' {
				break
			}
			n = n*10 + int(r-'0')
			if n > math.MaxInt32 {
				return math.MaxInt32
			}
		}
		return n
	default:
		return 0
	}
}

func truncate(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BuildResult validates normalized fields and converts them into a result.
func BuildResult(fields map[string]any) (models.CVEvaluationResult, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return models.CVEvaluationResult{}, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	if err := validateResult(data); err != nil {
		return models.CVEvaluationResult{}, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}

	var result models.CVEvaluationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return models.CVEvaluationResult{}, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	return result, nil
}

// ParseEvaluation runs the full extract, normalize and validate chain over a
// raw model reply.
func ParseEvaluation(responseText string) (models.CVEvaluationResult, error) {
	raw, err := ExtractJSON(responseText)
	if err != nil {
		return models.CVEvaluationResult{}, err
	}
	fields, err := NormalizeFields(raw)
	if err != nil {
		return models.CVEvaluationResult{}, err
	}
	return BuildResult(fields)
}
