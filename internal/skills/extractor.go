package skills

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

type ExtractedSkills struct {
	TechnicalSkills  []string            `json:"technical_skills"`
	SoftSkills       []string            `json:"soft_skills"`
	AllSkills        []string            `json:"all_skills"`
	SkillsByCategory map[string][]string `json:"skills_by_category"`
	TotalSkillsFound int                 `json:"total_skills_found"`
}

func emptyResult() ExtractedSkills {
	return ExtractedSkills{
		TechnicalSkills:  []string{},
		SoftSkills:       []string{},
		AllSkills:        []string{},
		SkillsByCategory: map[string][]string{},
	}
}

// Extractor finds known skills in free text by keyword matching.
type Extractor struct {
	db     *Database
	logger *zap.Logger
}

func NewExtractor(db *Database, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{db: db, logger: logger.Named("skills")}
}

// Extract scans categories in database order. A skill is credited to the
// first category that matches it and is never listed twice.
func (e *Extractor) Extract(text string) ExtractedSkills {
	result := emptyResult()
	if strings.TrimSpace(text) == "" {
		return result
	}

	lower := strings.ToLower(text)
	found := make(map[string]struct{})

	for _, cat := range e.db.Categories() {
		var categorySkills []string
		for _, skill := range cat.Skills {
			if _, already := found[skill.Name]; already {
				continue
			}
			if !matchesAny(lower, skill) {
				continue
			}
			found[skill.Name] = struct{}{}
			categorySkills = append(categorySkills, skill.Name)
			result.AllSkills = append(result.AllSkills, skill.Name)
		}
		if len(categorySkills) > 0 {
			result.SkillsByCategory[cat.Name] = categorySkills
		}
	}

	for _, name := range result.AllSkills {
		if e.db.IsTechnical(name) {
			result.TechnicalSkills = append(result.TechnicalSkills, name)
		} else {
			result.SoftSkills = append(result.SoftSkills, name)
		}
	}
	result.TotalSkillsFound = len(result.AllSkills)

	e.logger.Debug("skills extracted",
		zap.Int("total", result.TotalSkillsFound),
		zap.Int("technical", len(result.TechnicalSkills)),
		zap.Int("soft", len(result.SoftSkills)),
	)
	return result
}

func matchesAny(lowerText string, skill Skill) bool {
	if containsWord(lowerText, strings.ToLower(skill.Name)) {
		return true
	}
	for _, v := range skill.Variants {
		if containsWord(lowerText, v) {
			return true
		}
	}
	return false
}

// containsWord reports whether word occurs in text with no letter, digit or
// underscore directly before or after it.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for offset := 0; offset < len(text); {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(word)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
