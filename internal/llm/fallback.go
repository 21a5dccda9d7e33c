package llm

import (
	"strings"

	"alfredoptarigan/cv-engine/internal/models"
)

var fallbackKeywords = []string{"python", "sql", "pandas", "machine learning"}

// Fallback builds a conservative result from simple keyword counts. It is
// used whenever the model cannot produce a usable answer.
func Fallback(cvText string) models.CVEvaluationResult {
	lower := strings.ToLower(cvText)
	count := 0
	for _, kw := range fallbackKeywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}

	skillsFound := []string{}
	if count > 0 {
		skillsFound = []string{"Python", "SQL"}
	}

	return models.CVEvaluationResult{
		OverallScore:     50,
		SkillsScore:      min(25, count*5),
		ExperienceScore:  15,
		EducationScore:   10,
		SkillsFound:      skillsFound,
		YearsExperience:  2,
		EducationLevel:   "Bachelor's",
		DetailedAnalysis: "LLM analysis failed, showing basic fallback results.",
		Recommendations:  []string{"Please try again or check LLM service"},
		MarketInsights:   "Unable to provide insights at this time",
	}
}
