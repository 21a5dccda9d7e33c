package llm

import "strings"

const SystemPrompt = "You are an expert CV evaluator specializing in data science roles. Always return valid JSON responses."

const cvPlaceholder = "{{CV_TEXT}}"

const evaluationPromptTemplate = `
Analyze this CV for a data science professional and provide a comprehensive evaluation.

CV TEXT:
{{CV_TEXT}}

EVALUATION REQUIREMENTS:
1. Overall Score (0-100): Holistic assessment of the candidate
2. Skills Score (0-50): Based on relevant data science skills found
3. Experience Score (0-30): Based on years and quality of experience
4. Education Score (0-20): Based on degree level and field relevance

SCORING GUIDELINES:
- Skills (50 points max):
  * Python, R, SQL: 8-10 points each
  * ML libraries (pandas, sklearn, tensorflow): 6-8 points each
  * Statistics, Analytics tools: 4-6 points each
  * Visualization tools: 3-5 points each

- Experience (30 points max):
  * 0-1 years: 5-10 points
  * 2-3 years: 10-15 points
  * 4-7 years: 15-25 points
  * 8+ years: 25-30 points

- Education (20 points max):
  * PhD in relevant field: 18-20 points
  * Master's in relevant field: 12-16 points
  * Bachelor's in relevant field: 8-12 points
  * Other degrees: 4-8 points

Return your analysis as JSON in this exact format (integers only for scores):
{
    "overall_score": <integer 0-100>,
    "skills_score": <integer 0-50>,
    "experience_score": <integer 0-30>,
    "education_score": <integer 0-20>,
    "skills_found": ["skill1", "skill2", ...],
    "years_experience": <integer>,
    "education_level": "<highest degree>",
    "detailed_analysis": "<2-3 sentence analysis>",
    "recommendations": ["recommendation1", "recommendation2", ...],
    "market_insights": "<career advice and market positioning>"
}

CRITICAL: Return ONLY integers for all scores. Do not return objects or breakdowns for scores.
`

// BuildPrompt renders the evaluation rubric around cvText. The output depends
// only on cvText.
func BuildPrompt(cvText string) string {
	return strings.Replace(evaluationPromptTemplate, cvPlaceholder, cvText, 1)
}
