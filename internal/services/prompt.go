package services

import (
	"fmt"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// formatPromptTemplate is a design contract, not a suggestion: the
// normalizer's schema checks depend on the model following the field names
// and ordering below, so any change here is a schema-affecting change.
const formatPromptTemplate = `You are a professional CV formatter. Given the following unstructured CV content, apply these rules:
- Use a professional tone
- Remove phrases like "I am responsible for", use "Responsible for"
- Convert paragraphs to bullet points where applicable
- Format all dates as "Jan 2020"
- Remove inappropriate fields like age and dependents; keep nationality, marital status, languages, driving licence and smoking status
- Structure the CV in this order:
  1. Header (Name, Job Title)
  2. Personal Details
  3. Profile / Summary
  4. Experience (reverse chronological, most recent first)
  5. Education
  6. Skills
  7. Interests

Respond with ONLY a single JSON object, no explanatory text, no backticks, no code fences, with exactly this shape:
{
  "header": {"name": "", "title": ""},
  "personalDetails": {"nationality": "", "dob": "", "maritalStatus": "", "smokingStatus": "", "drivingLicence": "", "languages": []},
  "profile": "",
  "experience": [{"title": "", "employer": "", "location": "", "startDate": "", "endDate": "", "bulletPoints": []}],
  "education": [{"institution": "", "degree": "", "graduationDate": ""}],
  "skills": [],
  "interests": []
}
Every field must be present, using an empty string or empty list when the source has no information.

CV Input:
%s
`

// BuildFormatPrompt renders the restructuring instruction with the raw
// extracted text embedded verbatim. Pure function, deterministic.
func (pb *PromptBuilder) BuildFormatPrompt(rawText string) string {
	return fmt.Sprintf(formatPromptTemplate, rawText)
}
