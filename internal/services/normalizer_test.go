package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-formatter/internal/config"
)

const validModelJSON = `{
  "header": {"name": "Jane Doe", "title": "Software Engineer"},
  "personalDetails": {
    "nationality": "British", "dob": "Mar 1990", "maritalStatus": "Single",
    "smokingStatus": "Non-smoker", "drivingLicence": "Full", "languages": ["English", "French"]
  },
  "profile": "Experienced engineer.",
  "experience": [
    {"title": "Engineer", "employer": "Acme", "location": "London",
     "startDate": "Feb 2018", "endDate": "Dec 2019", "bulletPoints": ["Built things", ""]},
    {"title": "Senior Engineer", "employer": "Globex", "location": "Leeds",
     "startDate": "Jan 2020", "endDate": "Present", "bulletPoints": ["Led team"]}
  ],
  "education": [
    {"institution": "UCL", "degree": "BSc Computer Science", "graduationDate": "Jun 2012"}
  ],
  "skills": ["Go", "SQL"],
  "interests": ["Running"]
}`

func TestNormalizeValidResponse(t *testing.T) {
	n := NewNormalizerService(config.NormalizerConfig{})

	cv, err := n.Normalize(validModelJSON)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", cv.Header.Name)
	assert.Equal(t, []string{"English", "French"}, cv.PersonalDetails.Languages)
	assert.Equal(t, []string{"Go", "SQL"}, cv.Skills)
}

func TestNormalizeStripsCodeFences(t *testing.T) {
	n := NewNormalizerService(config.NormalizerConfig{})

	cv, err := n.Normalize("```json\n" + validModelJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", cv.Header.Name)
}

func TestNormalizeReordersExperienceReverseChronologically(t *testing.T) {
	n := NewNormalizerService(config.NormalizerConfig{})

	cv, err := n.Normalize(validModelJSON)
	require.NoError(t, err)

	require.Len(t, cv.Experience, 2)
	assert.Equal(t, "Senior Engineer", cv.Experience[0].Title, "Jan 2020 must sort before Feb 2018")
	assert.Equal(t, "Engineer", cv.Experience[1].Title)
}

func TestNormalizeReordersAroundUnparseableDate(t *testing.T) {
	n := NewNormalizerService(config.NormalizerConfig{StrictDates: false})

	// An undated entry sits between two dated ones; the dated entries must
	// still swap into most-recent-first order while the undated one keeps
	// its slot.
	raw := `{"header": {"name": "A", "title": "B"}, "personalDetails": {"nationality": "", "dob": "", "maritalStatus": "", "smokingStatus": "", "drivingLicence": "", "languages": []}, "profile": "", "experience": [
		{"title": "Old", "employer": "E", "location": "L", "startDate": "Feb 2018", "endDate": "Dec 2019", "bulletPoints": []},
		{"title": "Odd", "employer": "E", "location": "L", "startDate": "sometime", "endDate": "later", "bulletPoints": []},
		{"title": "New", "employer": "E", "location": "L", "startDate": "Jan 2020", "endDate": "Present", "bulletPoints": []}
	], "education": [], "skills": [], "interests": []}`
	cv, err := n.Normalize(raw)
	require.NoError(t, err)

	require.Len(t, cv.Experience, 3)
	assert.Equal(t, "New", cv.Experience[0].Title)
	assert.Equal(t, "Odd", cv.Experience[1].Title)
	assert.Equal(t, "Old", cv.Experience[2].Title)
}

func TestNormalizeDropsEmptyBulletPoints(t *testing.T) {
	n := NewNormalizerService(config.NormalizerConfig{})

	cv, err := n.Normalize(validModelJSON)
	require.NoError(t, err)

	assert.Equal(t, []string{"Built things"}, cv.Experience[1].BulletPoints)
}

func TestNormalizeMissingHeaderName(t *testing.T) {
	n := NewNormalizerService(config.NormalizerConfig{})

	raw := `{"header": {"title": "Engineer"}, "personalDetails": {"nationality": "", "dob": "", "maritalStatus": "", "smokingStatus": "", "drivingLicence": "", "languages": []}, "profile": "", "experience": [], "education": [], "skills": [], "interests": []}`
	_, err := n.Normalize(raw)

	require.Error(t, err)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "header.name")
	assert.Equal(t, raw, malformed.Raw, "original text must be retained for diagnosis")
}

func TestNormalizeMissingExperienceIsFailure(t *testing.T) {
	n := NewNormalizerService(config.NormalizerConfig{})

	_, err := n.Normalize(`{"header": {"name": "A", "title": "B"}, "personalDetails": {"nationality": "", "dob": "", "maritalStatus": "", "smokingStatus": "", "drivingLicence": "", "languages": []}, "profile": "", "education": [], "skills": [], "interests": []}`)

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "experience")
}

func TestNormalizeInvalidJSON(t *testing.T) {
	n := NewNormalizerService(config.NormalizerConfig{})

	_, err := n.Normalize("The model decided to chat instead of answering.")

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestNormalizeStrictDatesRejectsMalformedDate(t *testing.T) {
	n := NewNormalizerService(config.NormalizerConfig{StrictDates: true})

	raw := `{"header": {"name": "A", "title": "B"}, "personalDetails": {"nationality": "", "dob": "", "maritalStatus": "", "smokingStatus": "", "drivingLicence": "", "languages": []}, "profile": "", "experience": [{"title": "T", "employer": "E", "location": "L", "startDate": "2020-01-01", "endDate": "Present", "bulletPoints": []}], "education": [], "skills": [], "interests": []}`
	_, err := n.Normalize(raw)

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "startDate")
}

func TestNormalizeLenientDatesPassThrough(t *testing.T) {
	n := NewNormalizerService(config.NormalizerConfig{StrictDates: false})

	raw := `{"header": {"name": "A", "title": "B"}, "personalDetails": {"nationality": "", "dob": "", "maritalStatus": "", "smokingStatus": "", "drivingLicence": "", "languages": []}, "profile": "", "experience": [{"title": "T", "employer": "E", "location": "L", "startDate": "sometime", "endDate": "later", "bulletPoints": []}], "education": [], "skills": [], "interests": []}`
	cv, err := n.Normalize(raw)

	require.NoError(t, err)
	assert.Equal(t, "sometime", cv.Experience[0].StartDate)
}
