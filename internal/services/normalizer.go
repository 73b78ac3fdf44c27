package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"cv-formatter/internal/config"
	"cv-formatter/internal/models"
)

// NormalizerService reconciles the model's output with the canonical CV
// schema. Every required field must be present in the JSON (an empty string
// is fine, a missing key is not); anything else is a MalformedResponseError
// and nothing gets persisted.
type NormalizerService interface {
	Normalize(modelText string) (*models.CanonicalCV, error)
}

type normalizerService struct {
	strictDates bool
}

func NewNormalizerService(cfg config.NormalizerConfig) NormalizerService {
	return &normalizerService{strictDates: cfg.StrictDates}
}

// rawCV mirrors CanonicalCV with pointer fields so a missing key can be told
// apart from a present-but-empty value.
type rawCV struct {
	Header *struct {
		Name  *string `json:"name"`
		Title *string `json:"title"`
	} `json:"header"`
	PersonalDetails *struct {
		Nationality    *string   `json:"nationality"`
		DOB            *string   `json:"dob"`
		MaritalStatus  *string   `json:"maritalStatus"`
		SmokingStatus  *string   `json:"smokingStatus"`
		DrivingLicence *string   `json:"drivingLicence"`
		Languages      *[]string `json:"languages"`
	} `json:"personalDetails"`
	Profile    *string `json:"profile"`
	Experience *[]struct {
		Title        *string   `json:"title"`
		Employer     *string   `json:"employer"`
		Location     *string   `json:"location"`
		StartDate    *string   `json:"startDate"`
		EndDate      *string   `json:"endDate"`
		BulletPoints *[]string `json:"bulletPoints"`
	} `json:"experience"`
	Education *[]struct {
		Institution    *string `json:"institution"`
		Degree         *string `json:"degree"`
		GraduationDate *string `json:"graduationDate"`
	} `json:"education"`
	Skills    *[]string `json:"skills"`
	Interests *[]string `json:"interests"`
}

func (n *normalizerService) Normalize(modelText string) (*models.CanonicalCV, error) {
	jsonStr := extractJSON(modelText)

	var raw rawCV
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, &MalformedResponseError{
			Reason: fmt.Sprintf("not valid JSON: %v", err),
			Raw:    modelText,
		}
	}

	cv, reason := n.buildCanonical(&raw)
	if reason != "" {
		return nil, &MalformedResponseError{Reason: reason, Raw: modelText}
	}

	return cv, nil
}

func (n *normalizerService) buildCanonical(raw *rawCV) (*models.CanonicalCV, string) {
	if raw.Header == nil {
		return nil, "missing header"
	}
	if raw.Header.Name == nil {
		return nil, "missing header.name"
	}
	if raw.Header.Title == nil {
		return nil, "missing header.title"
	}
	pd := raw.PersonalDetails
	if pd == nil {
		return nil, "missing personalDetails"
	}
	for field, v := range map[string]*string{
		"personalDetails.nationality":    pd.Nationality,
		"personalDetails.dob":            pd.DOB,
		"personalDetails.maritalStatus":  pd.MaritalStatus,
		"personalDetails.smokingStatus":  pd.SmokingStatus,
		"personalDetails.drivingLicence": pd.DrivingLicence,
	} {
		if v == nil {
			return nil, "missing " + field
		}
	}
	if pd.Languages == nil {
		return nil, "missing personalDetails.languages"
	}
	if raw.Profile == nil {
		return nil, "missing profile"
	}
	if raw.Experience == nil {
		return nil, "missing experience"
	}
	if raw.Education == nil {
		return nil, "missing education"
	}
	if raw.Skills == nil {
		return nil, "missing skills"
	}
	if raw.Interests == nil {
		return nil, "missing interests"
	}

	cv := &models.CanonicalCV{
		Header: models.Header{
			Name:  *raw.Header.Name,
			Title: *raw.Header.Title,
		},
		PersonalDetails: models.PersonalDetails{
			Nationality:    *pd.Nationality,
			DOB:            *pd.DOB,
			MaritalStatus:  *pd.MaritalStatus,
			SmokingStatus:  *pd.SmokingStatus,
			DrivingLicence: *pd.DrivingLicence,
			Languages:      *pd.Languages,
		},
		Profile:    *raw.Profile,
		Experience: make([]models.Experience, 0, len(*raw.Experience)),
		Education:  make([]models.Education, 0, len(*raw.Education)),
		Skills:     *raw.Skills,
		Interests:  *raw.Interests,
	}
	if cv.PersonalDetails.Languages == nil {
		cv.PersonalDetails.Languages = []string{}
	}
	if cv.Skills == nil {
		cv.Skills = []string{}
	}
	if cv.Interests == nil {
		cv.Interests = []string{}
	}

	for i, exp := range *raw.Experience {
		for field, v := range map[string]*string{
			"title":     exp.Title,
			"employer":  exp.Employer,
			"location":  exp.Location,
			"startDate": exp.StartDate,
			"endDate":   exp.EndDate,
		} {
			if v == nil {
				return nil, fmt.Sprintf("missing experience[%d].%s", i, field)
			}
		}
		if n.strictDates {
			if !validCVDate(*exp.StartDate, false) {
				return nil, fmt.Sprintf("experience[%d].startDate %q is not a \"Mon YYYY\" date", i, *exp.StartDate)
			}
			if !validCVDate(*exp.EndDate, true) {
				return nil, fmt.Sprintf("experience[%d].endDate %q is not a \"Mon YYYY\" date", i, *exp.EndDate)
			}
		}

		var bullets []string
		if exp.BulletPoints != nil {
			for _, bp := range *exp.BulletPoints {
				if strings.TrimSpace(bp) != "" {
					bullets = append(bullets, bp)
				}
			}
		}
		if bullets == nil {
			bullets = []string{}
		}

		cv.Experience = append(cv.Experience, models.Experience{
			Title:        *exp.Title,
			Employer:     *exp.Employer,
			Location:     *exp.Location,
			StartDate:    *exp.StartDate,
			EndDate:      *exp.EndDate,
			BulletPoints: bullets,
		})
	}

	for i, edu := range *raw.Education {
		for field, v := range map[string]*string{
			"institution":    edu.Institution,
			"degree":         edu.Degree,
			"graduationDate": edu.GraduationDate,
		} {
			if v == nil {
				return nil, fmt.Sprintf("missing education[%d].%s", i, field)
			}
		}
		if n.strictDates && !validCVDate(*edu.GraduationDate, false) {
			return nil, fmt.Sprintf("education[%d].graduationDate %q is not a \"Mon YYYY\" date", i, *edu.GraduationDate)
		}

		cv.Education = append(cv.Education, models.Education{
			Institution:    *edu.Institution,
			Degree:         *edu.Degree,
			GraduationDate: *edu.GraduationDate,
		})
	}

	sortExperienceReverseChronological(cv.Experience)

	return cv, ""
}

// sortExperienceReverseChronological enforces the most-recent-first content
// contract. Only entries whose start date parses take part in the ordering;
// they are sorted among themselves and written back into the same slots, so
// an unparseable date keeps its position and never blocks the dated entries
// around it from reordering.
func sortExperienceReverseChronological(entries []models.Experience) {
	type dated struct {
		exp   models.Experience
		start time.Time
	}

	var slots []int
	var parseable []dated
	for i, e := range entries {
		t, err := time.Parse("Jan 2006", e.StartDate)
		if err != nil {
			continue
		}
		slots = append(slots, i)
		parseable = append(parseable, dated{exp: e, start: t})
	}

	sort.SliceStable(parseable, func(i, j int) bool {
		return parseable[i].start.After(parseable[j].start)
	})

	for k, d := range parseable {
		entries[slots[k]] = d.exp
	}
}

func validCVDate(s string, allowPresent bool) bool {
	if allowPresent && strings.EqualFold(s, "Present") {
		return true
	}
	_, err := time.Parse("Jan 2006", s)
	return err == nil
}

// extractJSON pulls the outermost JSON object out of text that may be wrapped
// in markdown code fences or prose.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
