package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CVRecord is the persisted result of one formatting run. FormattedCV holds
// the canonical CV serialized as JSON; the record is immutable once created.
type CVRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OriginalFileName string    `gorm:"type:text" json:"original_filename"`
	FormattedCV      string    `gorm:"type:text" json:"formatted_cv"`
	UploadDate       time.Time `gorm:"type:timestamp;default:now()" json:"upload_date"`
}

func (c *CVRecord) TableName() string {
	return "cvs"
}

// CanonicalCV is the structured form every model response is normalized into.
// Every string field is present (possibly empty); the slices are never nil
// after normalization.
type CanonicalCV struct {
	Header          Header          `json:"header"`
	PersonalDetails PersonalDetails `json:"personalDetails"`
	Profile         string          `json:"profile"`
	Experience      []Experience    `json:"experience"`
	Education       []Education     `json:"education"`
	Skills          []string        `json:"skills"`
	Interests       []string        `json:"interests"`
}

type Header struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type PersonalDetails struct {
	Nationality    string   `json:"nationality"`
	DOB            string   `json:"dob"`
	MaritalStatus  string   `json:"maritalStatus"`
	SmokingStatus  string   `json:"smokingStatus"`
	DrivingLicence string   `json:"drivingLicence"`
	Languages      []string `json:"languages"`
}

// Experience entries are kept most-recent-first; BulletPoints contains no
// empty strings.
type Experience struct {
	Title        string   `json:"title"`
	Employer     string   `json:"employer"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	BulletPoints []string `json:"bulletPoints"`
}

type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	GraduationDate string `json:"graduationDate"`
}

// Flatten renders the CV into plain-text lines in the canonical section
// order. Every structural field becomes exactly one line, so exporters that
// emit one paragraph per line (txt, docx) share the same layout.
func (cv *CanonicalCV) Flatten() []string {
	var lines []string
	add := func(s string) {
		lines = append(lines, strings.ReplaceAll(s, "\n", " "))
	}

	add(cv.Header.Name)
	add(cv.Header.Title)

	add("")
	add("Personal Details")
	add("Nationality: " + cv.PersonalDetails.Nationality)
	add("Date of Birth: " + cv.PersonalDetails.DOB)
	add("Marital Status: " + cv.PersonalDetails.MaritalStatus)
	add("Smoking Status: " + cv.PersonalDetails.SmokingStatus)
	add("Driving Licence: " + cv.PersonalDetails.DrivingLicence)
	add("Languages: " + strings.Join(cv.PersonalDetails.Languages, ", "))

	add("")
	add("Profile")
	add(cv.Profile)

	add("")
	add("Experience")
	for _, exp := range cv.Experience {
		add(exp.Title + " - " + exp.Employer + ", " + exp.Location + " (" + exp.StartDate + " - " + exp.EndDate + ")")
		for _, bp := range exp.BulletPoints {
			add("  - " + bp)
		}
	}

	add("")
	add("Education")
	for _, edu := range cv.Education {
		add(edu.Degree + " - " + edu.Institution + " (" + edu.GraduationDate + ")")
	}

	add("")
	add("Skills")
	add(strings.Join(cv.Skills, ", "))

	add("")
	add("Interests")
	add(strings.Join(cv.Interests, ", "))

	return lines
}
