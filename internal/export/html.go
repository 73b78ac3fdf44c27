package export

import (
	"bytes"
	"fmt"
	"html/template"

	"cv-formatter/internal/models"
)

// styledCVTemplate is the presentational rendition used by the raster-banded
// PDF path: centered header, personal-details grid, experience entries with a
// left rule, skills and interests as pill badges.
var styledCVTemplate = template.Must(template.New("cv").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  html, body { margin: 0; background: white; }
  body { width: 210mm; padding: 20mm; box-sizing: border-box; }
  .cv { font-family: 'Palatino Linotype', Palatino, serif; color: #1e293b; line-height: 1.6; }
  .cv-header { text-align: center; border-bottom: 2px solid #3b82f6; padding-bottom: 20px; margin-bottom: 30px; }
  .cv-header h1 { font-size: 32px; font-weight: bold; margin: 0 0 8px 0; }
  .cv-header h2 { font-size: 20px; color: #3b82f6; margin: 0; font-weight: 600; }
  .section { margin-bottom: 25px; }
  .section h3 { font-size: 18px; font-weight: bold; margin-bottom: 12px; border-bottom: 1px solid #e2e8f0; padding-bottom: 4px; }
  .details-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 10px; font-size: 14px; }
  .profile { font-size: 14px; text-align: justify; margin: 0; }
  .entry { margin-bottom: 20px; border-left: 3px solid #3b82f6; padding-left: 15px; }
  .entry-head { display: flex; justify-content: space-between; align-items: flex-start; margin-bottom: 5px; }
  .entry-head h4 { font-size: 16px; font-weight: bold; margin: 0; }
  .entry-dates { font-size: 12px; color: #64748b; font-weight: 600; }
  .entry-sub { font-size: 14px; margin: 0 0 8px 0; color: #475569; font-weight: 600; }
  .entry ul { margin: 0; padding-left: 20px; }
  .entry li { font-size: 14px; margin-bottom: 4px; color: #475569; }
  .edu-inst { font-size: 14px; margin: 0 0 2px 0; color: #475569; }
  .edu-date { font-size: 12px; margin: 0; color: #64748b; }
  .two-col { display: grid; grid-template-columns: 1fr 1fr; gap: 25px; }
  .pills { display: flex; flex-wrap: wrap; gap: 8px; }
  .pill { background: #dbeafe; color: #1e40af; padding: 4px 12px; border-radius: 20px; font-size: 12px; font-weight: 600; }
  .pill.muted { background: #f1f5f9; color: #475569; font-weight: normal; }
</style>
</head>
<body>
<div class="cv">
  <div class="cv-header">
    <h1>{{.Header.Name}}</h1>
    <h2>{{.Header.Title}}</h2>
  </div>

  <div class="section">
    <h3>Personal Details</h3>
    <div class="details-grid">
      <div><strong>Nationality:</strong> {{.PersonalDetails.Nationality}}</div>
      <div><strong>Date of Birth:</strong> {{.PersonalDetails.DOB}}</div>
      <div><strong>Marital Status:</strong> {{.PersonalDetails.MaritalStatus}}</div>
      <div><strong>Languages:</strong> {{range $i, $l := .PersonalDetails.Languages}}{{if $i}}, {{end}}{{$l}}{{end}}</div>
      <div><strong>Smoking Status:</strong> {{.PersonalDetails.SmokingStatus}}</div>
      <div><strong>Driving Licence:</strong> {{.PersonalDetails.DrivingLicence}}</div>
    </div>
  </div>

  <div class="section">
    <h3>Professional Profile</h3>
    <p class="profile">{{.Profile}}</p>
  </div>

  <div class="section">
    <h3>Professional Experience</h3>
    {{range .Experience}}
    <div class="entry">
      <div class="entry-head">
        <h4>{{.Title}}</h4>
        <span class="entry-dates">{{.StartDate}} - {{.EndDate}}</span>
      </div>
      <p class="entry-sub">{{.Employer}} &bull; {{.Location}}</p>
      <ul>
        {{range .BulletPoints}}<li>{{.}}</li>{{end}}
      </ul>
    </div>
    {{end}}
  </div>

  <div class="section">
    <h3>Education</h3>
    {{range .Education}}
    <div class="entry">
      <h4>{{.Degree}}</h4>
      <p class="edu-inst">{{.Institution}}</p>
      <p class="edu-date">{{.GraduationDate}}</p>
    </div>
    {{end}}
  </div>

  <div class="two-col">
    <div>
      <h3>Key Skills</h3>
      <div class="pills">
        {{range .Skills}}<span class="pill">{{.}}</span>{{end}}
      </div>
    </div>
    <div>
      <h3>Interests</h3>
      <div class="pills">
        {{range .Interests}}<span class="pill muted">{{.}}</span>{{end}}
      </div>
    </div>
  </div>
</div>
</body>
</html>`))

func renderStyledHTML(cv *models.CanonicalCV) (string, error) {
	var buf bytes.Buffer
	if err := styledCVTemplate.Execute(&buf, cv); err != nil {
		return "", fmt.Errorf("failed to render styled html: %v", err)
	}
	return buf.String(), nil
}
