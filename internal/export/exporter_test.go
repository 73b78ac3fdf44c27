package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-formatter/internal/models"
	"cv-formatter/internal/services"
)

func fixtureCV() *models.CanonicalCV {
	return &models.CanonicalCV{
		Header: models.Header{Name: "Jane Doe", Title: "Software Engineer"},
		PersonalDetails: models.PersonalDetails{
			Nationality:    "British",
			DOB:            "Mar 1990",
			MaritalStatus:  "Single",
			SmokingStatus:  "Non-smoker",
			DrivingLicence: "Full",
			Languages:      []string{"English", "French"},
		},
		Profile: "Engineer with (strong) backend experience.",
		Experience: []models.Experience{
			{
				Title: "Senior Engineer", Employer: "Globex", Location: "Leeds",
				StartDate: "Jan 2020", EndDate: "Present",
				BulletPoints: []string{"Led a team of 4", "Cut costs by 30%"},
			},
		},
		Education: []models.Education{
			{Institution: "UCL", Degree: "BSc Computer Science", GraduationDate: "Jun 2012"},
		},
		Skills:    []string{"Go", "SQL"},
		Interests: []string{"Running"},
	}
}

func fixtureRecord(t *testing.T, originalFileName string) (*models.CVRecord, *models.CanonicalCV) {
	t.Helper()
	cv := fixtureCV()
	serialized, err := json.Marshal(cv)
	require.NoError(t, err)
	return &models.CVRecord{OriginalFileName: originalFileName, FormattedCV: string(serialized)}, cv
}

type fakeRasterizer struct {
	width  int
	height int
	err    error
}

func (r *fakeRasterizer) CaptureHTML(_ context.Context, _ string) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func TestRenderTxtMatchesFlattenedLines(t *testing.T) {
	record, cv := fixtureRecord(t, "jane_doe.pdf")

	out, err := NewExporter(&fakeRasterizer{}).Render(context.Background(), record, "txt", false)
	require.NoError(t, err)

	assert.Equal(t, "text/plain", out.ContentType)
	assert.Equal(t, "jane_doe_formatted.txt", out.Filename)
	assert.Equal(t, strings.Join(cv.Flatten(), "\n"), string(out.Bytes))
}

func TestRenderUnsupportedTarget(t *testing.T) {
	record, _ := fixtureRecord(t, "jane_doe.pdf")

	_, err := NewExporter(&fakeRasterizer{}).Render(context.Background(), record, "html", false)

	assert.ErrorIs(t, err, services.ErrUnsupportedTarget)
}

func TestRenderCorruptStoredRecord(t *testing.T) {
	record := &models.CVRecord{OriginalFileName: "x.pdf", FormattedCV: "not json"}

	_, err := NewExporter(&fakeRasterizer{}).Render(context.Background(), record, "txt", false)

	var renderErr *services.RenderError
	require.ErrorAs(t, err, &renderErr)
}

func TestExportFilenameStripsOnlyFinalExtension(t *testing.T) {
	assert.Equal(t, "Jane.Doe_formatted.txt", exportFilename("Jane.Doe.pdf", "txt"))
	assert.Equal(t, "cv_formatted.docx", exportFilename("cv.docx", "docx"))
	assert.Equal(t, "noext_formatted.pdf", exportFilename("noext", "pdf"))
}

func TestRenderDocxOneParagraphPerLine(t *testing.T) {
	record, cv := fixtureRecord(t, "jane_doe.docx")

	out, err := NewExporter(&fakeRasterizer{}).Render(context.Background(), record, "docx", false)
	require.NoError(t, err)

	assert.Equal(t, docxContentType, out.ContentType)
	assert.Equal(t, "jane_doe_formatted.docx", out.Filename)

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes), int64(len(out.Bytes)))
	require.NoError(t, err)

	var doc string
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			doc = string(data)
		}
	}
	require.NotEmpty(t, doc, "package must contain word/document.xml")

	assert.Equal(t, len(cv.Flatten()), strings.Count(doc, "<w:p>"))
	assert.Contains(t, doc, ">Jane Doe</w:t>")
}

func TestRenderTextPDFSinglePage(t *testing.T) {
	record, _ := fixtureRecord(t, "jane_doe.pdf")

	out, err := NewExporter(&fakeRasterizer{}).Render(context.Background(), record, "pdf", false)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", out.ContentType)
	assert.Equal(t, "jane_doe_formatted.pdf", out.Filename)
	assert.True(t, bytes.HasPrefix(out.Bytes, []byte("%PDF-")))
	assert.Equal(t, 1, bytes.Count(out.Bytes, []byte("/Type /Page /Parent")))
	assert.True(t, bytes.HasSuffix(out.Bytes, []byte("%%EOF\n")))
}

func TestRenderTextPDFPaginatesLongContent(t *testing.T) {
	lines := make([]string, 120)
	for i := range lines {
		lines[i] = fmt.Sprintf("bullet point number %d (with parens)", i)
	}

	data, err := renderTextPDF(lines)
	require.NoError(t, err)

	// 120 lines at fontSize+lineGap steps do not fit on one A4 page.
	pageCount := bytes.Count(data, []byte("/Type /Page /Parent"))
	assert.Greater(t, pageCount, 1)
	assert.Contains(t, string(data), fmt.Sprintf("/Count %d", pageCount))
	assert.Contains(t, string(data), `\(with parens\)`)
}

func TestRenderTextPDFEncodesAccentedNames(t *testing.T) {
	data, err := renderTextPDF([]string{"José García", "Zoë Müller"})
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, `Jos\351 Garc\355a`)
	assert.Contains(t, content, `Zo\353 M\374ller`)
	assert.Contains(t, content, "/WinAnsiEncoding")
}

func TestRenderTextPDFRejectsUndrawableRunes(t *testing.T) {
	_, err := renderTextPDF([]string{"東京"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot draw")
}

func TestRenderPDFUndrawableRunesBecomeRenderError(t *testing.T) {
	cv := fixtureCV()
	cv.Header.Name = "山田 太郎"
	serialized, err := json.Marshal(cv)
	require.NoError(t, err)
	record := &models.CVRecord{OriginalFileName: "yamada.pdf", FormattedCV: string(serialized)}

	_, err = NewExporter(&fakeRasterizer{}).Render(context.Background(), record, "pdf", false)

	var renderErr *services.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "pdf", renderErr.Format)
}

func TestRenderStyledPDFBandsTallRaster(t *testing.T) {
	record, _ := fixtureRecord(t, "jane_doe.pdf")

	// 794px wide scales to the full page width; 2.4 page heights of content
	// must come out as exactly three banded pages.
	pxWidth := 794
	pxHeight := int(float64(pxWidth) / pageWidth * 2.4 * pageHeight)
	out, err := NewExporter(&fakeRasterizer{width: pxWidth, height: pxHeight}).
		Render(context.Background(), record, "pdf", true)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out.Bytes, []byte("%PDF-")))
	assert.Contains(t, string(out.Bytes), "/DCTDecode")
	assert.Equal(t, 3, bytes.Count(out.Bytes, []byte("/Type /Page /Parent")))
}

func TestRenderStyledPDFRasterizerFailure(t *testing.T) {
	record, _ := fixtureRecord(t, "jane_doe.pdf")

	_, err := NewExporter(&fakeRasterizer{err: fmt.Errorf("chrome not found")}).
		Render(context.Background(), record, "pdf", true)

	var renderErr *services.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "pdf", renderErr.Format)
}
