package services

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractorService turns an uploaded binary document into plain text.
// Dispatch is purely by declared extension; unsupported extensions fail
// before the file is opened.
type ExtractorService interface {
	ExtractText(filePath string, declaredExt string) (string, error)
}

type extractorService struct{}

func NewExtractorService() ExtractorService {
	return &extractorService{}
}

func (e *extractorService) ExtractText(filePath string, declaredExt string) (string, error) {
	switch strings.ToLower(declaredExt) {
	case ".pdf":
		return e.extractPDF(filePath)
	case ".docx":
		return e.extractDocx(filePath)
	default:
		return "", fmt.Errorf("%w (got %q)", ErrUnsupportedFormat, declaredExt)
	}
}

// extractPDF concatenates the plain text of every page in document order.
// Image-only pages simply contribute nothing; an entirely empty document is
// not an error here, the pipeline decides what to do with empty text.
func (e *extractorService) extractPDF(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open PDF: %v", ErrExtraction, err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages but keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// extractDocx reads word/document.xml out of the OOXML zip package and
// collects the text runs, one line per paragraph. Styling and images are
// discarded.
func (e *extractorService) extractDocx(filePath string) (string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open docx package: %v", ErrExtraction, err)
	}
	defer zr.Close()

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%w: word/document.xml not found in docx package", ErrExtraction)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("%w: failed to read word/document.xml: %v", ErrExtraction, err)
	}
	defer rc.Close()

	text, err := decodeDocumentXML(rc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	return text, nil
}

func decodeDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var textBuilder strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document xml: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "br", "cr":
				textBuilder.WriteString("\n")
			case "tab":
				textBuilder.WriteString("\t")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				textBuilder.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				textBuilder.Write(t)
			}
		}
	}

	return textBuilder.String(), nil
}

// CleanText collapses blank lines and trims whitespace before the text goes
// into the prompt.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
