package export

import (
	"bytes"
	"fmt"
	"strings"
)

// A4 in points, with the layout constants of the flowed-text path.
const (
	pageWidth  = 595.28
	pageHeight = 841.89
	pageMargin = 50.0
	fontSize   = 12.0
	lineGap    = 4.0
)

// pdfFile accumulates numbered objects and serializes them with a correct
// cross-reference table. Object numbers are 1-based slice indices, so
// objects can be reserved up front and filled in once their references are
// known.
type pdfFile struct {
	objects [][]byte
	root    int
}

func (f *pdfFile) add(body []byte) int {
	f.objects = append(f.objects, body)
	return len(f.objects)
}

func (f *pdfFile) reserve() int {
	return f.add(nil)
}

func (f *pdfFile) set(num int, body []byte) {
	f.objects[num-1] = body
}

func (f *pdfFile) serialize() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(f.objects))
	for i, obj := range f.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(obj)
		buf.WriteString("\nendobj\n")
	}

	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(f.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(f.objects)+1, f.root, xrefPos)

	return buf.Bytes()
}

func streamObject(dict string, data []byte) []byte {
	var buf bytes.Buffer
	if dict == "" {
		fmt.Fprintf(&buf, "<< /Length %d >>\n", len(data))
	} else {
		fmt.Fprintf(&buf, "<< %s /Length %d >>\n", dict, len(data))
	}
	buf.WriteString("stream\n")
	buf.Write(data)
	buf.WriteString("\nendstream")
	return buf.Bytes()
}

func kidsBody(pageNums []int) []byte {
	refs := make([]string, len(pageNums))
	for i, n := range pageNums {
		refs[i] = fmt.Sprintf("%d 0 R", n)
	}
	return []byte(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(refs, " "), len(pageNums)))
}

// renderTextPDF lays the lines out with a single running font: vertical
// cursor from pageHeight - margin, one line per step of fontSize + lineGap.
// When the cursor would fall below the bottom margin a new page is started;
// nothing is ever trimmed.
func renderTextPDF(lines []string) ([]byte, error) {
	var f pdfFile
	catalogNum := f.reserve()
	pagesNum := f.reserve()
	fontNum := f.add([]byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"))

	var pages [][]string
	var current []string
	y := pageHeight - pageMargin
	for _, line := range lines {
		if y < pageMargin {
			pages = append(pages, current)
			current = nil
			y = pageHeight - pageMargin
		}
		current = append(current, line)
		y -= fontSize + lineGap
	}
	pages = append(pages, current)

	var pageNums []int
	for _, pageLines := range pages {
		var cs bytes.Buffer
		cs.WriteString("BT\n")
		fmt.Fprintf(&cs, "/F1 %g Tf\n", fontSize)
		y := pageHeight - pageMargin
		for _, line := range pageLines {
			encoded, err := encodePDFText(line)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&cs, "1 0 0 1 %.2f %.2f Tm (%s) Tj\n", pageMargin, y, encoded)
			y -= fontSize + lineGap
		}
		cs.WriteString("ET")

		contentNum := f.add(streamObject("", cs.Bytes()))
		pageNum := f.add([]byte(fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %.2f %.2f] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			pagesNum, pageWidth, pageHeight, fontNum, contentNum)))
		pageNums = append(pageNums, pageNum)
	}

	f.set(pagesNum, kidsBody(pageNums))
	f.set(catalogNum, []byte(fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesNum)))
	f.root = catalogNum

	return f.serialize(), nil
}

// renderImagePDF embeds one JPEG raster of the whole document and draws it on
// successive pages, shifted up by one page height each time (banded
// pagination).
func renderImagePDF(jpegData []byte, pxWidth, pxHeight int) ([]byte, error) {
	if pxWidth <= 0 || pxHeight <= 0 {
		return nil, fmt.Errorf("raster has invalid dimensions %dx%d", pxWidth, pxHeight)
	}

	imgWidth := pageWidth
	imgHeight := float64(pxHeight) * pageWidth / float64(pxWidth)

	var f pdfFile
	catalogNum := f.reserve()
	pagesNum := f.reserve()
	imageNum := f.add(streamObject(fmt.Sprintf(
		"/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode",
		pxWidth, pxHeight), jpegData))

	var pageNums []int
	for _, offset := range bandOffsets(imgHeight, pageHeight) {
		// offset is measured from the page top; PDF places images from the
		// bottom-left corner.
		ty := pageHeight - offset - imgHeight
		cs := fmt.Sprintf("q\n%.2f 0 0 %.2f 0 %.2f cm\n/Im0 Do\nQ", imgWidth, imgHeight, ty)

		contentNum := f.add(streamObject("", []byte(cs)))
		pageNum := f.add([]byte(fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %.2f %.2f] /Resources << /XObject << /Im0 %d 0 R >> >> /Contents %d 0 R >>",
			pagesNum, pageWidth, pageHeight, imageNum, contentNum)))
		pageNums = append(pageNums, pageNum)
	}

	f.set(pagesNum, kidsBody(pageNums))
	f.set(catalogNum, []byte(fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesNum)))
	f.root = catalogNum

	return f.serialize(), nil
}

// encodePDFText converts a line into a WinAnsi-encoded PDF string literal:
// printable ASCII passes through (with delimiter escapes), Latin-1 letters
// become octal escapes. A rune the built-in font cannot draw is an error —
// the render fails rather than shipping garbled glyphs.
func encodePDFText(s string) (string, error) {
	var buf strings.Builder
	for _, r := range s {
		switch {
		case r == '\\' || r == '(' || r == ')':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		case r == '\t':
			buf.WriteByte(' ')
		case r >= 0x20 && r < 0x7f:
			buf.WriteRune(r)
		case r >= 0xa0 && r <= 0xff:
			fmt.Fprintf(&buf, `\%03o`, r)
		default:
			return "", fmt.Errorf("text %q contains %q, which the built-in font cannot draw", s, r)
		}
	}
	return buf.String(), nil
}
