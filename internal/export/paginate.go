package export

// bandOffsets computes the vertical offset of the content image on each PDF
// page. The image is drawn full-width; every page after the first shifts it
// up by one page height so the next band shows through. The loop continues
// while heightLeft >= 0, so content ending exactly on a page boundary still
// gets a trailing page.
func bandOffsets(imgHeight, pageHeight float64) []float64 {
	offsets := []float64{0}

	heightLeft := imgHeight - pageHeight
	for heightLeft >= 0 {
		offsets = append(offsets, heightLeft-imgHeight)
		heightLeft -= pageHeight
	}

	return offsets
}
