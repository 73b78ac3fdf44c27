package services

import (
	"strings"
)

// ChunkText splits formatted CV text into embedding-sized pieces on line
// boundaries. maxChunkSize is measured in runes; a single oversized line
// becomes its own chunk rather than being split mid-word.
func ChunkText(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(line)+1 > maxChunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	return chunks
}
