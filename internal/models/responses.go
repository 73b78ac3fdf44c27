package models

// UploadResponse is returned after a successful upload/format run.
type UploadResponse struct {
	ID               string       `json:"id"`
	OriginalFileName string       `json:"original_filename"`
	Formatted        *CanonicalCV `json:"formatted"`
}

// CVListItem is the summary shape returned by the list endpoint.
type CVListItem struct {
	ID               string `json:"id"`
	OriginalFileName string `json:"original_filename"`
	UploadDate       string `json:"upload_date"`
}

// SearchResponseItem is one hit from the semantic search endpoint.
type SearchResponseItem struct {
	ID               string  `json:"id"`
	OriginalFileName string  `json:"original_filename"`
	Score            float32 `json:"score"`
	Excerpt          string  `json:"excerpt"`
}
