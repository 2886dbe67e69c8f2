package models

// Note is one downloadable study note in the learning library.
type Note struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Pages       int      `json:"pages"`
	DownloadURL string   `json:"download_url"`
	Contents    []string `json:"contents"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"created_at"` // yyyy-mm-dd
}

// Video is one entry in the video library.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	YoutubeID    string `json:"youtube_id"`
	Category     string `json:"category"`
	Duration     string `json:"duration"`
	PublishedAt  string `json:"published_at"` // yyyy-mm-dd
}
