package services

import (
	"sort"
	"strings"

	"notesnexus-backend/internal/models"
)

// CatalogService serves the read-only notes/video learning library. The
// content is seeded at startup and filtered in memory.
type CatalogService struct {
	notes  []models.Note
	videos []models.Video
}

func NewCatalogService(notes []models.Note, videos []models.Video) *CatalogService {
	return &CatalogService{notes: notes, videos: videos}
}

// CatalogFilter narrows and orders a catalog listing.
type CatalogFilter struct {
	Query    string // matched against title, excerpt/description and tags
	Category string
	Sort     string // "newest" (default) or "title"
}

// Notes returns the notes matching the filter.
func (s *CatalogService) Notes(f CatalogFilter) []models.Note {
	out := make([]models.Note, 0, len(s.notes))
	q := strings.ToLower(f.Query)
	for _, n := range s.notes {
		if f.Category != "" && !strings.EqualFold(n.Category, f.Category) {
			continue
		}
		if q != "" && !noteMatches(n, q) {
			continue
		}
		out = append(out, n)
	}

	switch f.Sort {
	case "title":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	}
	return out
}

func noteMatches(n models.Note, q string) bool {
	if strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Excerpt), q) ||
		strings.Contains(strings.ToLower(n.Description), q) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Videos returns the videos matching the filter.
func (s *CatalogService) Videos(f CatalogFilter) []models.Video {
	out := make([]models.Video, 0, len(s.videos))
	q := strings.ToLower(f.Query)
	for _, v := range s.videos {
		if f.Category != "" && !strings.EqualFold(v.Category, f.Category) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(v.Title), q) &&
			!strings.Contains(strings.ToLower(v.Description), q) {
			continue
		}
		out = append(out, v)
	}

	switch f.Sort {
	case "title":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PublishedAt > out[j].PublishedAt })
	}
	return out
}

// NoteCategories returns the distinct note categories in listing order.
func (s *CatalogService) NoteCategories() []string {
	return distinctCategories(len(s.notes), func(i int) string { return s.notes[i].Category })
}

// VideoCategories returns the distinct video categories in listing order.
func (s *CatalogService) VideoCategories() []string {
	return distinctCategories(len(s.videos), func(i int) string { return s.videos[i].Category })
}

func distinctCategories(n int, at func(int) string) []string {
	seen := make(map[string]bool, n)
	var out []string
	for i := 0; i < n; i++ {
		c := at(i)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
