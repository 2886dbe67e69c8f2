package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotesFilterByCategory(t *testing.T) {
	svc := NewCatalogService(DefaultNotes(), DefaultVideos())

	notes := svc.Notes(CatalogFilter{Category: "Design"})
	require.Len(t, notes, 1)
	assert.Equal(t, "Advanced CSS Techniques", notes[0].Title)
}

func TestNotesSearchMatchesTags(t *testing.T) {
	svc := NewCatalogService(DefaultNotes(), DefaultVideos())

	notes := svc.Notes(CatalogFilter{Query: "es6"})
	require.Len(t, notes, 1)
	assert.Equal(t, "Modern JavaScript Concepts", notes[0].Title)
}

func TestNotesDefaultSortNewestFirst(t *testing.T) {
	svc := NewCatalogService(DefaultNotes(), DefaultVideos())

	notes := svc.Notes(CatalogFilter{})
	require.NotEmpty(t, notes)
	for i := 1; i < len(notes); i++ {
		assert.GreaterOrEqual(t, notes[i-1].CreatedAt, notes[i].CreatedAt)
	}
}

func TestNotesSortByTitle(t *testing.T) {
	svc := NewCatalogService(DefaultNotes(), DefaultVideos())

	notes := svc.Notes(CatalogFilter{Sort: "title"})
	require.NotEmpty(t, notes)
	for i := 1; i < len(notes); i++ {
		assert.LessOrEqual(t, notes[i-1].Title, notes[i].Title)
	}
}

func TestVideosFilterAndCategories(t *testing.T) {
	svc := NewCatalogService(DefaultNotes(), DefaultVideos())

	videos := svc.Videos(CatalogFilter{Category: "react"})
	require.Len(t, videos, 2)
	for _, v := range videos {
		assert.Equal(t, "React", v.Category)
	}

	assert.Contains(t, svc.VideoCategories(), "React")
	assert.Contains(t, svc.NoteCategories(), "Programming")
}

func TestVideosSearchNoMatch(t *testing.T) {
	svc := NewCatalogService(DefaultNotes(), DefaultVideos())
	assert.Empty(t, svc.Videos(CatalogFilter{Query: "quantum chromodynamics"}))
}
