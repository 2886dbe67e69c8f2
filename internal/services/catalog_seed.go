package services

import "notesnexus-backend/internal/models"

// DefaultNotes is the seeded study-note library.
func DefaultNotes() []models.Note {
	return []models.Note{
		{
			ID:          "1",
			Title:       "Introduction to Html",
			Excerpt:     "Learn the fundamentals of HTML and how to structure web content effectively.",
			Description: "Comprehensive guide covering all HTML fundamentals",
			Category:    "Programming",
			Pages:       42,
			DownloadURL: "/Notes/Html.pdf",
			Contents: []string{
				"Introduction to HTML structure",
				"HTML elements and attributes",
				"Forms and input types",
				"Semantic HTML5 elements",
				"Accessibility best practices",
			},
			Tags:      []string{"HTML", "Web Development", "Frontend", "Beginner"},
			CreatedAt: "2023-08-15",
		},
		{
			ID:          "2",
			Title:       "Modern JavaScript Concepts",
			Excerpt:     "Explore advanced JavaScript concepts including ES6 features and beyond.",
			Description: "Advanced JavaScript concepts and best practices",
			Category:    "Programming",
			Pages:       78,
			DownloadURL: "/Notes/javascript.pdf",
			Contents: []string{
				"ES6+ features and syntax",
				"Promises and async/await",
				"Modern module patterns",
				"Functional programming concepts",
				"Performance optimization",
			},
			Tags:      []string{"JavaScript", "ES6", "Web Development", "Advanced"},
			CreatedAt: "2023-09-20",
		},
		{
			ID:          "3",
			Title:       "Advanced CSS Techniques",
			Excerpt:     "Master modern CSS with flexbox, grid, and CSS custom properties.",
			Description: "Modern CSS layout and styling techniques",
			Category:    "Design",
			Pages:       65,
			DownloadURL: "/Notes/CSS_Complete_Notes.pdf",
			Contents: []string{
				"Flexbox and Grid layouts",
				"CSS custom properties",
				"Advanced animations and transitions",
				"Responsive design patterns",
				"CSS architecture (BEM, SMACSS, etc.)",
			},
			Tags:      []string{"CSS", "Web Design", "Frontend", "Responsive"},
			CreatedAt: "2023-10-05",
		},
		{
			ID:          "4",
			Title:       "C Language Principles",
			Excerpt:     "Understand the core principles of effective programming in C.",
			Description: "Complete guide to C programming language",
			Category:    "Programming",
			Pages:       94,
			DownloadURL: "/Notes/C_Complete_Notes.pdf",
			Contents: []string{
				"C syntax and data types",
				"Memory management and pointers",
				"Data structures in C",
				"File handling",
				"Modular program design",
			},
			Tags:      []string{"C", "Systems", "Programming", "Memory Management"},
			CreatedAt: "2023-11-12",
		},
	}
}

// DefaultVideos is the seeded video library.
func DefaultVideos() []models.Video {
	return []models.Video{
		{
			ID:           "1",
			Title:        "Getting Started with React",
			Description:  "Learn the fundamentals of React in this beginner-friendly tutorial.",
			ThumbnailURL: "https://images.unsplash.com/photo-1633356122102-3fe601e05bd2?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
			YoutubeID:    "w7ejDZ8SWv8",
			Category:     "React",
			Duration:     "12:45",
			PublishedAt:  "2023-08-15",
		},
		{
			ID:           "2",
			Title:        "JavaScript Array Methods",
			Description:  "Master JavaScript array methods like map, filter, and reduce.",
			ThumbnailURL: "https://images.unsplash.com/photo-1579468118864-1b9ea3c0db4a?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
			YoutubeID:    "R8rmfD9Y5-c",
			Category:     "JavaScript",
			Duration:     "15:32",
			PublishedAt:  "2023-09-20",
		},
		{
			ID:           "3",
			Title:        "CSS Grid Layout Tutorial",
			Description:  "Learn how to create complex layouts with CSS Grid.",
			ThumbnailURL: "https://images.unsplash.com/photo-1621839673705-6617adf9e890?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
			YoutubeID:    "jV8B24rSN5o",
			Category:     "CSS",
			Duration:     "18:10",
			PublishedAt:  "2023-10-05",
		},
		{
			ID:           "4",
			Title:        "TypeScript Crash Course",
			Description:  "Get up to speed with TypeScript in less than 30 minutes.",
			ThumbnailURL: "https://images.unsplash.com/photo-1542831371-29b0f74f9713?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
			YoutubeID:    "BCg4U1FzODs",
			Category:     "TypeScript",
			Duration:     "27:22",
			PublishedAt:  "2023-11-12",
		},
		{
			ID:           "5",
			Title:        "React Hooks Explained",
			Description:  "Understand how to use React Hooks effectively in your applications.",
			ThumbnailURL: "https://images.unsplash.com/photo-1627398242454-45a1465c2479?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
			YoutubeID:    "TNhaISOUy6Q",
			Category:     "React",
			Duration:     "21:15",
			PublishedAt:  "2023-12-01",
		},
	}
}
