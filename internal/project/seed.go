package project

import (
	"time"

	"github.com/pabu-app/focusd/internal/storage"
)

// seedProjects is the starter catalogue for a fresh install: a mix of
// approved projects ready for focus sessions and a couple of unapproved ones
// demonstrating the guardian review queue.
func seedProjects() []storage.Project {
	return []storage.Project{
		{
			ID:               "1",
			Title:            "Space Explorer",
			ShortDescription: "Learn about planets and stars in our solar system",
			LongDescription:  "An interactive journey through space where you can explore planets, learn about stars, and discover the wonders of our universe.",
			Image:            "https://images.unsplash.com/photo-1446776877081-d282a0f896e2?w=400",
			IsFavorite:       true,
			IsApproved:       true,
			CreatedAt:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:               "2",
			Title:            "Math Adventure",
			ShortDescription: "Fun math games and puzzles for all levels",
			LongDescription:  "Practice math skills through engaging games, puzzles, and interactive challenges designed to make learning math enjoyable.",
			Image:            "https://images.unsplash.com/photo-1509228468518-180dd4864904?w=400",
			IsApproved:       true,
			CreatedAt:        time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:               "3",
			Title:            "Ocean Discovery",
			ShortDescription: "Dive deep into marine life and ocean ecosystems",
			LongDescription:  "Explore the depths of the ocean, meet fascinating sea creatures, and learn about marine ecosystems and conservation.",
			IsFavorite:       true,
			CreatedAt:        time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:               "4",
			Title:            "Art Studio",
			ShortDescription: "Create digital art and learn drawing techniques",
			LongDescription:  "Express your creativity through digital art tools, learn various drawing techniques, and create beautiful artwork.",
			Image:            "https://images.unsplash.com/photo-1513475382585-d06e58bcb0e0?w=400",
			CreatedAt:        time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:               "5",
			Title:            "Mars Missions",
			ShortDescription: "Discover how robots explore the Red Planet.",
			LongDescription:  "Learn about the history of Mars missions, from the Sojourner rover to Perseverance, including how engineers design, launch, and control these robotic explorers.",
			IsApproved:       true,
			CreatedAt:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:               "6",
			Title:            "The Science of Baking",
			ShortDescription: "Explore chemistry through cookies and bread.",
			LongDescription:  "Experiment with ingredients like yeast, baking soda, and sugar to see how they react under heat. Investigate why dough rises and how gluten forms.",
			IsApproved:       true,
			CreatedAt:        time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC),
		},
	}
}
