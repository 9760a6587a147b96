package models

import "time"

// Program is a workout program published by a trainer.
type Program struct {
	ID          string
	TrainerID   string // owning trainer account
	Title       string
	Description string
	Category    string
	Difficulty  string // "beginner", "intermediate", "advanced"
	DurationWks int
	Price       float64
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// IsFavorite is populated for signed-in callers on read paths only.
	IsFavorite bool
}
