package domain

import "time"

// Service услуга салона
type Service struct {
	ID              int64
	Name            string
	Description     *string
	DurationMinutes int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

