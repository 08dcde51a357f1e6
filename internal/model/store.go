package model

import "time"

// Store represents a physical retail location holding inventory.
type Store struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Address         string    `json:"address,omitempty"`
	MaxCapacity     float64   `json:"max_capacity"`
	CurrentCapacity float64   `json:"current_capacity"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
