package domain

import "time"

// Capsule is a curated product collection. ProductCount is derived from the
// products that reference it and is never stored.
type Capsule struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CoverImage   string    `json:"coverImage,omitempty"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
}
