// internal/models/gift.go
package models

import "time"

// Gift is a single catalog item. The recommendation core treats it as
// read-only; ownership stays with the catalog store.
type Gift struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	AgeMin      int       `json:"ageMin"`
	AgeMax      int       `json:"ageMax"`
	Price       float64   `json:"price"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Category groups gifts and carries the interests it maps to.
type Category struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Interests []string `json:"interests,omitempty"`
}
