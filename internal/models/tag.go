package models

import "gorm.io/gorm"

// Tag represents a catalog tag (e.g., "Cooperative", "Deck Building", "Party").
type Tag struct {
	gorm.Model
	Name string `gorm:"size:100;unique;not null"`
}
