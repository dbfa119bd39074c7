package models

import "gorm.io/gorm"

// Message is a note left by a guest for the collection owner.
type Message struct {
	gorm.Model
	Name   string `gorm:"size:100;not null"`
	Email  string `gorm:"size:255"`
	Body   string `gorm:"type:text;not null"`
	IPHash string `gorm:"size:64;index"`
	Read   bool   `gorm:"not null;default:false;index"`
}
