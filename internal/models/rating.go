package models

import "gorm.io/gorm"

// Rating is a guest's 1-5 score for a game.
// A guest is identified by the hash of their IP plus a device fingerprint;
// each identity holds at most one rating per game.
type Rating struct {
	gorm.Model
	GameID            uint   `gorm:"not null;uniqueIndex:idx_rating_identity"`
	IPHash            string `gorm:"size:64;not null;uniqueIndex:idx_rating_identity"`
	DeviceFingerprint string `gorm:"size:128;not null;uniqueIndex:idx_rating_identity"`
	Value             int    `gorm:"not null"`

	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE;"`
}
