package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GameTypeBoardGame is the game_type assigned to every BoardGameGeek import.
const GameTypeBoardGame = "Board Game"

// Game represents a catalog entry.
//
// BGGID is indexed but deliberately not unique: imports are insert-only unless
// upsert mode is enabled, so the same upstream game may appear more than once.
type Game struct {
	gorm.Model
	Title            string  `gorm:"size:255;not null"`
	Description      *string `gorm:"type:text"`
	ImageURL         *string `gorm:"size:1024"`
	AdditionalImages datatypes.JSONSlice[string]
	Difficulty       string `gorm:"size:32;index"`
	GameType         string `gorm:"size:64;index"`
	PlayTime         string `gorm:"size:32;index"`
	MinPlayers       int    `gorm:"not null;default:1"`
	MaxPlayers       int    `gorm:"not null;default:4"`
	SuggestedAge     string `gorm:"size:8"`
	BGGID            string `gorm:"column:bgg_id;size:32;index"`
	BGGURL           string `gorm:"column:bgg_url;size:512"`
	Tags             []*Tag `gorm:"many2many:game_tags;"`
}
