package models

import (
	"time"

	"gorm.io/gorm"
)

// WishlistItem is a game guests would like added to the collection.
type WishlistItem struct {
	gorm.Model
	Title       string `gorm:"size:255;not null"`
	TitleKey    string `gorm:"size:255;not null;uniqueIndex"` // lower-cased title, one suggestion per game
	BGGURL      string `gorm:"column:bgg_url;size:512"`
	SuggestedBy string `gorm:"size:64;not null"`

	Votes []WishlistVote `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE;"`
}

// WishlistVote records one guest's vote for an item.
// The composite primary key rejects a second vote from the same guest.
type WishlistVote struct {
	ItemID          uint   `gorm:"primaryKey"`
	GuestIdentifier string `gorm:"primaryKey;size:64"`
	CreatedAt       time.Time
}
