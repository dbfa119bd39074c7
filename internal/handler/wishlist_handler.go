package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gamecatalog/backend/internal/database"
	"gamecatalog/backend/internal/hub"
	"gamecatalog/backend/internal/metrics"
	"gamecatalog/backend/internal/models"
	"gamecatalog/backend/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	errDuplicateSuggestion = errors.New("already on the wishlist")
	errDuplicateVote       = errors.New("already voted")
)

// region --- DTOs ---

type WishlistSuggestInput struct {
	Title   string `json:"title" binding:"required,max=255" example:"Spirit Island"`
	BGGURL  string `json:"bgg_url" binding:"omitempty,url,max=512" example:"https://boardgamegeek.com/boardgame/162886/spirit-island"`
	GuestID string `json:"guest_id" binding:"required,guestid" example:"guest_5b1e0c9d"`
}

type WishlistVoteInput struct {
	GuestID string `json:"guest_id" binding:"required,guestid" example:"guest_5b1e0c9d"`
}

type WishlistItemResponse struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	BGGURL    string    `json:"bgg_url"`
	Votes     int64     `json:"votes"`
	Voted     bool      `json:"voted"`
}

// wishlistRow is one item joined with its vote tally.
type wishlistRow struct {
	ID        uint
	CreatedAt time.Time
	Title     string
	BGGURL    string `gorm:"column:bgg_url"`
	Votes     int64
}

// endregion

func loadWishlist(db *gorm.DB, guestID string) ([]WishlistItemResponse, error) {
	var rows []wishlistRow
	err := db.Model(&models.WishlistItem{}).
		Select("wishlist_items.id, wishlist_items.created_at, wishlist_items.title, wishlist_items.bgg_url, " +
			"(SELECT COUNT(*) FROM wishlist_votes WHERE wishlist_votes.item_id = wishlist_items.id) AS votes").
		Order("votes DESC, wishlist_items.created_at, wishlist_items.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	voted := map[uint]bool{}
	if guestID != "" {
		var ids []uint
		if err := db.Model(&models.WishlistVote{}).Where("guest_identifier = ?", guestID).Pluck("item_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			voted[id] = true
		}
	}

	items := make([]WishlistItemResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, WishlistItemResponse{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			Title:     r.Title,
			BGGURL:    r.BGGURL,
			Votes:     r.Votes,
			Voted:     voted[r.ID],
		})
	}
	return items, nil
}

// GetWishlist godoc
// @Summary      Get the wishlist
// @Description  Lists suggested games, most voted first. Pass guest_id to get the voted flag.
// @Tags         wishlist
// @Produce      json
// @Param        guest_id query string false "Caller's guest identifier"
// @Success      200 {array} WishlistItemResponse
// @Router       /wishlist [get]
func GetWishlist(c *gin.Context) {
	guestID := c.Query("guest_id")
	if guestID != "" && !validation.GuestID(guestID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest_id"})
		return
	}

	items, err := loadWishlist(database.DB, guestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wishlist"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// SuggestWishlistItem godoc
// @Summary      Suggest a game
// @Description  Adds a game to the wishlist and counts the suggester's vote.
// @Tags         wishlist
// @Accept       json
// @Produce      json
// @Param        input body WishlistSuggestInput true "Suggestion"
// @Success      201 {object} WishlistItemResponse
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Already on the wishlist"
// @Failure      429 {object} ErrorResponse
// @Router       /wishlist [post]
func SuggestWishlistItem(c *gin.Context) {
	var input WishlistSuggestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must not be blank"})
		return
	}

	item := models.WishlistItem{
		Title:       title,
		TitleKey:    strings.ToLower(title),
		BGGURL:      input.BGGURL,
		SuggestedBy: input.GuestID,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.WishlistItem{}).Where("title_key = ?", item.TitleKey).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errDuplicateSuggestion
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return tx.Create(&models.WishlistVote{ItemID: item.ID, GuestIdentifier: input.GuestID}).Error
	})
	if errors.Is(err, errDuplicateSuggestion) {
		c.JSON(http.StatusConflict, gin.H{"error": "This game is already on the wishlist"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save suggestion"})
		return
	}
	metrics.GuestWrites.WithLabelValues("wishlist_suggestion").Inc()

	response := WishlistItemResponse{
		ID:        item.ID,
		CreatedAt: item.CreatedAt,
		Title:     item.Title,
		BGGURL:    item.BGGURL,
		Votes:     1,
		Voted:     true,
	}
	hub.GlobalHub.Broadcast(hub.AdminChannel, hub.Event{Type: hub.EventWishlistSuggested, Payload: response})
	c.JSON(http.StatusCreated, response)
}

// VoteWishlistItem godoc
// @Summary      Vote for a wishlist item
// @Tags         wishlist
// @Accept       json
// @Produce      json
// @Param        id    path int               true "Wishlist item ID"
// @Param        input body WishlistVoteInput true "Voter"
// @Success      200 {object} map[string]int64 "{"votes": 3}"
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Item not found"
// @Failure      409 {object} ErrorResponse "Already voted"
// @Failure      429 {object} ErrorResponse
// @Router       /wishlist/{id}/vote [post]
func VoteWishlistItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}
	var input WishlistVoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var votes int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var item models.WishlistItem
		if err := tx.First(&item, id).Error; err != nil {
			return err
		}
		var count int64
		err := tx.Model(&models.WishlistVote{}).
			Where("item_id = ? AND guest_identifier = ?", id, input.GuestID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return errDuplicateVote
		}
		if err := tx.Create(&models.WishlistVote{ItemID: id, GuestIdentifier: input.GuestID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.WishlistVote{}).Where("item_id = ?", id).Count(&votes).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist item not found"})
		return
	case errors.Is(err, errDuplicateVote):
		c.JSON(http.StatusConflict, gin.H{"error": "You have already voted for this game"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save vote"})
		return
	}
	metrics.GuestWrites.WithLabelValues("wishlist_vote").Inc()

	c.JSON(http.StatusOK, gin.H{"votes": votes})
}

// UnvoteWishlistItem godoc
// @Summary      Remove own vote
// @Tags         wishlist
// @Produce      json
// @Param        id       path  int    true "Wishlist item ID"
// @Param        guest_id query string true "Caller's guest identifier"
// @Success      200 {object} map[string]int64 "{"votes": 2}"
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "No vote to remove"
// @Router       /wishlist/{id}/vote [delete]
func UnvoteWishlistItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}
	guestID := c.Query("guest_id")
	if !validation.GuestID(guestID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest_id"})
		return
	}

	result := database.DB.Where("item_id = ? AND guest_identifier = ?", id, guestID).Delete(&models.WishlistVote{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove vote"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vote not found"})
		return
	}

	var votes int64
	if err := database.DB.Model(&models.WishlistVote{}).Where("item_id = ?", id).Count(&votes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count votes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"votes": votes})
}

// DeleteWishlistItem godoc
// @Summary      Remove a wishlist item
// @Description  Deletes an item and its votes, e.g. once the game has been bought.
// @Tags         admin-wishlist
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Wishlist item ID"
// @Success      200 {object} map[string]string "{"message": "Wishlist item deleted"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Item not found"
// @Router       /admin/wishlist/{id} [delete]
func DeleteWishlistItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var affected int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.WishlistVote{}).Error; err != nil {
			return err
		}
		// Hard delete frees the title for a later suggestion.
		result := tx.Unscoped().Delete(&models.WishlistItem{}, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete wishlist item"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Wishlist item deleted"})
}
