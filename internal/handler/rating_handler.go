package handler

import (
	"net/http"

	"gamecatalog/backend/internal/database"
	"gamecatalog/backend/internal/guest"
	"gamecatalog/backend/internal/metrics"
	"gamecatalog/backend/internal/models"
	"gamecatalog/backend/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingInput struct {
	Rating            int    `json:"rating" binding:"required,min=1,max=5" example:"4"`
	DeviceFingerprint string `json:"device_fingerprint" binding:"required,fingerprint" example:"fp_3f9a2c71"`
}

// RatingSummary aggregates a game's guest ratings.
// MyRating is the caller's own score when they have one.
type RatingSummary struct {
	Average  float64 `json:"average" example:"4.2"`
	Count    int64   `json:"count" example:"12"`
	MyRating *int    `json:"my_rating"`
}

func ratingSummary(db *gorm.DB, gameID uint, ipHash, fingerprint string) (RatingSummary, error) {
	var agg struct {
		Average float64
		Count   int64
	}
	err := db.Model(&models.Rating{}).
		Select("COALESCE(AVG(value), 0) AS average, COUNT(*) AS count").
		Where("game_id = ?", gameID).
		Scan(&agg).Error
	if err != nil {
		return RatingSummary{}, err
	}

	summary := RatingSummary{Average: agg.Average, Count: agg.Count}
	if ipHash == "" || !validation.Fingerprint(fingerprint) {
		return summary, nil
	}

	var mine []models.Rating
	err = db.Where("game_id = ? AND ip_hash = ? AND device_fingerprint = ?", gameID, ipHash, fingerprint).
		Limit(1).Find(&mine).Error
	if err != nil {
		return RatingSummary{}, err
	}
	if len(mine) == 1 {
		summary.MyRating = &mine[0].Value
	}
	return summary, nil
}

func gameExists(db *gorm.DB, id uint) (bool, error) {
	var count int64
	err := db.Model(&models.Game{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// RateGame godoc
// @Summary      Rate a game
// @Description  Records the caller's 1-5 rating. Rating again replaces the previous value.
// @Tags         ratings
// @Accept       json
// @Produce      json
// @Param        id    path int         true "Game ID"
// @Param        input body RatingInput true "Rating"
// @Success      200 {object} RatingSummary
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      429 {object} ErrorResponse
// @Router       /games/{id}/ratings [post]
func RateGame(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var input RatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := gameExists(database.DB, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load game"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	ipHash := guest.IPHash(c)
	rating := models.Rating{
		GameID:            id,
		IPHash:            ipHash,
		DeviceFingerprint: input.DeviceFingerprint,
		Value:             input.Rating,
	}
	err = database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}, {Name: "ip_hash"}, {Name: "device_fingerprint"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rating).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rating"})
		return
	}
	metrics.GuestWrites.WithLabelValues("rating").Inc()

	summary, err := ratingSummary(database.DB, id, ipHash, input.DeviceFingerprint)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ratings"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetGameRatings godoc
// @Summary      Get a game's rating summary
// @Tags         ratings
// @Produce      json
// @Param        id                 path  int    true  "Game ID"
// @Param        device_fingerprint query string false "Include the caller's own rating"
// @Success      200 {object} RatingSummary
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id}/ratings [get]
func GetGameRatings(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	exists, err := gameExists(database.DB, id)
	if err != nil || !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	summary, err := ratingSummary(database.DB, id, guest.IPHash(c), c.Query("device_fingerprint"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ratings"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DeleteMyRating godoc
// @Summary      Withdraw own rating
// @Tags         ratings
// @Produce      json
// @Param        id                 path  int    true "Game ID"
// @Param        device_fingerprint query string true "Device fingerprint used when rating"
// @Success      200 {object} RatingSummary
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "No rating to withdraw"
// @Router       /games/{id}/ratings [delete]
func DeleteMyRating(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}
	fingerprint := c.Query("device_fingerprint")
	if !validation.Fingerprint(fingerprint) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid device_fingerprint"})
		return
	}

	// Hard delete so the identity can rate again without hitting the unique index.
	result := database.DB.Unscoped().
		Where("game_id = ? AND ip_hash = ? AND device_fingerprint = ?", id, guest.IPHash(c), fingerprint).
		Delete(&models.Rating{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rating"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rating not found"})
		return
	}

	summary, err := ratingSummary(database.DB, id, "", "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ratings"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
