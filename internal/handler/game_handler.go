package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gamecatalog/backend/internal/bgg"
	"gamecatalog/backend/internal/database"
	"gamecatalog/backend/internal/guest"
	"gamecatalog/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// region --- DTOs ---

type GameInput struct {
	Title            string   `json:"title" binding:"required,max=255"`
	Description      *string  `json:"description"`
	ImageURL         *string  `json:"image_url" binding:"omitempty,url"`
	AdditionalImages []string `json:"additional_images" binding:"omitempty,dive,url"`
	Difficulty       string   `json:"difficulty" binding:"required"`
	GameType         string   `json:"game_type"`
	PlayTime         string   `json:"play_time" binding:"required"`
	MinPlayers       int      `json:"min_players" binding:"required,min=1"`
	MaxPlayers       int      `json:"max_players" binding:"required,min=1"`
	SuggestedAge     string   `json:"suggested_age" binding:"max=8"`
	BGGID            string   `json:"bgg_id" binding:"omitempty,numeric"`
	BGGURL           string   `json:"bgg_url" binding:"omitempty,url"`
	TagIDs           []uint   `json:"tag_ids"` // IDs of the tags to associate with the game
}

type GameResponse struct {
	ID               uint           `json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	Title            string         `json:"title"`
	Description      *string        `json:"description"`
	ImageURL         *string        `json:"image_url"`
	AdditionalImages []string       `json:"additional_images"`
	Difficulty       string         `json:"difficulty"`
	GameType         string         `json:"game_type"`
	PlayTime         string         `json:"play_time"`
	MinPlayers       int            `json:"min_players"`
	MaxPlayers       int            `json:"max_players"`
	SuggestedAge     string         `json:"suggested_age"`
	BGGID            string         `json:"bgg_id"`
	BGGURL           string         `json:"bgg_url"`
	Tags             []TagResponse  `json:"tags"`
	Rating           *RatingSummary `json:"rating,omitempty"`
}

func newGameResponse(game models.Game) GameResponse {
	tagResponses := []TagResponse{}
	for _, tag := range game.Tags {
		if tag != nil {
			tagResponses = append(tagResponses, newTagResponse(*tag))
		}
	}

	images := []string(game.AdditionalImages)
	if images == nil {
		images = []string{}
	}

	return GameResponse{
		ID:               game.ID,
		CreatedAt:        game.CreatedAt,
		Title:            game.Title,
		Description:      game.Description,
		ImageURL:         game.ImageURL,
		AdditionalImages: images,
		Difficulty:       game.Difficulty,
		GameType:         game.GameType,
		PlayTime:         game.PlayTime,
		MinPlayers:       game.MinPlayers,
		MaxPlayers:       game.MaxPlayers,
		SuggestedAge:     game.SuggestedAge,
		BGGID:            game.BGGID,
		BGGURL:           game.BGGURL,
		Tags:             tagResponses,
	}
}

// PaginatedGameResponse defines the structure for a paginated list of games.
type PaginatedGameResponse struct {
	Data []GameResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// validate checks the bucketed fields against the labels the catalog filters use.
func (in GameInput) validate() error {
	if !bgg.IsDifficultyLevel(in.Difficulty) {
		return errors.New("difficulty must be one of: " + strings.Join(bgg.DifficultyLevels, ", "))
	}
	if !bgg.IsPlayTimeBucket(in.PlayTime) {
		return errors.New("play_time must be one of: " + strings.Join(bgg.PlayTimeBuckets, ", "))
	}
	return nil
}

func (in GameInput) apply(game *models.Game) {
	game.Title = strings.TrimSpace(in.Title)
	game.Description = in.Description
	game.ImageURL = in.ImageURL
	game.AdditionalImages = datatypes.JSONSlice[string](in.AdditionalImages)
	if game.AdditionalImages == nil {
		game.AdditionalImages = datatypes.JSONSlice[string]{}
	}
	game.Difficulty = in.Difficulty
	game.GameType = in.GameType
	if game.GameType == "" {
		game.GameType = models.GameTypeBoardGame
	}
	game.PlayTime = in.PlayTime
	game.MinPlayers = in.MinPlayers
	game.MaxPlayers = in.MaxPlayers
	game.SuggestedAge = in.SuggestedAge
	if game.SuggestedAge == "" {
		game.SuggestedAge = bgg.DefaultMinAge
	}
	game.BGGID = in.BGGID
	game.BGGURL = in.BGGURL
}

// endregion

// region --- Admin Handlers ---

// CreateGame godoc
// @Summary      Create a new game
// @Description  Adds a hand-curated game and associates it with given tags.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  GameResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/games [post]
func CreateGame(c *gin.Context) {
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := input.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Find tags by IDs
	var tags []*models.Tag
	if len(input.TagIDs) > 0 {
		database.DB.Find(&tags, input.TagIDs)
	}

	var game models.Game
	input.apply(&game)
	game.Tags = tags

	if err := database.DB.Create(&game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
		return
	}

	c.JSON(http.StatusCreated, newGameResponse(game))
}

// UpdateGame godoc
// @Summary      Update a game
// @Description  Updates a game's details and replaces its tags.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int       true  "Game ID"
// @Param        input body      GameInput true  "New Game Info"
// @Success      200   {object}  GameResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Admin access required"
// @Failure      404   {object}  ErrorResponse "Game not found"
// @Router       /admin/games/{id} [put]
func UpdateGame(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var game models.Game
	if err := database.DB.First(&game, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := input.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Find new tags
	var tags []*models.Tag
	if len(input.TagIDs) > 0 {
		database.DB.Find(&tags, input.TagIDs)
	}

	input.apply(&game)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&game).Association("Tags").Replace(tags); err != nil {
			return err
		}
		return tx.Omit("Tags").Save(&game).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update game"})
		return
	}

	// Preload tags for the response
	database.DB.Preload("Tags").First(&game, id)

	c.JSON(http.StatusOK, newGameResponse(game))
}

// DeleteGame godoc
// @Summary      Delete a game
// @Description  Deletes an existing game.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game deleted"}"
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /admin/games/{id} [delete]
func DeleteGame(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	result := database.DB.Select("Tags").Delete(&models.Game{Model: gorm.Model{ID: id}})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete game"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game deleted"})
}

// endregion

// region --- Public Handlers ---

// GetGameByID godoc
// @Summary      Get a single game by ID
// @Description  Retrieves a game with its tags and guest rating summary.
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Param        device_fingerprint query string false "Include the caller's own rating"
// @Success      200 {object} GameResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func GetGameByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var game models.Game
	if err := database.DB.Preload("Tags").First(&game, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	summary, err := ratingSummary(database.DB, id, guest.IPHash(c), c.Query("device_fingerprint"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ratings"})
		return
	}

	response := newGameResponse(game)
	response.Rating = &summary
	c.JSON(http.StatusOK, response)
}

// GetGames godoc
// @Summary      Get a list of games
// @Description  Retrieves a paginated list of games, filterable by title, buckets, player count and tags.
// @Tags         games
// @Produce      json
// @Param        q          query     string  false  "Search query for game title"
// @Param        play_time  query     string  false  "Play time bucket"
// @Param        difficulty query     string  false  "Difficulty level"
// @Param        players    query     int     false  "Supported player count"
// @Param        tag_ids    query     string  false  "Comma-separated list of Tag IDs"
// @Param        page       query     int     false  "Page number" default(1)
// @Param        limit      query     int     false  "Items per page" default(10)
// @Success      200 {object} PaginatedGameResponse
// @Failure      400 {object} ErrorResponse
// @Router       /games [get]
func GetGames(c *gin.Context) {
	page, limit := pageParams(c)
	offset := (page - 1) * limit

	dbQuery := database.DB.Model(&models.Game{})

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		dbQuery = dbQuery.Where("LOWER(games.title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	if pt := c.Query("play_time"); pt != "" {
		if !bgg.IsPlayTimeBucket(pt) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown play_time"})
			return
		}
		dbQuery = dbQuery.Where("games.play_time = ?", pt)
	}

	if d := c.Query("difficulty"); d != "" {
		if !bgg.IsDifficultyLevel(d) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown difficulty"})
			return
		}
		dbQuery = dbQuery.Where("games.difficulty = ?", d)
	}

	if p := c.Query("players"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "players must be a positive integer"})
			return
		}
		dbQuery = dbQuery.Where("games.min_players <= ? AND games.max_players >= ?", n, n)
	}

	// Filter by tags
	var tagIDs []uint
	for _, s := range splitCommaSeparated(c.Query("tag_ids")) {
		if id, parseErr := strconv.ParseUint(s, 10, 32); parseErr == nil {
			tagIDs = append(tagIDs, uint(id))
		}
	}
	if len(tagIDs) > 0 {
		// A subquery keeps one row per game, so the count needs no GROUP BY.
		tagged := database.DB.Table("game_tags").Select("game_id").Where("tag_id IN ?", tagIDs)
		dbQuery = dbQuery.Where("games.id IN (?)", tagged)
	}

	var totalItems int64
	if err := dbQuery.Session(&gorm.Session{}).Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count games"})
		return
	}

	var games []models.Game
	err := dbQuery.Session(&gorm.Session{}).
		Preload("Tags").
		Order("games.title, games.id").
		Offset(offset).Limit(limit).
		Find(&games).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve games"})
		return
	}

	response := make([]GameResponse, 0, len(games))
	for _, game := range games {
		response = append(response, newGameResponse(game))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(response, totalItems, page, limit))
}

// endregion
