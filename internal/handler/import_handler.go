package handler

import (
	"context"
	"errors"
	"net/http"

	"gamecatalog/backend/internal/bgg"
	"gamecatalog/backend/internal/hub"
	"gamecatalog/backend/internal/metrics"
	"gamecatalog/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// GameImporter is satisfied by *bgg.Importer.
type GameImporter interface {
	ImportFromURL(ctx context.Context, rawURL string) (*models.Game, error)
}

type ImportInput struct {
	URL string `json:"url" binding:"required" example:"https://boardgamegeek.com/boardgame/174430/gloomhaven"`
}

type ImportResponse struct {
	Success bool          `json:"success"`
	Game    *GameResponse `json:"game,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// ImportGame godoc
// @Summary      Import a game from BoardGameGeek
// @Description  Fetches the game behind a BoardGameGeek URL and adds it to the catalog.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ImportInput true "BoardGameGeek game URL"
// @Success      200  {object}  ImportResponse
// @Failure      400  {object}  ImportResponse "Malformed URL"
// @Failure      500  {object}  ImportResponse "Upstream or storage failure"
// @Router       /admin/games/import [post]
func ImportGame(importer GameImporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ImportInput
		if err := c.ShouldBindJSON(&input); err != nil {
			metrics.BGGImports.WithLabelValues("invalid_url").Inc()
			c.JSON(http.StatusBadRequest, ImportResponse{Error: "A url field is required"})
			return
		}

		game, err := importer.ImportFromURL(c.Request.Context(), input.URL)
		if err != nil {
			status, result, msg := importFailure(err)
			metrics.BGGImports.WithLabelValues(result).Inc()
			_ = c.Error(err)
			c.JSON(status, ImportResponse{Error: msg})
			return
		}

		metrics.BGGImports.WithLabelValues("success").Inc()
		response := newGameResponse(*game)
		hub.GlobalHub.Broadcast(hub.AdminChannel, hub.Event{Type: hub.EventGameImported, Payload: response})
		c.JSON(http.StatusOK, ImportResponse{Success: true, Game: &response})
	}
}

func importFailure(err error) (status int, result, msg string) {
	switch {
	case errors.Is(err, bgg.ErrInvalidURL):
		return http.StatusBadRequest, "invalid_url", "Invalid BoardGameGeek URL"
	case errors.Is(err, bgg.ErrUpstreamFetch):
		return http.StatusInternalServerError, "upstream_error", "Failed to fetch game from BoardGameGeek"
	case errors.Is(err, bgg.ErrPersistence):
		return http.StatusInternalServerError, "persistence_error", "Failed to save game"
	default:
		return http.StatusInternalServerError, "error", "Import failed"
	}
}
