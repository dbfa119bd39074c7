package handler

import (
	"net/http"
	"strings"
	"time"

	"gamecatalog/backend/internal/database"
	"gamecatalog/backend/internal/guest"
	"gamecatalog/backend/internal/hub"
	"gamecatalog/backend/internal/metrics"
	"gamecatalog/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type MessageInput struct {
	Name  string `json:"name" binding:"required,max=100" example:"Alex"`
	Email string `json:"email" binding:"omitempty,email,max=255" example:"alex@example.com"`
	Body  string `json:"body" binding:"required,max=5000" example:"Could we play Azul next Friday?"`
}

type MessageResponse struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
}

func newMessageResponse(m models.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		Name:      m.Name,
		Email:     m.Email,
		Body:      m.Body,
		Read:      m.Read,
	}
}

// CreateMessage godoc
// @Summary      Leave a message for the owner
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        input body MessageInput true "Message"
// @Success      201 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /messages [post]
func CreateMessage(c *gin.Context) {
	var input MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(input.Body) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must not be blank"})
		return
	}

	message := models.Message{
		Name:   strings.TrimSpace(input.Name),
		Email:  input.Email,
		Body:   input.Body,
		IPHash: guest.IPHash(c),
	}
	if err := database.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}
	metrics.GuestWrites.WithLabelValues("message").Inc()

	response := newMessageResponse(message)
	hub.GlobalHub.Broadcast(hub.AdminChannel, hub.Event{Type: hub.EventMessageCreated, Payload: response})
	c.JSON(http.StatusCreated, response)
}

// ListMessages godoc
// @Summary      List guest messages
// @Tags         admin-messages
// @Produce      json
// @Security     BearerAuth
// @Param        unread query bool false "Only unread messages"
// @Param        page   query int  false "Page number" default(1)
// @Param        limit  query int  false "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[MessageResponse]
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Router       /admin/messages [get]
func ListMessages(c *gin.Context) {
	page, limit := pageParams(c)

	query := database.DB.Model(&models.Message{}).Order("created_at DESC, id DESC")
	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}

	paginated, err := Paginate[models.Message](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		return
	}

	data := make([]MessageResponse, 0, len(paginated.Data))
	for _, m := range paginated.Data {
		data = append(data, newMessageResponse(m))
	}
	c.JSON(http.StatusOK, PaginatedResponse[MessageResponse]{Data: data, Meta: paginated.Meta})
}

// MarkMessageRead godoc
// @Summary      Mark a message as read
// @Tags         admin-messages
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Message ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse "Message not found"
// @Router       /admin/messages/{id}/read [put]
func MarkMessageRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var message models.Message
	if err := database.DB.First(&message, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	if err := database.DB.Model(&message).Update("read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update message"})
		return
	}
	message.Read = true

	c.JSON(http.StatusOK, newMessageResponse(message))
}

// DeleteMessage godoc
// @Summary      Delete a message
// @Tags         admin-messages
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Message ID"
// @Success      200 {object} map[string]string "{"message": "Message deleted"}"
// @Failure      404 {object} ErrorResponse "Message not found"
// @Router       /admin/messages/{id} [delete]
func DeleteMessage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	result := database.DB.Delete(&models.Message{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}
