package handler

import (
	"encoding/json"
	"io"
	"time"

	"gamecatalog/backend/internal/hub"
	"gamecatalog/backend/internal/logging"

	"github.com/gin-gonic/gin"
)

// KeepAliveInterval spaces the comment frames that stop proxies from closing an idle stream.
var KeepAliveInterval = 25 * time.Second

// StreamEvents godoc
// @Summary      Admin event stream
// @Description  Server-sent events for imports, new messages and wishlist suggestions.
// @Tags         admin-events
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Router       /admin/events [get]
func StreamEvents(h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := make(hub.Client, 16)
		h.Subscribe(hub.AdminChannel, client)
		defer h.Unsubscribe(hub.AdminChannel, client)

		log := logging.Ctx(c.Request.Context())
		log.Debug().Msg("admin event stream opened")

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		ticker := time.NewTicker(KeepAliveInterval)
		defer ticker.Stop()

		c.Stream(func(w io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case msg, ok := <-client:
				if !ok {
					return false
				}
				var event hub.Event
				if err := json.Unmarshal(msg, &event); err != nil {
					return true
				}
				c.SSEvent(event.Type, json.RawMessage(msg))
				return true
			case <-ticker.C:
				_, err := io.WriteString(w, ": keep-alive\n\n")
				return err == nil
			}
		})
		log.Debug().Msg("admin event stream closed")
	}
}
