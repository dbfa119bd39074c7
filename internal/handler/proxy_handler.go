package handler

import (
	"errors"
	"net/http"
	"strconv"

	"gamecatalog/backend/internal/logging"
	"gamecatalog/backend/internal/metrics"
	"gamecatalog/backend/internal/proxy"

	"github.com/gin-gonic/gin"
)

// ProxyImage godoc
// @Summary      Proxy a remote image
// @Description  Relays an image from an allow-listed host. Errors are plain text.
// @Tags         images
// @Produce      image/jpeg,image/png,image/webp,text/plain
// @Param        url query string true "URI-encoded remote image URL"
// @Success      200
// @Failure      400 {string} string "Missing or invalid url"
// @Failure      403 {string} string "Host not allowed"
// @Failure      429 {object} ErrorResponse
// @Router       /image-proxy [get]
func ProxyImage(gw *proxy.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("url")
		if raw == "" {
			metrics.ImageProxyRequests.WithLabelValues("invalid_url").Inc()
			c.String(http.StatusBadRequest, "Missing url parameter")
			return
		}

		img, err := gw.Fetch(c.Request.Context(), raw)
		if err != nil {
			var upErr *proxy.UpstreamError
			switch {
			case errors.Is(err, proxy.ErrInvalidURL):
				metrics.ImageProxyRequests.WithLabelValues("invalid_url").Inc()
				c.String(http.StatusBadRequest, "Invalid url")
			case errors.Is(err, proxy.ErrHostNotAllowed):
				metrics.ImageProxyRequests.WithLabelValues("host_not_allowed").Inc()
				logging.Ctx(c.Request.Context()).Warn().Str("url", raw).Msg("image proxy rejected host")
				c.String(http.StatusForbidden, "Host not allowed")
			case errors.As(err, &upErr):
				metrics.ImageProxyRequests.WithLabelValues("upstream_error").Inc()
				logging.Ctx(c.Request.Context()).Warn().Err(err).Str("url", raw).Msg("image proxy upstream failure")
				c.String(upErr.StatusCode, "Failed to fetch image: upstream returned "+strconv.Itoa(upErr.StatusCode))
			default:
				metrics.ImageProxyRequests.WithLabelValues("upstream_error").Inc()
				c.String(http.StatusBadGateway, "Failed to fetch image")
			}
			return
		}

		metrics.ImageProxyRequests.WithLabelValues("ok").Inc()
		metrics.ImageProxyBytes.Add(float64(len(img.Body)))
		c.Header("Cache-Control", proxy.CacheControl)
		c.Header("X-Content-Type-Options", "nosniff")
		c.Data(http.StatusOK, img.ContentType, img.Body)
	}
}
