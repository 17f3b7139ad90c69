package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-security-alert-watcher/internal/webhook"
)

type Handler struct {
	ingress     *webhook.Handler
	metrics     http.Handler
	webhookPath string
}

func NewHandler(ingress *webhook.Handler, metrics http.Handler, webhookPath string) *Handler {
	return &Handler{
		ingress:     ingress,
		metrics:     metrics,
		webhookPath: webhookPath,
	}
}

// RegisterRoutes mounts the webhook receiver behind the given middleware
// (typically the rate limiter) plus health and metrics endpoints.
func (h *Handler) RegisterRoutes(r *gin.Engine, webhookMiddleware ...gin.HandlerFunc) {
	r.POST(h.webhookPath, append(webhookMiddleware, h.receiveWebhook)...)
	r.GET("/health", h.health)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics))
	}
}

func (h *Handler) receiveWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to read request body"})
		return
	}

	headers := make(map[string]string, len(c.Request.Header))
	for name, values := range c.Request.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	resp := h.ingress.Process(c.Request.Context(), webhook.Request{
		Body:    string(body),
		Headers: headers,
	})
	c.Data(resp.Status, "application/json", []byte(resp.Body))
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
