package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"sparesmart-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint        string  `json:"endpoint" binding:"required"`
	P256DH          string  `json:"p256dh" binding:"required"`
	Auth            string  `json:"auth" binding:"required"`
	SubscribedLines []int64 `json:"subscribed_lines"`
}

// PutSubscription creates or replaces a push subscription and the lines it follows.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.PutSubscription(c.Request.Context(), &sub, req.SubscribedLines); err != nil {
		respondStoreError(c, err, "subscription")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"subscribed_lines": lineIDs(sub.Lines)})
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes a push subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		respondStoreError(c, err, "subscription")
		return
	}
	c.Status(http.StatusNoContent)
}

// rawQueryParam returns a query value without decoding '+' as a space, which
// would corrupt push endpoints. Percent escapes are still decoded.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if !strings.HasPrefix(kv, key+"=") {
			continue
		}
		v := kv[len(key)+1:]
		if unescaped, err := url.PathUnescape(v); err == nil {
			v = unescaped
		}
		return v, true
	}
	return "", false
}

// GetSubscription returns the lines a push endpoint follows.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	sub, err := h.store.GetSubscription(c.Request.Context(), endpoint)
	if err != nil {
		respondStoreError(c, err, "subscription")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribed_lines": lineIDs(sub.Lines)})
}

func lineIDs(lines []*model.Line) []int64 {
	ids := make([]int64, len(lines))
	for i, line := range lines {
		ids[i] = line.ID
	}
	return ids
}

// GetVAPIDPublicKey returns the application server key browsers need to subscribe.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
