package handlers

import (
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	applog "microblog/log"
	"microblog/models"
)

// VapidPublicKey hands out the key browsers need to subscribe.
func (h *Handler) VapidPublicKey(c *gin.Context) {
	key := h.Notify.PublicKey()
	if key == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Push notifications not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": key})
}

// SubscribePush stores the caller's web-push subscription, replacing
// any previous one.
func (h *Handler) SubscribePush(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	user, ok := h.currentUser(ctx, c)
	if !ok {
		return
	}

	sub := &models.PushSubscription{
		ID:     primitive.NewObjectID(),
		UserID: user.ID,
		Sub: webpush.Subscription{
			Endpoint: req.Endpoint,
			Keys: webpush.Keys{
				P256dh: req.Keys.P256dh,
				Auth:   req.Keys.Auth,
			},
		},
	}
	if err := h.Store.SavePushSubscription(ctx, sub); err != nil {
		applog.Error.Printf("subscribe push: %v", err)
		serverError(c, "Failed to save subscription")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push subscription saved"})
}
