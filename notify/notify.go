// Package notify pushes a web notification to an author's followers
// when the author publishes a post.
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	applog "microblog/log"
	"microblog/models"
	"microblog/storage"
)

type Notifier struct {
	store      storage.Store
	publicKey  string
	privateKey string
	subscriber string
}

func New(store storage.Store, publicKey, privateKey, subscriber string) *Notifier {
	return &Notifier{
		store:      store,
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
	}
}

// PublicKey is the VAPID public key browsers subscribe with.
func (n *Notifier) PublicKey() string {
	if n == nil {
		return ""
	}
	return n.publicKey
}

// PostPublished fans the notification out in the background; the
// publishing request never waits on push endpoints.
func (n *Notifier) PostPublished(post *models.Post, author *models.User) {
	if n == nil || n.privateKey == "" {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				applog.Error.Printf("push fanout panic: %v", r)
			}
		}()
		n.fanout(post, author)
	}()
}

func (n *Notifier) fanout(post *models.Post, author *models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	followerIDs, err := n.store.FollowerIDs(ctx, author.ID)
	if err != nil {
		applog.Error.Printf("push fanout: list followers: %v", err)
		return
	}

	body := post.Text
	if len(body) > 100 {
		body = body[:100] + "..."
	}
	payload, err := json.Marshal(map[string]interface{}{
		"title": author.Username + " published a new post",
		"body":  body,
		"data": map[string]interface{}{
			"url": "/" + author.Username + "/" + post.ID.Hex() + "/",
		},
	})
	if err != nil {
		applog.Error.Printf("push fanout: marshal payload: %v", err)
		return
	}

	for _, followerID := range followerIDs {
		sub, err := n.store.PushSubscriptionByUser(ctx, followerID)
		if err == storage.ErrNotFound {
			continue
		}
		if err != nil {
			applog.Error.Printf("push fanout: load subscription: %v", err)
			continue
		}

		resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
			Subscriber:      n.subscriber,
			VAPIDPublicKey:  n.publicKey,
			VAPIDPrivateKey: n.privateKey,
			TTL:             30,
		})
		if err != nil {
			applog.Warn.Printf("push fanout: send to %s: %v", followerID.Hex(), err)
			continue
		}
		// 410 means the endpoint is gone; drop the subscription
		if resp.StatusCode == http.StatusGone {
			if err := n.store.DeletePushSubscription(ctx, followerID); err != nil {
				applog.Error.Printf("push fanout: delete stale subscription: %v", err)
			}
		}
		resp.Body.Close()
	}
}
