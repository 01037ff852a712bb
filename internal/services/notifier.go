package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fitfeed-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// Notification types
const (
	NotificationFollowed  = "followed"
	NotificationLiked     = "liked"
	NotificationCommented = "commented"
)

// Notification is pushed to a user when someone interacts with them
type Notification struct {
	Type      string    `json:"type"`
	ActorID   int64     `json:"actor_id"`
	Actor     string    `json:"actor"`
	PostID    int64     `json:"post_id,omitempty"`
	CommentID int64     `json:"comment_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertText renders the notification for a push banner
func (n Notification) AlertText() string {
	switch n.Type {
	case NotificationFollowed:
		return n.Actor + " started following you"
	case NotificationLiked:
		return n.Actor + " liked your post"
	case NotificationCommented:
		return n.Actor + " commented on your post"
	default:
		return n.Actor + " interacted with you"
	}
}

type apnsClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// PushNotifier sends APNs alerts with token-based authentication
type PushNotifier struct {
	client apnsClient
	topic  string
}

// NewPushNotifier loads the .p8 signing key and builds an APNs client
func NewPushNotifier(keyFile, keyID, teamID, topic string, production bool) (*PushNotifier, error) {
	authKey, err := token.AuthKeyFromFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	})
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &PushNotifier{client: client, topic: topic}, nil
}

// Send pushes an alert for n to deviceToken
func (p *PushNotifier) Send(ctx context.Context, deviceToken string, n Notification) error {
	body := payload.NewPayload().
		Alert(n.AlertText()).
		Sound("default").
		Custom("type", n.Type)
	if n.PostID != 0 {
		body = body.Custom("post_id", n.PostID)
	}

	res, err := p.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       p.topic,
		Payload:     body,
	})
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}

// Notifier routes notifications to a live websocket, or to APNs when the
// recipient has no socket and registered a device token.
type Notifier struct {
	hub      *WSHub
	push     *PushNotifier
	userRepo *repository.UserRepository
}

// NewNotifier creates a notifier. push may be nil.
func NewNotifier(hub *WSHub, push *PushNotifier, userRepo *repository.UserRepository) *Notifier {
	return &Notifier{hub: hub, push: push, userRepo: userRepo}
}

// Notify delivers n to recipientID. Failures are logged, never returned.
// A nil Notifier is a no-op.
func (n *Notifier) Notify(ctx context.Context, recipientID int64, note Notification) {
	if n == nil || recipientID == note.ActorID {
		return
	}

	if note.Actor == "" {
		actor, err := n.userRepo.GetByID(ctx, note.ActorID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", note.ActorID).Msg("Failed to resolve notification actor")
			return
		}
		note.Actor = actor.Username
	}
	if note.Timestamp.IsZero() {
		note.Timestamp = time.Now().UTC()
	}

	if n.push != nil && !n.hub.IsOnline(recipientID) {
		if n.sendPush(ctx, recipientID, note) {
			return
		}
	}

	data, err := json.Marshal(note)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal notification")
		return
	}
	if err := n.hub.Publish(ctx, recipientID, data); err != nil {
		log.Error().Err(err).Int64("user_id", recipientID).Msg("Failed to publish notification")
	}
}

// sendPush reports whether an alert was delivered through APNs
func (n *Notifier) sendPush(ctx context.Context, recipientID int64, note Notification) bool {
	recipient, err := n.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", recipientID).Msg("Failed to load notification recipient")
		return false
	}
	if recipient.PushToken == nil {
		return false
	}

	if err := n.push.Send(ctx, *recipient.PushToken, note); err != nil {
		log.Error().Err(err).Int64("user_id", recipientID).Msg("Failed to send push notification")
		return false
	}
	log.Info().Int64("user_id", recipientID).Str("type", note.Type).Msg("Push notification sent")
	return true
}
