package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const notifyTimeout = 10 * time.Second

// LikeNotifier tells photo owners about new likes
type LikeNotifier interface {
	PhotoLiked(ownerEmail, photoID string, likes int)
}

// OnlineSender is the part of WSHub the notifier needs
type OnlineSender interface {
	IsOnline(email string) bool
	SendToUser(email string, message WSMessage) error
}

// Notifier delivers like notifications over the realtime channel, falling back to push
type Notifier struct {
	hub   OnlineSender
	push  PushSender
	users UserStore
}

// NewNotifier creates a notifier, push may be nil
func NewNotifier(hub OnlineSender, push PushSender, users UserStore) *Notifier {
	return &Notifier{hub: hub, push: push, users: users}
}

// PhotoLiked notifies the owner in the background
func (n *Notifier) PhotoLiked(ownerEmail, photoID string, likes int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		n.notifyLiked(ctx, ownerEmail, photoID, likes)
	}()
}

func (n *Notifier) notifyLiked(ctx context.Context, ownerEmail, photoID string, likes int) {
	if n.hub.IsOnline(ownerEmail) {
		msg := WSMessage{
			Type:      WSTypePhotoLiked,
			Timestamp: time.Now().UnixMilli(),
			PhotoID:   photoID,
			Likes:     &likes,
		}
		err := n.hub.SendToUser(ownerEmail, msg)
		if err == nil {
			return
		}
		log.Warn().Err(err).Str("user_email", ownerEmail).Msg("Failed to send like over websocket")
	}

	if n.push == nil {
		return
	}
	owner, err := n.users.GetByEmail(ctx, ownerEmail)
	if err != nil {
		log.Error().Err(err).Str("user_email", ownerEmail).Msg("Failed to get owner for push")
		return
	}
	if owner.PushToken == nil || *owner.PushToken == "" {
		return
	}

	data := map[string]any{"photo_id": photoID, "photo_likes": likes}
	if err := n.push.Send(ctx, *owner.PushToken, "Someone liked your photo", data); err != nil {
		log.Error().Err(err).Str("user_email", ownerEmail).Msg("Failed to send like push")
	}
}
