package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationGeneral     = "general"
	NotificationNewDocument = "document_uploaded"
	NotificationShared      = "document_shared"
	NotificationMail        = "mail_fetched"
)

type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Title     string              `bson:"title" json:"title"`
	Message   string              `bson:"message" json:"message"`
	Type      string              `bson:"type" json:"type"`
	RelatedID *primitive.ObjectID `bson:"related_id,omitempty" json:"related_id,omitempty"`
	IsRead    bool                `bson:"is_read" json:"is_read"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (n *Notification) GetID() primitive.ObjectID   { return n.ID }
func (n *Notification) SetID(id primitive.ObjectID) { n.ID = id }

type CreateNotificationRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	RelatedID string `json:"related_id"`
}
