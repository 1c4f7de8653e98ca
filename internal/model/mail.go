package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GmailToken is the stored OAuth credential for one user
type GmailToken struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	AccessToken  string             `bson:"access_token" json:"-"`
	RefreshToken string             `bson:"refresh_token" json:"-"`
	TokenType    string             `bson:"token_type" json:"token_type"`
	Scope        string             `bson:"scope,omitempty" json:"scope,omitempty"`
	Expiry       time.Time          `bson:"expiry" json:"expiry"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (t *GmailToken) GetID() primitive.ObjectID   { return t.ID }
func (t *GmailToken) SetID(id primitive.ObjectID) { t.ID = id }

// MailAttachment is an ingested attachment. IdempotencyKey is unique.
type MailAttachment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	IdempotencyKey string             `bson:"idempotency_key" json:"-"`
	Filename       string             `bson:"filename" json:"filename"`
	StorageKey     string             `bson:"storage_key" json:"-"`
	ContentType    string             `bson:"content_type" json:"content_type"`
	Size           int64              `bson:"size" json:"size"`
	From           string             `bson:"from" json:"from"`
	Subject        string             `bson:"subject" json:"subject"`
	MessageID      string             `bson:"message_id" json:"messageId"`
	AttachmentID   string             `bson:"attachment_id" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

func (a *MailAttachment) GetID() primitive.ObjectID   { return a.ID }
func (a *MailAttachment) SetID(id primitive.ObjectID) { a.ID = id }

type FetchMailRequest struct {
	PageToken string `json:"page_token"`
}

// FetchMailResult summarizes one ingestion run
type FetchMailResult struct {
	Saved         []*MailAttachment `json:"saved"`
	Skipped       int               `json:"skipped"`
	Messages      int               `json:"messages"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
}
