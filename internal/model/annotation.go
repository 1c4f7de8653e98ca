package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	DocumentID primitive.ObjectID `bson:"document_id" json:"document_id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Content    string             `bson:"content" json:"content"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`

	User *UserSummary `bson:"-" json:"user,omitempty"`
}

func (c *Comment) GetID() primitive.ObjectID   { return c.ID }
func (c *Comment) SetID(id primitive.ObjectID) { c.ID = id }

// Note is private to its author
type Note struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	DocumentID primitive.ObjectID     `bson:"document_id" json:"document_id"`
	UserID     primitive.ObjectID     `bson:"user_id" json:"user_id"`
	Content    string                 `bson:"content" json:"content"`
	Position   map[string]interface{} `bson:"position" json:"position"`
	CreatedAt  time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time              `bson:"updatedAt" json:"updatedAt"`
}

func (n *Note) GetID() primitive.ObjectID   { return n.ID }
func (n *Note) SetID(id primitive.ObjectID) { n.ID = id }

// DefaultHighlightColor is used when a highlight is created without a color
const DefaultHighlightColor = "#FCD34D"

// Highlight is private to its author
type Highlight struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	DocumentID primitive.ObjectID     `bson:"document_id" json:"document_id"`
	UserID     primitive.ObjectID     `bson:"user_id" json:"user_id"`
	Text       string                 `bson:"text" json:"text"`
	Position   map[string]interface{} `bson:"position" json:"position"`
	Color      string                 `bson:"color" json:"color"`
	CreatedAt  time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time              `bson:"updatedAt" json:"updatedAt"`
}

func (h *Highlight) GetID() primitive.ObjectID   { return h.ID }
func (h *Highlight) SetID(id primitive.ObjectID) { h.ID = id }

// Bookmark is unique per (UserID, DocumentID)
type Bookmark struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	DocumentID primitive.ObjectID `bson:"document_id" json:"document_id"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`

	Document *Document `bson:"-" json:"document,omitempty"`
}

func (b *Bookmark) GetID() primitive.ObjectID   { return b.ID }
func (b *Bookmark) SetID(id primitive.ObjectID) { b.ID = id }

// BookmarkToggle is the result of a toggle: either a new bookmark or a removal
type BookmarkToggle struct {
	Removed  bool      `json:"removed"`
	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

type CreateCommentRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

type CreateNoteRequest struct {
	DocumentID string                 `json:"document_id" binding:"required"`
	Content    string                 `json:"content" binding:"required"`
	Position   map[string]interface{} `json:"position"`
}

type CreateHighlightRequest struct {
	DocumentID string                 `json:"document_id" binding:"required"`
	Text       string                 `json:"text" binding:"required"`
	Position   map[string]interface{} `json:"position"`
	Color      string                 `json:"color"`
}

type ToggleBookmarkRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
}
