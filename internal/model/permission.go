package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessLevel of an explicit document grant
type AccessLevel string

const (
	AccessView  AccessLevel = "view"
	AccessEdit  AccessLevel = "edit"
	AccessAdmin AccessLevel = "admin"
)

func (l AccessLevel) Valid() bool {
	switch l {
	case AccessView, AccessEdit, AccessAdmin:
		return true
	}
	return false
}

// DocumentPermission is unique per (DocumentID, UserID)
type DocumentPermission struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	DocumentID      primitive.ObjectID `bson:"document_id" json:"document_id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	PermissionLevel AccessLevel        `bson:"permission_level" json:"permission_level"`
	GrantedBy       primitive.ObjectID `bson:"granted_by" json:"granted_by"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`

	User *UserSummary `bson:"-" json:"user,omitempty"`
}

func (p *DocumentPermission) GetID() primitive.ObjectID   { return p.ID }
func (p *DocumentPermission) SetID(id primitive.ObjectID) { p.ID = id }

type GrantPermissionRequest struct {
	DocumentID      string `json:"document_id" binding:"required"`
	UserID          string `json:"user_id" binding:"required"`
	PermissionLevel string `json:"permission_level"`
}
