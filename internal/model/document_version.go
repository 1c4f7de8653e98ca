package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentVersion is an immutable content snapshot. VersionNumber starts at 1.
type DocumentVersion struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	DocumentID    primitive.ObjectID `bson:"document_id" json:"document_id"`
	VersionNumber int                `bson:"version_number" json:"version_number"`
	Content       string             `bson:"content" json:"content"`
	ChangedBy     primitive.ObjectID `bson:"changed_by" json:"changed_by"`
	ChangeSummary string             `bson:"change_summary" json:"change_summary"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

func (v *DocumentVersion) GetID() primitive.ObjectID   { return v.ID }
func (v *DocumentVersion) SetID(id primitive.ObjectID) { v.ID = id }

const (
	InitialVersionSummary = "Initial version"
	DefaultChangeSummary  = "Updated content"
)
