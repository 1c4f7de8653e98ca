package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique and lookup indexes the stores rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}
	plain := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys}
	}

	specs := map[string][]mongo.IndexModel{
		UsersCollection:       {unique(bson.D{{Key: "email", Value: 1}})},
		DepartmentsCollection: {unique(bson.D{{Key: "name", Value: 1}})},
		DocumentsCollection: {
			plain(bson.D{{Key: "uploaded_by", Value: 1}, {Key: "createdAt", Value: -1}}),
		},
		PermissionsCollection: {
			unique(bson.D{{Key: "document_id", Value: 1}, {Key: "user_id", Value: 1}}),
			plain(bson.D{{Key: "user_id", Value: 1}}),
		},
		VersionsCollection: {
			unique(bson.D{{Key: "document_id", Value: 1}, {Key: "version_number", Value: 1}}),
		},
		CommentsCollection:   {plain(bson.D{{Key: "document_id", Value: 1}, {Key: "createdAt", Value: -1}})},
		NotesCollection:      {plain(bson.D{{Key: "document_id", Value: 1}, {Key: "user_id", Value: 1}})},
		HighlightsCollection: {plain(bson.D{{Key: "document_id", Value: 1}, {Key: "user_id", Value: 1}})},
		BookmarksCollection: {
			unique(bson.D{{Key: "user_id", Value: 1}, {Key: "document_id", Value: 1}}),
		},
		NotificationsCollection: {plain(bson.D{{Key: "user_id", Value: 1}, {Key: "createdAt", Value: -1}})},
		GmailTokensCollection:   {unique(bson.D{{Key: "userId", Value: 1}})},
		MailAttachmentsCollection: {
			unique(bson.D{{Key: "idempotency_key", Value: 1}}),
			plain(bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}),
		},
	}

	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
