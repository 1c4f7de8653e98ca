package repository

import (
	"context"
	"errors"
	"time"

	"docvault/internal/config"
	"docvault/internal/model"
	"docvault/pkg/generic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IGmailTokenRepository stores one OAuth credential per user
type IGmailTokenRepository interface {
	Upsert(ctx context.Context, token *model.GmailToken) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*model.GmailToken, error)
}

type GmailTokenRepository struct {
	cfg  *config.Config
	base *generic.MongoBaseRepository[*model.GmailToken]
}

func NewGmailTokenRepository(cfg *config.Config, db *mongo.Database) IGmailTokenRepository {
	return &GmailTokenRepository{cfg: cfg, base: generic.NewBaseRepository[*model.GmailToken](db.Collection(GmailTokensCollection))}
}

// Upsert replaces the user's credential. A refresh token is only issued on first
// consent, so an empty one never overwrites the stored value.
func (r *GmailTokenRepository) Upsert(ctx context.Context, token *model.GmailToken) error {
	token.UpdatedAt = time.Now()
	set := bson.M{
		"access_token": token.AccessToken,
		"token_type":   token.TokenType,
		"scope":        token.Scope,
		"expiry":       token.Expiry,
		"updatedAt":    token.UpdatedAt,
	}
	if token.RefreshToken != "" {
		set["refresh_token"] = token.RefreshToken
	}
	_, err := r.base.Collection.UpdateOne(ctx,
		bson.M{"userId": token.UserID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	return generic.Translate(err)
}

func (r *GmailTokenRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*model.GmailToken, error) {
	return r.base.FindOne(ctx, bson.M{"userId": userID})
}

// IMailAttachmentRepository stores ingested attachments keyed by idempotency key
type IMailAttachmentRepository interface {
	Create(ctx context.Context, a *model.MailAttachment) (*model.MailAttachment, error)
	ExistsByKey(ctx context.Context, key string) (bool, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*model.MailAttachment, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.MailAttachment, error)
}

type MailAttachmentRepository struct {
	cfg  *config.Config
	base *generic.MongoBaseRepository[*model.MailAttachment]
}

func NewMailAttachmentRepository(cfg *config.Config, db *mongo.Database) IMailAttachmentRepository {
	return &MailAttachmentRepository{cfg: cfg, base: generic.NewBaseRepository[*model.MailAttachment](db.Collection(MailAttachmentsCollection))}
}

func (r *MailAttachmentRepository) Create(ctx context.Context, a *model.MailAttachment) (*model.MailAttachment, error) {
	a.CreatedAt = time.Now()
	if err := r.base.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *MailAttachmentRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	_, err := r.base.FindOne(ctx, bson.M{"idempotency_key": key}, options.FindOne().SetProjection(bson.M{"_id": 1}))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *MailAttachmentRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*model.MailAttachment, error) {
	return r.base.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(newestFirst))
}

func (r *MailAttachmentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.MailAttachment, error) {
	return r.base.GetByID(ctx, id)
}
