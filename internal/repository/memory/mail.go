package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/pkg/generic"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GmailTokenRepository struct {
	mu   sync.Mutex
	base *generic.MemoryBaseRepository[*model.GmailToken]
}

var _ repository.IGmailTokenRepository = (*GmailTokenRepository)(nil)

func NewGmailTokenRepository() *GmailTokenRepository {
	return &GmailTokenRepository{base: generic.NewMemoryBaseRepository[*model.GmailToken]()}
}

func (r *GmailTokenRepository) Upsert(ctx context.Context, token *model.GmailToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token.UpdatedAt = time.Now()
	existing, err := r.FindByUser(ctx, token.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		stored := *token
		stored.ID = primitive.NilObjectID
		return r.base.Create(ctx, &stored)
	}
	if err != nil {
		return err
	}

	existing.AccessToken = token.AccessToken
	existing.TokenType = token.TokenType
	existing.Scope = token.Scope
	existing.Expiry = token.Expiry
	existing.UpdatedAt = token.UpdatedAt
	if token.RefreshToken != "" {
		existing.RefreshToken = token.RefreshToken
	}
	return r.base.Update(ctx, existing)
}

func (r *GmailTokenRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*model.GmailToken, error) {
	return r.base.FindOne(ctx, func(t *model.GmailToken) bool { return t.UserID == userID })
}

type MailAttachmentRepository struct {
	mu   sync.Mutex
	base *generic.MemoryBaseRepository[*model.MailAttachment]
}

var _ repository.IMailAttachmentRepository = (*MailAttachmentRepository)(nil)

func NewMailAttachmentRepository() *MailAttachmentRepository {
	return &MailAttachmentRepository{base: generic.NewMemoryBaseRepository[*model.MailAttachment]()}
}

func (r *MailAttachmentRepository) Create(ctx context.Context, a *model.MailAttachment) (*model.MailAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.ExistsByKey(ctx, a.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrDuplicate
	}
	a.CreatedAt = time.Now()
	if err := r.base.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *MailAttachmentRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	n, err := r.base.Count(ctx, func(a *model.MailAttachment) bool { return a.IdempotencyKey == key })
	return n > 0, err
}

func (r *MailAttachmentRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*model.MailAttachment, error) {
	as, err := r.base.Find(ctx, func(a *model.MailAttachment) bool { return a.UserID == userID })
	if err != nil {
		return nil, err
	}
	newestFirst(as, func(a *model.MailAttachment) time.Time { return a.CreatedAt })
	return as, nil
}

func (r *MailAttachmentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.MailAttachment, error) {
	return r.base.GetByID(ctx, id)
}
