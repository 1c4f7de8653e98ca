package memory

import (
	"context"
	"sync"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/pkg/generic"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PermissionRepository struct {
	// mu makes Upsert atomic like FindOneAndUpdate
	mu   sync.Mutex
	base *generic.MemoryBaseRepository[*model.DocumentPermission]
}

var _ repository.IPermissionRepository = (*PermissionRepository)(nil)

func NewPermissionRepository() *PermissionRepository {
	return &PermissionRepository{base: generic.NewMemoryBaseRepository[*model.DocumentPermission]()}
}

func pair(documentID, userID primitive.ObjectID) func(*model.DocumentPermission) bool {
	return func(p *model.DocumentPermission) bool {
		return p.DocumentID == documentID && p.UserID == userID
	}
}

func (r *PermissionRepository) Upsert(ctx context.Context, documentID, userID primitive.ObjectID, level model.AccessLevel, grantedBy primitive.ObjectID) (*model.DocumentPermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	n, err := r.base.Mutate(ctx, pair(documentID, userID), func(p *model.DocumentPermission) {
		p.PermissionLevel = level
		p.GrantedBy = grantedBy
		p.UpdatedAt = now
	})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		perm := &model.DocumentPermission{
			DocumentID:      documentID,
			UserID:          userID,
			PermissionLevel: level,
			GrantedBy:       grantedBy,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := r.base.Create(ctx, perm); err != nil {
			return nil, err
		}
	}
	return r.base.FindOne(ctx, pair(documentID, userID))
}

func (r *PermissionRepository) Find(ctx context.Context, documentID, userID primitive.ObjectID) (*model.DocumentPermission, error) {
	return r.base.FindOne(ctx, pair(documentID, userID))
}

func (r *PermissionRepository) ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*model.DocumentPermission, error) {
	return r.base.Find(ctx, func(p *model.DocumentPermission) bool { return p.DocumentID == documentID })
}

func (r *PermissionRepository) DocumentIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	perms, err := r.base.Find(ctx, func(p *model.DocumentPermission) bool { return p.UserID == userID })
	if err != nil {
		return nil, err
	}
	seen := make(map[primitive.ObjectID]bool, len(perms))
	ids := make([]primitive.ObjectID, 0, len(perms))
	for _, p := range perms {
		if !seen[p.DocumentID] {
			seen[p.DocumentID] = true
			ids = append(ids, p.DocumentID)
		}
	}
	return ids, nil
}

func (r *PermissionRepository) Delete(ctx context.Context, documentID, userID primitive.ObjectID) error {
	n, err := r.base.DeleteMany(ctx, pair(documentID, userID))
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PermissionRepository) DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.base.DeleteMany(ctx, func(p *model.DocumentPermission) bool { return p.DocumentID == documentID })
}
