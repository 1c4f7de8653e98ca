package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/pkg/generic"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	// mu serializes the email uniqueness check with the insert
	mu   sync.Mutex
	base *generic.MemoryBaseRepository[*model.User]
}

var _ repository.IUserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{base: generic.NewMemoryBaseRepository[*model.User]()}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	n, err := r.base.Count(ctx, func(u *model.User) bool { return u.Email == user.Email })
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, repository.ErrDuplicate
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := r.base.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.base.GetByID(ctx, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.base.FindOne(ctx, func(u *model.User) bool { return u.Email == email })
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	set := idSet(ids)
	return r.base.Find(ctx, func(u *model.User) bool { return set[u.ID] })
}

func (r *UserRepository) ListIDsExcept(ctx context.Context, exclude primitive.ObjectID) ([]primitive.ObjectID, error) {
	users, err := r.base.Find(ctx, func(u *model.User) bool { return u.ID != exclude })
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()
	return r.base.Update(ctx, user)
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]bool {
	set := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
