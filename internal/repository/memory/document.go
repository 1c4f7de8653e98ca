package memory

import (
	"context"
	"strings"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/pkg/generic"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DocumentRepository struct {
	base *generic.MemoryBaseRepository[*model.Document]
}

var _ repository.IDocumentRepository = (*DocumentRepository)(nil)

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{base: generic.NewMemoryBaseRepository[*model.Document]()}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if err := r.base.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Document, error) {
	return r.base.GetByID(ctx, id)
}

func (r *DocumentRepository) Update(ctx context.Context, doc *model.Document) error {
	doc.UpdatedAt = time.Now()
	return r.base.Update(ctx, doc)
}

func (r *DocumentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.base.Delete(ctx, id)
}

func (r *DocumentRepository) ListAccessible(ctx context.Context, ownerID primitive.ObjectID, permitted []primitive.ObjectID) ([]*model.Document, error) {
	return r.accessible(ctx, ownerID, permitted, nil, 0)
}

func (r *DocumentRepository) Search(ctx context.Context, ownerID primitive.ObjectID, permitted []primitive.ObjectID, terms []string, limit int) ([]*model.Document, error) {
	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}
	match := func(d *model.Document) bool {
		haystack := strings.ToLower(d.Title + "\n" + d.Summary + "\n" + d.Content)
		for _, t := range lowered {
			if !strings.Contains(haystack, t) {
				return false
			}
		}
		return true
	}
	return r.accessible(ctx, ownerID, permitted, match, limit)
}

func (r *DocumentRepository) accessible(ctx context.Context, ownerID primitive.ObjectID, permitted []primitive.ObjectID, extra func(*model.Document) bool, limit int) ([]*model.Document, error) {
	set := idSet(permitted)
	docs, err := r.base.Find(ctx, func(d *model.Document) bool {
		if d.UploadedBy != ownerID && !set[d.ID] {
			return false
		}
		return extra == nil || extra(d)
	})
	if err != nil {
		return nil, err
	}
	newestFirst(docs, func(d *model.Document) time.Time { return d.CreatedAt })
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (r *DocumentRepository) All(ctx context.Context) ([]*model.Document, error) {
	return r.base.Find(ctx, nil)
}
