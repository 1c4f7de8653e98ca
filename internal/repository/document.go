package repository

import (
	"context"
	"regexp"
	"time"

	"docvault/internal/config"
	"docvault/internal/model"
	"docvault/pkg/generic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IDocumentRepository defines document persistence
type IDocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Document, error)
	Update(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ListAccessible returns documents owned by ownerID or whose id is in permitted, newest first
	ListAccessible(ctx context.Context, ownerID primitive.ObjectID, permitted []primitive.ObjectID) ([]*model.Document, error)
	// Search matches every term case-insensitively against title, summary or content,
	// restricted to the same accessible set as ListAccessible
	Search(ctx context.Context, ownerID primitive.ObjectID, permitted []primitive.ObjectID, terms []string, limit int) ([]*model.Document, error)
	// All returns every document, oldest first
	All(ctx context.Context) ([]*model.Document, error)
}

// DocumentRepository implements document persistence
type DocumentRepository struct {
	cfg  *config.Config
	base *generic.MongoBaseRepository[*model.Document]
}

func NewDocumentRepository(cfg *config.Config, db *mongo.Database) IDocumentRepository {
	return &DocumentRepository{cfg: cfg, base: generic.NewBaseRepository[*model.Document](db.Collection(DocumentsCollection))}
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

func accessFilter(ownerID primitive.ObjectID, permitted []primitive.ObjectID) bson.M {
	if permitted == nil {
		permitted = []primitive.ObjectID{}
	}
	return bson.M{"$or": bson.A{
		bson.M{"_id": bson.M{"$in": permitted}},
		bson.M{"uploaded_by": ownerID},
	}}
}

func (r *DocumentRepository) ListAccessible(ctx context.Context, ownerID primitive.ObjectID, permitted []primitive.ObjectID) ([]*model.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.base.Find(ctx, accessFilter(ownerID, permitted), opts)
}

func (r *DocumentRepository) Search(ctx context.Context, ownerID primitive.ObjectID, permitted []primitive.ObjectID, terms []string, limit int) ([]*model.Document, error) {
	clauses := bson.A{accessFilter(ownerID, permitted)}
	for _, term := range terms {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"summary": pattern},
			bson.M{"content": pattern},
		}})
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.base.Find(ctx, bson.M{"$and": clauses}, opts)
}

func (r *DocumentRepository) All(ctx context.Context) ([]*model.Document, error) {
	return r.base.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}
