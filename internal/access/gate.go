// Package access is the single authorization predicate for document-scoped
// operations: a user may act on a document iff they own it or hold an
// explicit permission record for it.
package access

import (
	"context"
	"errors"
	"fmt"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gate evaluates access against the document and permission stores
type Gate struct {
	documents   repository.IDocumentRepository
	permissions repository.IPermissionRepository
}

func NewGate(documents repository.IDocumentRepository, permissions repository.IPermissionRepository) *Gate {
	return &Gate{documents: documents, permissions: permissions}
}

// Load fetches a document, mapping a miss to apperr.ErrNotFound
func (g *Gate) Load(ctx context.Context, documentID primitive.ObjectID) (*model.Document, error) {
	doc, err := g.documents.FindByID(ctx, documentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", documentID.Hex(), err)
	}
	return doc, nil
}

// Level returns the caller's effective access on a loaded document. Owners are
// always admin. ok is false when the caller has no access at all.
func (g *Gate) Level(ctx context.Context, doc *model.Document, userID primitive.ObjectID) (model.AccessLevel, bool, error) {
	if doc.OwnedBy(userID) {
		return model.AccessAdmin, true, nil
	}
	perm, err := g.permissions.Find(ctx, doc.ID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup permission: %w", err)
	}
	return perm.PermissionLevel, true, nil
}

// Check returns nil when userID may access doc and apperr.ErrForbidden otherwise
func (g *Gate) Check(ctx context.Context, doc *model.Document, userID primitive.ObjectID) error {
	_, ok, err := g.Level(ctx, doc, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("access denied")
	}
	return nil
}

// Authorize loads the document and applies Check
func (g *Gate) Authorize(ctx context.Context, documentID, userID primitive.ObjectID) (*model.Document, error) {
	doc, err := g.Load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := g.Check(ctx, doc, userID); err != nil {
		return nil, err
	}
	return doc, nil
}

// AuthorizeOwner loads the document and requires userID to be its owner.
// An explicit grant of any level is not enough.
func (g *Gate) AuthorizeOwner(ctx context.Context, documentID, userID primitive.ObjectID) (*model.Document, error) {
	doc, err := g.Load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.OwnedBy(userID) {
		return nil, apperr.Forbidden("only the document owner can do this")
	}
	return doc, nil
}

// AccessibleIDs returns the ids of documents userID holds an explicit permission on.
// Owned documents are matched by owner instead, so the result is not the full accessible set.
func (g *Gate) AccessibleIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	ids, err := g.permissions.DocumentIDsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list permitted documents: %w", err)
	}
	return ids, nil
}
