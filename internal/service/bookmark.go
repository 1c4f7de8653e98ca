package service

import (
	"context"
	"errors"
	"fmt"

	"docvault/internal/access"
	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookmarkService struct {
	bookmarks repository.IBookmarkRepository
	documents repository.IDocumentRepository
	gate      *access.Gate
}

func NewBookmarkService(repos *repository.Repositories, gate *access.Gate) *BookmarkService {
	return &BookmarkService{bookmarks: repos.Bookmarks, documents: repos.Documents, gate: gate}
}

// Toggle removes the caller's bookmark on a document if there is one, and
// creates it otherwise
func (s *BookmarkService) Toggle(ctx context.Context, userID primitive.ObjectID, documentID string) (*model.BookmarkToggle, error) {
	docID, err := parseID(documentID, "document id")
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.Authorize(ctx, docID, userID); err != nil {
		return nil, err
	}

	existing, err := s.bookmarks.Find(ctx, userID, docID)
	switch {
	case err == nil:
		if err := s.bookmarks.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to remove bookmark: %w", err)
		}
		return &model.BookmarkToggle{Removed: true}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to find bookmark: %w", err)
	}

	b, err := s.bookmarks.Create(ctx, &model.Bookmark{UserID: userID, DocumentID: docID})
	if err != nil {
		return nil, storeErr(err, "create", "bookmark")
	}
	return &model.BookmarkToggle{Bookmark: b}, nil
}

// IsBookmarked reports whether the caller bookmarked a document
func (s *BookmarkService) IsBookmarked(ctx context.Context, userID primitive.ObjectID, documentID string) (bool, error) {
	docID, err := parseID(documentID, "document id")
	if err != nil {
		return false, err
	}
	_, err = s.bookmarks.Find(ctx, userID, docID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find bookmark: %w", err)
	}
	return true, nil
}

// List returns the caller's bookmarks newest first with documents populated.
// Bookmarks on documents the caller can no longer access are left out.
func (s *BookmarkService) List(ctx context.Context, userID primitive.ObjectID) ([]*model.Bookmark, error) {
	bookmarks, err := s.bookmarks.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	out := make([]*model.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		doc, err := s.documents.FindByID(ctx, b.DocumentID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load bookmarked document: %w", err)
		}
		if err := s.gate.Check(ctx, doc, userID); errors.Is(err, apperr.ErrForbidden) {
			continue
		} else if err != nil {
			return nil, err
		}
		b.Document = doc
		out = append(out, b)
	}
	return out, nil
}
