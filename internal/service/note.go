package service

import (
	"context"
	"fmt"
	"strings"

	"docvault/internal/access"
	"docvault/internal/apperr"
	"docvault/internal/config"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/pkg/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NoteService manages private notes and highlights. Both are scoped to the
// document and the requesting user.
type NoteService struct {
	notes      repository.INoteRepository
	highlights repository.IHighlightRepository
	gate       *access.Gate
}

func NewNoteService(repos *repository.Repositories, gate *access.Gate) *NoteService {
	return &NoteService{notes: repos.Notes, highlights: repos.Highlights, gate: gate}
}

func (s *NoteService) CreateNote(ctx context.Context, userID primitive.ObjectID, req model.CreateNoteRequest) (*model.Note, error) {
	docID, err := s.authorize(ctx, userID, req.DocumentID)
	if err != nil {
		return nil, err
	}
	content, err := required(req.Content, "content")
	if err != nil {
		return nil, err
	}
	if err := checkLength(content, "content", config.MaxCommentLength); err != nil {
		return nil, err
	}

	n, err := s.notes.Create(ctx, &model.Note{DocumentID: docID, UserID: userID, Content: content, Position: req.Position})
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return n, nil
}

// ListNotes returns the caller's notes on a document, newest first
func (s *NoteService) ListNotes(ctx context.Context, userID primitive.ObjectID, documentID string) ([]*model.Note, error) {
	docID, err := s.authorize(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByDocumentAndUser(ctx, docID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (s *NoteService) CreateHighlight(ctx context.Context, userID primitive.ObjectID, req model.CreateHighlightRequest) (*model.Highlight, error) {
	docID, err := s.authorize(ctx, userID, req.DocumentID)
	if err != nil {
		return nil, err
	}
	text, err := required(req.Text, "text")
	if err != nil {
		return nil, err
	}
	if err := checkLength(text, "text", config.MaxCommentLength); err != nil {
		return nil, err
	}
	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = model.DefaultHighlightColor
	}
	if !util.IsHexColor(color) {
		return nil, apperr.Validation("color must be a hex color like #FCD34D")
	}

	h, err := s.highlights.Create(ctx, &model.Highlight{
		DocumentID: docID,
		UserID:     userID,
		Text:       text,
		Position:   req.Position,
		Color:      color,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create highlight: %w", err)
	}
	return h, nil
}

// ListHighlights returns the caller's highlights on a document in creation order
func (s *NoteService) ListHighlights(ctx context.Context, userID primitive.ObjectID, documentID string) ([]*model.Highlight, error) {
	docID, err := s.authorize(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	hs, err := s.highlights.ListByDocumentAndUser(ctx, docID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}
	return hs, nil
}

func (s *NoteService) authorize(ctx context.Context, userID primitive.ObjectID, documentID string) (primitive.ObjectID, error) {
	docID, err := parseID(documentID, "document id")
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := s.gate.Authorize(ctx, docID, userID); err != nil {
		return primitive.NilObjectID, err
	}
	return docID, nil
}
