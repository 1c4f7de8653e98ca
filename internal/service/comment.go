package service

import (
	"context"
	"fmt"

	"docvault/internal/access"
	"docvault/internal/config"
	"docvault/internal/model"
	"docvault/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentService manages document comments. Comments are visible to everyone
// with access to the document.
type CommentService struct {
	comments repository.ICommentRepository
	users    repository.IUserRepository
	gate     *access.Gate
}

func NewCommentService(repos *repository.Repositories, gate *access.Gate) *CommentService {
	return &CommentService{comments: repos.Comments, users: repos.Users, gate: gate}
}

func (s *CommentService) Create(ctx context.Context, userID primitive.ObjectID, req model.CreateCommentRequest) (*model.Comment, error) {
	docID, err := parseID(req.DocumentID, "document id")
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
	if _, err := s.gate.Authorize(ctx, docID, userID); err != nil {
		return nil, err
	}

	c, err := s.comments.Create(ctx, &model.Comment{DocumentID: docID, UserID: userID, Content: content})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	authors, err := userSummaries(ctx, s.users, []primitive.ObjectID{userID})
	if err != nil {
		return nil, err
	}
	c.User = authors[userID]
	return c, nil
}

// List returns a document's comments newest first with authors populated
func (s *CommentService) List(ctx context.Context, userID primitive.ObjectID, documentID string) ([]*model.Comment, error) {
	docID, err := parseID(documentID, "document id")
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.Authorize(ctx, docID, userID); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	authors, err := userSummaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		c.User = authors[c.UserID]
	}
	return comments, nil
}
