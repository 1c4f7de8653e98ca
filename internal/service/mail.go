package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"docvault/internal/apperr"
	"docvault/internal/config"
	"docvault/internal/mail"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/session"
	"docvault/pkg/storage"
	"docvault/pkg/timer"
	"docvault/pkg/util"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"
)

// stateTTL bounds how long a user has to complete the consent screen
const stateTTL = 10 * time.Minute

// MailService runs the Google sign-in flow and ingests mail attachments.
// Every fetch runs with the calling user's own stored credential.
type MailService struct {
	provider      mail.Provider // nil when Google is not configured
	tokens        repository.IGmailTokenRepository
	attachments   repository.IMailAttachmentRepository
	users         *UserService
	sessions      session.Store
	files         storage.FileStore
	notifications *NotificationService
	cfg           *config.Config
	log           zerolog.Logger
}

func NewMailService(
	provider mail.Provider,
	repos *repository.Repositories,
	users *UserService,
	sessions session.Store,
	files storage.FileStore,
	notifications *NotificationService,
	cfg *config.Config,
	log zerolog.Logger,
) *MailService {
	return &MailService{
		provider:      provider,
		tokens:        repos.GmailTokens,
		attachments:   repos.MailAttachments,
		users:         users,
		sessions:      sessions,
		files:         files,
		notifications: notifications,
		cfg:           cfg,
		log:           log.With().Str("component", "mail").Logger(),
	}
}

// AuthURL starts the consent flow with a single-use state
func (s *MailService) AuthURL(ctx context.Context) (string, error) {
	if s.provider == nil {
		return "", apperr.Unavailable("google sign-in is not configured")
	}
	state, err := util.GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	if err := s.sessions.SaveState(ctx, state, "", stateTTL); err != nil {
		return "", fmt.Errorf("failed to save state: %w", err)
	}
	return s.provider.AuthURL(state), nil
}

// Callback completes the consent flow: it finds or creates the account, stores
// the mail credential for that account and returns the frontend redirect
// carrying an application token.
func (s *MailService) Callback(ctx context.Context, state, code string) (string, error) {
	if s.provider == nil {
		return "", apperr.Unavailable("google sign-in is not configured")
	}
	if code == "" {
		return "", apperr.Validation("missing code")
	}
	if _, err := s.sessions.ConsumeState(ctx, state); err != nil {
		if errors.Is(err, session.ErrStateNotFound) {
			return "", apperr.Unauthorized("invalid or expired state")
		}
		return "", fmt.Errorf("failed to check state: %w", err)
	}

	tok, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.log.Warn().Err(err).Msg("code exchange failed")
		return "", apperr.Unauthorized("google authorization failed")
	}
	identity, err := s.provider.Identity(ctx, tok)
	if err != nil {
		return "", fmt.Errorf("failed to read google profile: %w", err)
	}

	user, resp, err := s.users.ExternalLogin(ctx, identity.Email, identity.Name, identity.AvatarURL)
	if err != nil {
		return "", err
	}
	if err := s.saveToken(ctx, user.ID, tok); err != nil {
		return "", err
	}

	profile, err := json.Marshal(map[string]string{
		"id":         user.ID.Hex(),
		"email":      user.Email,
		"full_name":  user.FullName,
		"avatar_url": identity.AvatarURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}

	q := url.Values{}
	q.Set("token", resp.Token)
	q.Set("profile", string(profile))
	s.log.Info().Str("user", user.ID.Hex()).Msg("google sign-in completed")
	return strings.TrimRight(s.cfg.Google.FrontendURL, "/") + "/auth-callback?" + q.Encode(), nil
}

// Fetch ingests attachments from the caller's mailbox starting at pageToken.
// It stops after the configured number of pages and returns the cursor to
// resume from. Attachments already ingested are skipped, and a message is
// marked read only once all of its attachments are stored.
func (s *MailService) Fetch(ctx context.Context, userID primitive.ObjectID, pageToken string) (*model.FetchMailResult, error) {
	if s.provider == nil {
		return nil, apperr.Unavailable("google sign-in is not configured")
	}
	stored, err := s.tokens.FindByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("gmail is not connected, sign in with Google first")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load gmail token: %w", err)
	}

	tok := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       stored.Expiry,
	}
	box, err := s.provider.Mailbox(ctx, tok, func(refreshed *oauth2.Token) {
		// the request context may already be gone when the refresh is reported
		if err := s.saveToken(context.Background(), userID, refreshed); err != nil {
			s.log.Warn().Err(err).Str("user", userID.Hex()).Msg("failed to persist refreshed token")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mailbox: %w", err)
	}

	result := &model.FetchMailResult{Saved: []*model.MailAttachment{}}
	cursor := pageToken
	maxPages := s.cfg.Mail.MaxPages
	if maxPages <= 0 {
		maxPages = config.DefaultMailMaxPages
	}

	sw := timer.NewStopwatch(ctx, "mail.fetch")
	for pages := 0; pages < maxPages; pages++ {
		page, err := box.ListMessages(ctx, s.cfg.Mail.Query, s.cfg.Mail.PageSize, cursor)
		if err != nil {
			if pages == 0 {
				return nil, fmt.Errorf("failed to list messages: %w", err)
			}
			// keep what we have; the cursor resumes at the failed page
			s.log.Warn().Err(err).Msg("listing stopped early")
			break
		}
		result.Messages += len(page.Messages)
		for _, msg := range page.Messages {
			s.ingest(ctx, userID, box, msg, result)
		}
		sw.Lap(fmt.Sprintf("page %d", pages+1))
		cursor = page.NextPageToken
		if cursor == "" {
			break
		}
	}
	result.NextPageToken = cursor
	sw.Total()

	if n := len(result.Saved); n > 0 {
		if err := s.notifications.Notify(ctx, &model.Notification{
			UserID:  userID,
			Title:   "Mail attachments saved",
			Message: fmt.Sprintf("%d new attachment(s) saved from your mailbox", n),
			Type:    model.NotificationMail,
		}); err != nil {
			s.log.Warn().Err(err).Msg("failed to notify user")
		}
	}
	s.log.Info().
		Str("user", userID.Hex()).
		Int("messages", result.Messages).
		Int("saved", len(result.Saved)).
		Int("skipped", result.Skipped).
		Msg("mail fetch finished")
	return result, nil
}

// ingest stores every new attachment of msg and marks it read when nothing failed
func (s *MailService) ingest(ctx context.Context, userID primitive.ObjectID, box mail.Mailbox, msg mail.Message, result *model.FetchMailResult) {
	complete := true
	for _, att := range msg.Attachments {
		if att.Filename == "" {
			continue
		}
		key := mail.IdempotencyKey(msg.ID, att.Ref())
		exists, err := s.attachments.ExistsByKey(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("message", msg.ID).Msg("idempotency lookup failed")
			complete = false
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		saved, err := s.store(ctx, userID, box, msg, att, key)
		if errors.Is(err, repository.ErrDuplicate) {
			result.Skipped++
			continue
		}
		if err != nil {
			s.log.Warn().Err(err).Str("message", msg.ID).Str("file", att.Filename).Msg("failed to save attachment")
			complete = false
			continue
		}
		result.Saved = append(result.Saved, saved)
	}

	if !complete {
		return
	}
	if err := box.MarkRead(ctx, msg.ID); err != nil {
		s.log.Warn().Err(err).Str("message", msg.ID).Msg("failed to mark message read")
	}
}

func (s *MailService) store(ctx context.Context, userID primitive.ObjectID, box mail.Mailbox, msg mail.Message, att mail.Attachment, key string) (*model.MailAttachment, error) {
	data, err := box.FetchAttachment(ctx, msg.ID, att)
	if err != nil {
		return nil, fmt.Errorf("fetch attachment: %w", err)
	}
	contentType := att.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	obj, err := s.files.Put(ctx, att.Filename, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	rec, err := s.attachments.Create(ctx, &model.MailAttachment{
		UserID:         userID,
		IdempotencyKey: key,
		Filename:       att.Filename,
		StorageKey:     obj.Key,
		ContentType:    contentType,
		Size:           obj.Size,
		From:           msg.From,
		Subject:        msg.Subject,
		MessageID:      msg.ID,
		AttachmentID:   att.AttachmentID,
	})
	if err != nil {
		if delErr := s.files.Delete(ctx, obj.Key); delErr != nil {
			s.log.Warn().Err(delErr).Str("key", obj.Key).Msg("failed to delete orphaned attachment body")
		}
		return nil, err
	}
	return rec, nil
}

// ListFiles returns the caller's ingested attachments, newest first
func (s *MailService) ListFiles(ctx context.Context, userID primitive.ObjectID) ([]*model.MailAttachment, error) {
	files, err := s.attachments.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return files, nil
}

// Open returns one of the caller's attachments. Other users' files are
// reported as missing.
func (s *MailService) Open(ctx context.Context, userID primitive.ObjectID, attachmentID string) (*model.MailAttachment, io.ReadCloser, error) {
	id, err := parseID(attachmentID, "attachment id")
	if err != nil {
		return nil, nil, err
	}
	att, err := s.attachments.FindByID(ctx, id)
	if err != nil {
		return nil, nil, storeErr(err, "get", "attachment")
	}
	if att.UserID != userID {
		return nil, nil, apperr.NotFound("attachment not found")
	}
	rc, err := s.files.Get(ctx, att.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, apperr.NotFound("file not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open attachment: %w", err)
	}
	return att, rc, nil
}

func (s *MailService) saveToken(ctx context.Context, userID primitive.ObjectID, tok *oauth2.Token) error {
	scope, _ := tok.Extra("scope").(string)
	err := s.tokens.Upsert(ctx, &model.GmailToken{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Scope:        scope,
		Expiry:       tok.Expiry,
	})
	if err != nil {
		return fmt.Errorf("failed to save gmail token: %w", err)
	}
	return nil
}
