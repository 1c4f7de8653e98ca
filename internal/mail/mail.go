// Package mail reads attachments out of a user's mailbox. Every mailbox is
// bound to one user's credential; there is no shared client.
package mail

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/oauth2"
)

// Attachment is one file part of a message. Data is set when the provider
// returned the body inline; otherwise it must be fetched by AttachmentID.
type Attachment struct {
	AttachmentID string
	PartID       string
	Filename     string
	MimeType     string
	Size         int64
	Data         []byte
}

// Ref identifies the attachment for idempotency: the provider id when present,
// otherwise the part id of an inline body.
func (a Attachment) Ref() string {
	if a.AttachmentID != "" {
		return a.AttachmentID
	}
	return "part:" + a.PartID
}

type Message struct {
	ID          string
	From        string
	Subject     string
	Attachments []Attachment
}

// Page is one page of a message listing
type Page struct {
	Messages      []Message
	NextPageToken string
}

// Mailbox is one user's mailbox
type Mailbox interface {
	ListMessages(ctx context.Context, query string, pageSize int, pageToken string) (*Page, error)
	FetchAttachment(ctx context.Context, messageID string, att Attachment) ([]byte, error)
	MarkRead(ctx context.Context, messageID string) error
}

// Identity is the profile of the account that completed the OAuth flow
type Identity struct {
	Email     string
	Name      string
	AvatarURL string
}

// Provider runs the OAuth flow and opens per-user mailboxes
type Provider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Identity(ctx context.Context, token *oauth2.Token) (*Identity, error)
	// Mailbox opens the mailbox for token. onRefresh is called with every token
	// the provider refreshes so the caller can persist it.
	Mailbox(ctx context.Context, token *oauth2.Token, onRefresh func(*oauth2.Token)) (Mailbox, error)
}

// IdempotencyKey identifies an attachment across fetch runs
func IdempotencyKey(messageID, attachmentRef string) string {
	sum := sha256.Sum256([]byte(messageID + ":" + attachmentRef))
	return hex.EncodeToString(sum[:])
}
