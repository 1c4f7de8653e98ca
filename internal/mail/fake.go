package mail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// FakeProvider is an in-memory Provider for tests. Every token opens the same
// Mailbox; codes map to identities through Accounts.
type FakeProvider struct {
	Accounts map[string]*Identity // code -> identity
	Box      *FakeMailbox
}

var _ Provider = (*FakeProvider)(nil)

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{Accounts: make(map[string]*Identity), Box: NewFakeMailbox()}
}

func (p *FakeProvider) AuthURL(state string) string {
	return "https://accounts.example.test/auth?state=" + state
}

func (p *FakeProvider) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if _, ok := p.Accounts[code]; !ok {
		return nil, fmt.Errorf("exchange code: unknown code")
	}
	return &oauth2.Token{AccessToken: "access-" + code, RefreshToken: "refresh-" + code, TokenType: "Bearer"}, nil
}

func (p *FakeProvider) Identity(_ context.Context, token *oauth2.Token) (*Identity, error) {
	for code, id := range p.Accounts {
		if token.AccessToken == "access-"+code {
			return id, nil
		}
	}
	return nil, errors.New("get userinfo: unknown token")
}

func (p *FakeProvider) Mailbox(context.Context, *oauth2.Token, func(*oauth2.Token)) (Mailbox, error) {
	return p.Box, nil
}

// FakeMailbox serves fixed pages of messages. Pages are addressed by token:
// "" is the first page, each page names the next.
type FakeMailbox struct {
	mu       sync.Mutex
	Pages    map[string]*Page
	Bodies   map[string][]byte // attachment id -> body
	Read     map[string]bool
	FailOn   string // attachment id whose fetch fails
	Fetches  int
	Listings int
}

func NewFakeMailbox() *FakeMailbox {
	return &FakeMailbox{
		Pages:  make(map[string]*Page),
		Bodies: make(map[string][]byte),
		Read:   make(map[string]bool),
	}
}

func (m *FakeMailbox) ListMessages(_ context.Context, _ string, _ int, pageToken string) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Listings++
	page, ok := m.Pages[pageToken]
	if !ok {
		return &Page{}, nil
	}
	return page, nil
}

func (m *FakeMailbox) FetchAttachment(_ context.Context, _ string, att Attachment) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetches++
	if att.Data != nil {
		return att.Data, nil
	}
	if att.AttachmentID == m.FailOn {
		return nil, errors.New("get attachment: backend error")
	}
	body, ok := m.Bodies[att.AttachmentID]
	if !ok {
		return nil, errors.New("get attachment: not found")
	}
	return body, nil
}

func (m *FakeMailbox) MarkRead(_ context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Read[messageID] = true
	return nil
}

// IsRead reports whether MarkRead was called for messageID
func (m *FakeMailbox) IsRead(messageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Read[messageID]
}
