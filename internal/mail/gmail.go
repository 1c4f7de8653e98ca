package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const me = "me"

var scopes = []string{
	"openid",
	oauth2api.UserinfoEmailScope,
	oauth2api.UserinfoProfileScope,
	gmail.GmailModifyScope,
}

// Gmail implements Provider against Google's APIs
type Gmail struct {
	oauth *oauth2.Config
}

var _ Provider = (*Gmail)(nil)

func NewGmail(clientID, clientSecret, redirectURL string) *Gmail {
	return &Gmail{oauth: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}}
}

// AuthURL asks for offline access with forced consent so a refresh token is always issued
func (g *Gmail) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

func (g *Gmail) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

func (g *Gmail) Identity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(g.oauth.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get userinfo: %w", err)
	}
	return &Identity{Email: info.Email, Name: info.Name, AvatarURL: info.Picture}, nil
}

func (g *Gmail) Mailbox(ctx context.Context, token *oauth2.Token, onRefresh func(*oauth2.Token)) (Mailbox, error) {
	ts := &notifyingSource{
		base:      oauth2.ReuseTokenSource(token, g.oauth.TokenSource(ctx, token)),
		last:      token.AccessToken,
		onRefresh: onRefresh,
	}
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create gmail client: %w", err)
	}
	return &gmailMailbox{svc: svc}, nil
}

// notifyingSource reports each new access token once
type notifyingSource struct {
	mu        sync.Mutex
	base      oauth2.TokenSource
	last      string
	onRefresh func(*oauth2.Token)
}

func (s *notifyingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	changed := tok.AccessToken != s.last
	s.last = tok.AccessToken
	s.mu.Unlock()
	if changed && s.onRefresh != nil {
		s.onRefresh(tok)
	}
	return tok, nil
}

type gmailMailbox struct {
	svc *gmail.Service
}

func (m *gmailMailbox) ListMessages(ctx context.Context, query string, pageSize int, pageToken string) (*Page, error) {
	call := m.svc.Users.Messages.List(me).Q(query).MaxResults(int64(pageSize)).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	list, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	page := &Page{NextPageToken: list.NextPageToken}
	for _, ref := range list.Messages {
		msg, err := m.svc.Users.Messages.Get(me, ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("get message %s: %w", ref.Id, err)
		}
		page.Messages = append(page.Messages, convertMessage(msg))
	}
	return page, nil
}

func (m *gmailMailbox) FetchAttachment(ctx context.Context, messageID string, att Attachment) ([]byte, error) {
	if att.Data != nil {
		return att.Data, nil
	}
	body, err := m.svc.Users.Messages.Attachments.Get(me, messageID, att.AttachmentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return decodeBody(body.Data)
}

func (m *gmailMailbox) MarkRead(ctx context.Context, messageID string) error {
	_, err := m.svc.Users.Messages.Modify(me, messageID, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func convertMessage(msg *gmail.Message) Message {
	out := Message{ID: msg.Id}
	if msg.Payload == nil {
		return out
	}
	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "from":
			out.From = h.Value
		case "subject":
			out.Subject = h.Value
		}
	}
	collectAttachments(msg.Payload, &out.Attachments)
	return out
}

// collectAttachments walks nested multipart trees; forwarded mail nests attachments several levels deep
func collectAttachments(part *gmail.MessagePart, out *[]Attachment) {
	if part == nil {
		return
	}
	if part.Filename != "" && part.Body != nil {
		att := Attachment{
			AttachmentID: part.Body.AttachmentId,
			PartID:       part.PartId,
			Filename:     part.Filename,
			MimeType:     part.MimeType,
			Size:         part.Body.Size,
		}
		if att.AttachmentID == "" && part.Body.Data != "" {
			if data, err := decodeBody(part.Body.Data); err == nil {
				att.Data = data
			}
		}
		if att.AttachmentID != "" || att.Data != nil {
			*out = append(*out, att)
		}
	}
	for _, child := range part.Parts {
		collectAttachments(child, out)
	}
}

// decodeBody handles Gmail's URL-safe base64 with or without padding
func decodeBody(data string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return nil, fmt.Errorf("decode attachment body: %w", err)
	}
	return b, nil
}
