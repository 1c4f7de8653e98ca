package mail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

func TestIdempotencyKey(t *testing.T) {
	a := IdempotencyKey("msg-1", "att-1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, IdempotencyKey("msg-1", "att-1"))
	assert.NotEqual(t, a, IdempotencyKey("msg-1", "att-2"))
	// the separator keeps ("ab","c") and ("a","bc") apart
	assert.NotEqual(t, IdempotencyKey("ab", "c"), IdempotencyKey("a", "bc"))
}

func TestAttachmentRef(t *testing.T) {
	assert.Equal(t, "att", Attachment{AttachmentID: "att", PartID: "1"}.Ref())
	assert.Equal(t, "part:1.2", Attachment{PartID: "1.2"}.Ref())
}

func TestConvertMessageWalksNestedParts(t *testing.T) {
	inline := base64.URLEncoding.EncodeToString([]byte("inline body"))
	msg := &gmail.Message{
		Id: "m1",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "Alice <alice@example.com>"},
				{Name: "subject", Value: "Q1 numbers"},
			},
			Parts: []*gmail.MessagePart{
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: "aGk="}},
				{PartId: "1", Filename: "report.pdf", MimeType: "application/pdf", Body: &gmail.MessagePartBody{AttachmentId: "att-1", Size: 10}},
				{
					MimeType: "multipart/mixed",
					Parts: []*gmail.MessagePart{
						{PartId: "2.1", Filename: "note.txt", MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: inline}},
					},
				},
			},
		},
	}

	out := convertMessage(msg)
	assert.Equal(t, "m1", out.ID)
	assert.Equal(t, "Alice <alice@example.com>", out.From)
	assert.Equal(t, "Q1 numbers", out.Subject)
	require.Len(t, out.Attachments, 2)
	assert.Equal(t, "att-1", out.Attachments[0].AttachmentID)
	assert.Equal(t, "note.txt", out.Attachments[1].Filename)
	assert.Equal(t, []byte("inline body"), out.Attachments[1].Data)
}

func TestDecodeBody(t *testing.T) {
	padded := base64.URLEncoding.EncodeToString([]byte("ab?>"))
	raw := base64.RawURLEncoding.EncodeToString([]byte("ab?>"))

	for _, in := range []string{padded, raw} {
		got, err := decodeBody(in)
		require.NoError(t, err)
		assert.Equal(t, []byte("ab?>"), got)
	}
	_, err := decodeBody("***")
	assert.Error(t, err)
}

func TestAuthURLRequestsOfflineConsent(t *testing.T) {
	g := NewGmail("client", "secret", "http://localhost/cb")
	url := g.AuthURL("state-1")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "prompt=consent")
	assert.Contains(t, url, "state=state-1")
	assert.Contains(t, url, "gmail.modify")
}
