package gmail

import (
	"encoding/base64"
	"testing"

	gmailapi "google.golang.org/api/gmail/v1"
)

func enc(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestDecodeBase64URL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unpadded standard chars", "SGVsbG8sIFdvcmxkIQ", "Hello, World!"},
		{"url-safe alphabet", "PGI-PC9iPg", "<b></b>"},
		{"empty input", "", ""},
		{"malformed input", "%%%", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeBase64URL(tt.input); got != tt.want {
				t.Errorf("decodeBase64URL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindHeader(t *testing.T) {
	headers := []*gmailapi.MessagePartHeader{
		{Name: "FROM", Value: "alice@example.com"},
		{Name: "Subject", Value: "first"},
		{Name: "Subject", Value: "second"},
	}

	if got := findHeader(headers, "From"); got != "alice@example.com" {
		t.Errorf("case-insensitive lookup = %q, want %q", got, "alice@example.com")
	}
	if got := findHeader(headers, "subject"); got != "first" {
		t.Errorf("duplicate header lookup = %q, want first occurrence %q", got, "first")
	}
	if got := findHeader(headers, "Date"); got != "" {
		t.Errorf("missing header lookup = %q, want empty", got)
	}
}

func TestExtractBodyNested(t *testing.T) {
	payload := &gmailapi.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmailapi.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmailapi.MessagePart{
					{
						MimeType: "text/plain",
						Body:     &gmailapi.MessagePartBody{Data: enc("plain body")},
					},
					{
						MimeType: "text/html",
						Body:     &gmailapi.MessagePartBody{Data: enc("<p>html body</p>")},
					},
				},
			},
			{
				MimeType: "text/plain",
				Body:     &gmailapi.MessagePartBody{Data: enc("later plain part")},
			},
		},
	}

	plain, html := extractBody(payload)
	if plain != "plain body" {
		t.Errorf("plain = %q, want first text/plain part", plain)
	}
	if html != "<p>html body</p>" {
		t.Errorf("html = %q, want first text/html part", html)
	}
}

func TestExtractBodyTopLevel(t *testing.T) {
	payload := &gmailapi.MessagePart{
		MimeType: "text/plain",
		Body:     &gmailapi.MessagePartBody{Data: enc("just text")},
	}

	plain, html := extractBody(payload)
	if plain != "just text" {
		t.Errorf("plain = %q, want %q", plain, "just text")
	}
	if html != "" {
		t.Errorf("html = %q, want empty", html)
	}
}

func TestExtractBodyNilPayload(t *testing.T) {
	plain, html := extractBody(nil)
	if plain != "" || html != "" {
		t.Errorf("extractBody(nil) = (%q, %q), want empty", plain, html)
	}
}

func TestNormalizeMessage(t *testing.T) {
	msg := &gmailapi.Message{
		Id:       "m1",
		ThreadId: "t1",
		Snippet:  "snippet text",
		LabelIds: []string{"UNREAD", "INBOX", "IMPORTANT"},
		Payload: &gmailapi.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "From", Value: "Bob <bob@example.com>"},
				{Name: "Subject", Value: "Hello"},
				{Name: "Date", Value: "not a standard date"},
			},
			Body: &gmailapi.MessagePartBody{Data: enc("body text")},
		},
	}

	email := normalizeMessage(msg)

	if email.ID != "m1" || email.ThreadID != "t1" {
		t.Errorf("IDs = (%q, %q), want (m1, t1)", email.ID, email.ThreadID)
	}
	if email.Sender != "Bob <bob@example.com>" {
		t.Errorf("Sender = %q", email.Sender)
	}
	if email.Date != "not a standard date" {
		t.Errorf("Date should keep the raw header value, got %q", email.Date)
	}
	if email.BodyPlain != "body text" {
		t.Errorf("BodyPlain = %q", email.BodyPlain)
	}
	if !email.IsUnread {
		t.Error("IsUnread = false, want true with UNREAD label")
	}
	if email.IsArchived {
		t.Error("IsArchived = true, want false with INBOX label")
	}
	if email.IsTrashed {
		t.Error("IsTrashed = true, want false without TRASH label")
	}
}

func TestNormalizeMessageStatusFlags(t *testing.T) {
	tests := []struct {
		name         string
		labels       []string
		wantUnread   bool
		wantArchived bool
		wantTrashed  bool
	}{
		{"read in inbox", []string{"INBOX"}, false, false, false},
		{"archived", []string{"UNREAD"}, true, true, false},
		{"trashed", []string{"TRASH"}, false, true, true},
		{"no labels", nil, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := normalizeMessage(&gmailapi.Message{Id: "m", LabelIds: tt.labels})
			if email.IsUnread != tt.wantUnread {
				t.Errorf("IsUnread = %v, want %v", email.IsUnread, tt.wantUnread)
			}
			if email.IsArchived != tt.wantArchived {
				t.Errorf("IsArchived = %v, want %v", email.IsArchived, tt.wantArchived)
			}
			if email.IsTrashed != tt.wantTrashed {
				t.Errorf("IsTrashed = %v, want %v", email.IsTrashed, tt.wantTrashed)
			}
		})
	}
}
