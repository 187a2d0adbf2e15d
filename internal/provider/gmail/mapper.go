package gmail

import (
	"encoding/base64"
	"log/slog"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/mailsift/mailsift/internal/domain"
)

// normalizeMessage flattens a Gmail API message into a domain Email.
// Status flags are derived from the label set; the Date header is kept as
// the raw provider string since senders emit formats we cannot rely on.
func normalizeMessage(msg *gmailapi.Message) *domain.Email {
	var headers []*gmailapi.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	plain, html := extractBody(msg.Payload)

	email := &domain.Email{
		ID:        msg.Id,
		ThreadID:  msg.ThreadId,
		Subject:   findHeader(headers, "Subject"),
		Sender:    findHeader(headers, "From"),
		Date:      findHeader(headers, "Date"),
		Snippet:   msg.Snippet,
		BodyPlain: plain,
		BodyHTML:  html,
	}
	email.SetLabelIDs(msg.LabelIds)
	return email
}

// findHeader performs a case-insensitive lookup for a header value.
// The first match wins; a missing header yields an empty string.
func findHeader(headers []*gmailapi.MessagePartHeader, name string) string {
	lower := strings.ToLower(name)
	for _, h := range headers {
		if strings.ToLower(h.Name) == lower {
			return h.Value
		}
	}
	return ""
}

// bodyParts accumulates the first text/plain and first text/html parts seen
// during the tree walk.
type bodyParts struct {
	plain string
	html  string
}

func (b *bodyParts) done() bool {
	return b.plain != "" && b.html != ""
}

// extractBody walks the MIME part tree depth-first and returns the first
// text/plain and first text/html bodies found anywhere in the tree,
// independently of each other. The walk stops globally once both have been
// found, not per branch.
func extractBody(payload *gmailapi.MessagePart) (plain, html string) {
	if payload == nil {
		return "", ""
	}
	var b bodyParts
	walkParts(payload, &b)
	return b.plain, b.html
}

func walkParts(part *gmailapi.MessagePart, b *bodyParts) {
	if part == nil || b.done() {
		return
	}

	var data string
	if part.Body != nil {
		data = part.Body.Data
	}

	switch {
	case part.MimeType == "text/plain" && data != "" && b.plain == "":
		b.plain = decodeBase64URL(data)
	case part.MimeType == "text/html" && data != "" && b.html == "":
		b.html = decodeBase64URL(data)
	}

	for _, p := range part.Parts {
		if b.done() {
			return
		}
		walkParts(p, b)
	}
}

// decodeBase64URL decodes Gmail's URL-safe base64 body encoding: '-' and '_'
// are mapped back to the standard alphabet and the input is padded to a
// multiple of four before decoding. Malformed input decodes to an empty
// string so a single bad message never aborts a batch.
func decodeBase64URL(s string) string {
	if s == "" {
		return ""
	}
	std := strings.ReplaceAll(s, "-", "+")
	std = strings.ReplaceAll(std, "_", "/")
	if pad := len(std) % 4; pad != 0 {
		std += strings.Repeat("=", 4-pad)
	}
	data, err := base64.StdEncoding.DecodeString(std)
	if err != nil {
		slog.Warn("failed to decode message body", "error", err)
		return ""
	}
	return string(data)
}
