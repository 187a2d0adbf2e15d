package provider

import (
	"context"

	"github.com/mailsift/mailsift/internal/domain"
)

// MessageRef is a lightweight handle returned by list calls; the full
// message must be fetched separately.
type MessageRef struct {
	ID       string
	ThreadID string
}

// MailGateway is the narrow mail-provider surface the triage engine depends
// on. Modify-style calls return the provider's post-modification label set,
// which is authoritative; callers must replace their local label state with
// it rather than computing the result themselves.
type MailGateway interface {
	Authenticate(ctx context.Context) error
	IsAuthenticated() bool

	// ListMessages returns one page of message refs matching the query plus
	// an opaque continuation token; an empty token means exhausted.
	ListMessages(ctx context.Context, query, pageToken string, maxResults int) ([]MessageRef, string, error)

	// GetMessage fetches and normalizes a single message.
	GetMessage(ctx context.Context, id string) (*domain.Email, error)

	// ModifyMessage adds and removes labels, returning the resulting label set.
	ModifyMessage(ctx context.Context, id string, add, remove []string) ([]string, error)

	// TrashMessage and UntrashMessage move a message in and out of trash,
	// returning the resulting label set.
	TrashMessage(ctx context.Context, id string) ([]string, error)
	UntrashMessage(ctx context.Context, id string) ([]string, error)

	ListLabels(ctx context.Context) ([]domain.Label, error)
	CreateLabel(ctx context.Context, name string) (domain.Label, error)
}
