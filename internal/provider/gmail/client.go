package gmail

import (
	"context"
	"fmt"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mailsift/mailsift/internal/domain"
	"github.com/mailsift/mailsift/internal/provider"
	"github.com/mailsift/mailsift/internal/store"
)

const userID = "me"

// Gateway implements provider.MailGateway against the Gmail API.
type Gateway struct {
	tokenStore *store.KeyringTokenStore
	accountID  string
	service    *gmailapi.Service
}

// New creates a Gmail gateway for the given account. The service is
// initialized lazily from the stored token on first use.
func New(accountID string, tokenStore *store.KeyringTokenStore) *Gateway {
	return &Gateway{
		accountID:  accountID,
		tokenStore: tokenStore,
	}
}

// Authenticate runs the OAuth2 flow, saves the token, and initializes the
// Gmail service.
func (g *Gateway) Authenticate(ctx context.Context) error {
	token, err := authenticate(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate gmail: %w", err)
	}

	if err := g.tokenStore.SaveToken(g.accountID, token); err != nil {
		return fmt.Errorf("failed to save gmail token: %w", err)
	}

	srv, err := gmailapi.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}
	g.service = srv
	return nil
}

// IsAuthenticated returns true if the Gmail service is initialized.
func (g *Gateway) IsAuthenticated() bool {
	return g.service != nil
}

// ensureService lazily initializes the Gmail service from the keyring token.
func (g *Gateway) ensureService(ctx context.Context) error {
	if g.service != nil {
		return nil
	}
	token, err := g.tokenStore.LoadToken(g.accountID)
	if err != nil {
		return fmt.Errorf("failed to load gmail token: %w", err)
	}
	srv, err := gmailapi.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}
	g.service = srv
	return nil
}

// ListMessages returns one page of message refs matching the query.
func (g *Gateway) ListMessages(ctx context.Context, query, pageToken string, maxResults int) ([]provider.MessageRef, string, error) {
	if err := g.ensureService(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	call := g.service.Users.Messages.List(userID)
	if maxResults > 0 {
		call = call.MaxResults(int64(maxResults))
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	if query != "" {
		call = call.Q(query)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list gmail messages: %w", err)
	}

	refs := make([]provider.MessageRef, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		refs = append(refs, provider.MessageRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return refs, resp.NextPageToken, nil
}

// GetMessage fetches a full message and normalizes it.
func (g *Gateway) GetMessage(ctx context.Context, id string) (*domain.Email, error) {
	if err := g.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	msg, err := g.service.Users.Messages.Get(userID, id).
		Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get gmail message %s: %w", id, err)
	}
	return normalizeMessage(msg), nil
}

// ModifyMessage adds and removes labels on a message, returning the
// post-modification label set reported by Gmail.
func (g *Gateway) ModifyMessage(ctx context.Context, id string, add, remove []string) ([]string, error) {
	if err := g.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	req := &gmailapi.ModifyMessageRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}
	msg, err := g.service.Users.Messages.Modify(userID, id, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to modify labels on message %s: %w", id, err)
	}
	return msg.LabelIds, nil
}

// TrashMessage moves a message to trash and returns the resulting label set.
func (g *Gateway) TrashMessage(ctx context.Context, id string) ([]string, error) {
	if err := g.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	msg, err := g.service.Users.Messages.Trash(userID, id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to trash gmail message %s: %w", id, err)
	}
	return msg.LabelIds, nil
}

// UntrashMessage restores a message from trash and returns the resulting
// label set.
func (g *Gateway) UntrashMessage(ctx context.Context, id string) ([]string, error) {
	if err := g.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	msg, err := g.service.Users.Messages.Untrash(userID, id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to untrash gmail message %s: %w", id, err)
	}
	return msg.LabelIds, nil
}

// ListLabels returns all labels for the authenticated user.
func (g *Gateway) ListLabels(ctx context.Context) ([]domain.Label, error) {
	if err := g.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	resp, err := g.service.Users.Labels.List(userID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list gmail labels: %w", err)
	}

	labels := make([]domain.Label, 0, len(resp.Labels))
	for _, l := range resp.Labels {
		labelType := domain.LabelTypeUser
		if l.Type == "system" {
			labelType = domain.LabelTypeSystem
		}
		labels = append(labels, domain.Label{
			ID:   l.Id,
			Name: l.Name,
			Type: labelType,
		})
	}
	return labels, nil
}

// CreateLabel creates a user label with default visibility.
func (g *Gateway) CreateLabel(ctx context.Context, name string) (domain.Label, error) {
	if err := g.ensureService(ctx); err != nil {
		return domain.Label{}, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	created, err := g.service.Users.Labels.Create(userID, &gmailapi.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return domain.Label{}, fmt.Errorf("failed to create gmail label %q: %w", name, err)
	}
	return domain.Label{ID: created.Id, Name: created.Name, Type: domain.LabelTypeUser}, nil
}

// GetProfile returns the authenticated user's email address.
func (g *Gateway) GetProfile(ctx context.Context) (string, error) {
	if err := g.ensureService(ctx); err != nil {
		return "", fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	profile, err := g.service.Users.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get gmail profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// Compile-time interface compliance check.
var _ provider.MailGateway = (*Gateway)(nil)
