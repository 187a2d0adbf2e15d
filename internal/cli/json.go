package cli

import (
	"time"

	"github.com/mailsift/mailsift/internal/domain"
	"github.com/mailsift/mailsift/internal/engine"
)

// ---------------------------------------------------------------------------
// Account JSON types (account list)
// ---------------------------------------------------------------------------

type jsonAccount struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Provider  string `json:"provider"`
	CreatedAt string `json:"created_at"`
}

func toJSONAccounts(accounts []domain.Account) []jsonAccount {
	out := make([]jsonAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, jsonAccount{
			ID:        a.ID,
			Email:     a.Email,
			Provider:  a.Provider,
			CreatedAt: a.CreatedAt.Format(time.DateOnly),
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Email JSON type (sync results)
// ---------------------------------------------------------------------------

type jsonEmail struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"thread_id"`
	Sender   string   `json:"sender"`
	Subject  string   `json:"subject"`
	Date     string   `json:"date,omitempty"`
	Snippet  string   `json:"snippet,omitempty"`
	Unread   bool     `json:"unread"`
	Archived bool     `json:"archived"`
	Trashed  bool     `json:"trashed"`
	Labels   []string `json:"labels,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

func toJSONEmails(emails []domain.Email) []jsonEmail {
	out := make([]jsonEmail, 0, len(emails))
	for _, e := range emails {
		out = append(out, jsonEmail{
			ID:       e.ID,
			ThreadID: e.ThreadID,
			Sender:   e.Sender,
			Subject:  e.Subject,
			Date:     e.Date,
			Snippet:  e.Snippet,
			Unread:   e.IsUnread,
			Archived: e.IsArchived,
			Trashed:  e.IsTrashed,
			Labels:   e.LabelIDs,
			Summary:  e.Summary,
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Label JSON type (labels)
// ---------------------------------------------------------------------------

type jsonLabel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func toJSONLabels(labels []domain.Label) []jsonLabel {
	out := make([]jsonLabel, 0, len(labels))
	for _, l := range labels {
		out = append(out, jsonLabel{
			ID:   l.ID,
			Name: l.Name,
			Type: string(l.Type),
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Pass JSON type (sync, watch)
// ---------------------------------------------------------------------------

type jsonPass struct {
	Listed  int         `json:"listed"`
	Fetched int         `json:"fetched"`
	Skipped int         `json:"skipped"`
	Matched int         `json:"matched"`
	Applied int         `json:"applied"`
	Errors  int         `json:"errors"`
	HasMore bool        `json:"has_more"`
	Emails  []jsonEmail `json:"emails"`
}

func toJSONPass(s engine.PassSummary, hasMore bool, emails []domain.Email) jsonPass {
	return jsonPass{
		Listed:  s.Listed,
		Fetched: s.Fetched,
		Skipped: s.Skipped,
		Matched: s.Matched,
		Applied: s.Applied,
		Errors:  s.Errors,
		HasMore: hasMore,
		Emails:  toJSONEmails(emails),
	}
}

// ---------------------------------------------------------------------------
// Action JSON type (mark-read, archive, trash, account add/remove, etc.)
// ---------------------------------------------------------------------------

type jsonAction struct {
	OK        bool   `json:"ok"`
	Action    string `json:"action"`
	MessageID string `json:"message_id,omitempty"`
	Email     string `json:"email,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	RuleID    string `json:"rule_id,omitempty"`
	LabelID   string `json:"label_id,omitempty"`
}
