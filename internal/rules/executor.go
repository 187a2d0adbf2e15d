package rules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mailsift/mailsift/internal/domain"
	"github.com/mailsift/mailsift/internal/provider"
)

// LabelResolver resolves a label name to a provider label ID, creating the
// label when absent.
type LabelResolver interface {
	ResolveOrCreate(ctx context.Context, name string) (string, error)
}

// DefaultMinSummaryChars is the threshold below which content is reported
// as too short to summarize instead of being sent to the classifier.
const DefaultMinSummaryChars = 50

// Executor applies a matched rule's action to an email. Actions are
// idempotent: an email that already satisfies the action's postcondition is
// returned unchanged without a remote call.
type Executor struct {
	gateway         provider.MailGateway
	labels          LabelResolver
	classifier      Classifier
	minSummaryChars int
	log             *slog.Logger
}

// NewExecutor creates an executor. classifier may be nil; summarize actions
// are then reported as skipped. minSummaryChars <= 0 selects the default.
func NewExecutor(gateway provider.MailGateway, labels LabelResolver, classifier Classifier, minSummaryChars int, log *slog.Logger) *Executor {
	if minSummaryChars <= 0 {
		minSummaryChars = DefaultMinSummaryChars
	}
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		gateway:         gateway,
		labels:          labels,
		classifier:      classifier,
		minSummaryChars: minSummaryChars,
		log:             log,
	}
}

// Apply executes the rule's action against the email and returns the
// resulting snapshot plus whether anything changed. On error the input email
// is returned unmodified; the caller records the failure and continues with
// other rules and emails. After any gateway call the returned label set is
// authoritative and replaces the local one.
func (ex *Executor) Apply(ctx context.Context, rule domain.Rule, email domain.Email) (domain.Email, bool, error) {
	switch rule.ActionType {
	case domain.ActionMarkRead:
		if !email.IsUnread {
			return email, false, nil
		}
		return ex.modify(ctx, email, nil, []string{domain.LabelUnread})

	case domain.ActionArchive:
		if email.IsArchived {
			return email, false, nil
		}
		return ex.modify(ctx, email, nil, []string{domain.LabelInbox})

	case domain.ActionAddLabel:
		return ex.addLabel(ctx, rule, email)

	case domain.ActionSummarize:
		return ex.summarize(ctx, rule, email)

	default:
		return email, false, fmt.Errorf("unknown action type %q", rule.ActionType)
	}
}

func (ex *Executor) addLabel(ctx context.Context, rule domain.Rule, email domain.Email) (domain.Email, bool, error) {
	if rule.ActionValue == "" {
		return email, false, fmt.Errorf("rule %q: addLabel requires a label name", rule.Name)
	}
	labelID, err := ex.labels.ResolveOrCreate(ctx, rule.ActionValue)
	if err != nil {
		return email, false, err
	}
	if email.HasLabel(labelID) {
		return email, false, nil
	}
	return ex.modify(ctx, email, []string{labelID}, nil)
}

func (ex *Executor) summarize(ctx context.Context, rule domain.Rule, email domain.Email) (domain.Email, bool, error) {
	if email.Summary != "" {
		return email, false, nil
	}
	if ex.classifier == nil || !ex.classifier.Configured() {
		ex.log.Warn("summarize action skipped: classifier not configured", "rule", rule.Name, "message", email.ID)
		return email, false, nil
	}

	text := email.BodyOrSnippet()
	if len(text) < ex.minSummaryChars {
		ex.log.Warn("content too short to summarize", "rule", rule.Name, "message", email.ID, "length", len(text))
		return email, false, nil
	}

	summary, err := ex.classifier.Summarize(ctx, text)
	if err != nil {
		return email, false, fmt.Errorf("failed to summarize message %s: %w", email.ID, err)
	}

	updated := email.Clone()
	updated.Summary = summary
	return updated, true, nil
}

// modify issues the label delta and replaces the email's label set with the
// gateway's returned post-state.
func (ex *Executor) modify(ctx context.Context, email domain.Email, add, remove []string) (domain.Email, bool, error) {
	confirmed, err := ex.gateway.ModifyMessage(ctx, email.ID, add, remove)
	if err != nil {
		return email, false, err
	}
	updated := email.Clone()
	updated.SetLabelIDs(confirmed)
	return updated, true, nil
}
