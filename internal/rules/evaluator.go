// Package rules implements the triage engine's rule evaluation and action
// execution. Conditions and actions are tagged variants with exhaustive
// dispatch; an unknown kind is an error, never a silent fallthrough.
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mailsift/mailsift/internal/domain"
)

// Classifier is the external yes/no and summarization service consulted by
// aiPrompt conditions and summarize actions. An unconfigured classifier is a
// valid state: rules that need it never match and never fail the email.
type Classifier interface {
	Configured() bool
	Classify(ctx context.Context, text, question string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
}

// Evaluator decides whether a rule's condition holds for an email.
type Evaluator struct {
	classifier Classifier
	log        *slog.Logger
}

// NewEvaluator creates an evaluator. classifier may be nil when no external
// service is configured.
func NewEvaluator(classifier Classifier, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{classifier: classifier, log: log}
}

// Evaluate reports whether the rule's condition matches the email. A
// transport failure on the classifier path is returned as an error; the
// caller records it and continues with the next rule. All other non-match
// outcomes (empty keyword set, non-"yes" answer, unconfigured classifier)
// are ordinary false results.
func (ev *Evaluator) Evaluate(ctx context.Context, email *domain.Email, rule domain.Rule) (bool, error) {
	switch rule.ConditionType {
	case domain.ConditionSender:
		return strings.Contains(
			strings.ToLower(email.Sender),
			strings.ToLower(rule.ConditionValue),
		), nil

	case domain.ConditionBodyKeywords:
		keywords := splitKeywords(rule.ConditionValue)
		if len(keywords) == 0 {
			return false, nil
		}
		text := strings.ToLower(email.BodyOrSnippet())
		for _, kw := range keywords {
			if !strings.Contains(text, kw) {
				return false, nil
			}
		}
		return true, nil

	case domain.ConditionAIPrompt:
		return ev.evaluatePrompt(ctx, email, rule)

	default:
		return false, fmt.Errorf("unknown condition type %q", rule.ConditionType)
	}
}

func (ev *Evaluator) evaluatePrompt(ctx context.Context, email *domain.Email, rule domain.Rule) (bool, error) {
	if ev.classifier == nil || !ev.classifier.Configured() {
		ev.log.Warn("aiPrompt rule skipped: classifier not configured", "rule", rule.Name)
		return false, nil
	}

	answer, err := ev.classifier.Classify(ctx, promptSource(email, rule.AIPromptTarget), rule.ConditionValue)
	if err != nil {
		return false, fmt.Errorf("failed to classify for rule %q: %w", rule.Name, err)
	}
	// Only an exact normalized "yes" matches; anything else, including
	// malformed output, is a non-match.
	return answer == "yes", nil
}

// promptSource selects the email text an aiPrompt condition reads. An unset
// target reads the body.
func promptSource(email *domain.Email, target domain.PromptTarget) string {
	switch target {
	case domain.TargetSender:
		return email.Sender
	case domain.TargetSubject:
		return email.Subject
	default:
		return email.BodyOrSnippet()
	}
}

// splitKeywords splits a comma-separated keyword list, trimming whitespace,
// lower-casing, and dropping empties.
func splitKeywords(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
