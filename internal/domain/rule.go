package domain

import (
	"fmt"
	"strings"
)

// ConditionType selects how a rule's condition value is interpreted.
type ConditionType string

const (
	ConditionSender       ConditionType = "sender"       // substring match on the sender
	ConditionBodyKeywords ConditionType = "bodyKeywords" // comma-separated AND-list over body-or-snippet
	ConditionAIPrompt     ConditionType = "aiPrompt"     // yes/no question for the external classifier
)

// ActionType selects what a matching rule does to an email.
type ActionType string

const (
	ActionMarkRead  ActionType = "markRead"
	ActionArchive   ActionType = "archive"
	ActionAddLabel  ActionType = "addLabel"
	ActionSummarize ActionType = "summarize"
)

// PromptTarget selects which part of the email an aiPrompt condition reads.
type PromptTarget string

const (
	TargetSender  PromptTarget = "sender"
	TargetSubject PromptTarget = "subject"
	TargetBody    PromptTarget = "body"
)

// Rule pairs a user-defined condition with an action. Rules are immutable
// once created; edits are delete-and-recreate. The JSON field names are the
// persisted interchange format, so they must not change.
type Rule struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	ConditionType  ConditionType `json:"conditionType"`
	ConditionValue string        `json:"conditionValue"`
	AIPromptTarget PromptTarget  `json:"aiPromptTarget,omitempty"`
	ActionType     ActionType    `json:"actionType"`
	ActionValue    string        `json:"actionValue,omitempty"`
}

// Normalize fills defaults for optional fields: aiPrompt rules without a
// target read the body.
func (r *Rule) Normalize() {
	if r.ConditionType == ConditionAIPrompt && r.AIPromptTarget == "" {
		r.AIPromptTarget = TargetBody
	}
}

// Validate checks the rule for internal consistency.
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("rule name is required")
	}
	switch r.ConditionType {
	case ConditionSender, ConditionBodyKeywords, ConditionAIPrompt:
	default:
		return fmt.Errorf("unknown condition type %q", r.ConditionType)
	}
	if strings.TrimSpace(r.ConditionValue) == "" {
		return fmt.Errorf("rule %q: condition value is required", r.Name)
	}
	if r.ConditionType == ConditionAIPrompt {
		switch r.AIPromptTarget {
		case TargetSender, TargetSubject, TargetBody, "":
		default:
			return fmt.Errorf("rule %q: unknown prompt target %q", r.Name, r.AIPromptTarget)
		}
	}
	switch r.ActionType {
	case ActionMarkRead, ActionArchive, ActionSummarize:
	case ActionAddLabel:
		if strings.TrimSpace(r.ActionValue) == "" {
			return fmt.Errorf("rule %q: addLabel requires a label name", r.Name)
		}
	default:
		return fmt.Errorf("unknown action type %q", r.ActionType)
	}
	return nil
}

// String renders the rule in the "IF condition THEN action" form used by the
// CLI listing.
func (r Rule) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: IF %s", r.Name, r.ConditionType)
	if r.ConditionType == ConditionAIPrompt && r.AIPromptTarget != "" {
		fmt.Fprintf(&b, " (target: %s)", r.AIPromptTarget)
	}
	fmt.Fprintf(&b, " %q THEN %s", r.ConditionValue, r.ActionType)
	if r.ActionType == ActionAddLabel {
		fmt.Fprintf(&b, " %q", r.ActionValue)
	}
	return b.String()
}
