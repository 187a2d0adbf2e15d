// Package engine orchestrates triage passes: paginated message discovery,
// per-message rule application, and reconciliation of user-initiated
// actions against the remote label store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mailsift/mailsift/internal/domain"
	"github.com/mailsift/mailsift/internal/provider"
	"github.com/mailsift/mailsift/internal/rules"
	"github.com/mailsift/mailsift/internal/store"
)

// State names the phase a controller is in. Transitions are
// Idle -> ListingIDs -> FetchingDetails -> ApplyingRules -> Idle.
type State int

const (
	StateIdle State = iota
	StateListingIDs
	StateFetchingDetails
	StateApplyingRules
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListingIDs:
		return "listing"
	case StateFetchingDetails:
		return "fetching"
	case StateApplyingRules:
		return "applying"
	default:
		return "unknown"
	}
}

// ErrPassInFlight is returned when a pass is requested while another is
// still running. The caller should wait; results of a later pass supersede
// an earlier one through de-duplication anyway.
var ErrPassInFlight = errors.New("a sync pass is already in flight")

// DefaultQuery scopes a pass when the caller supplies no filter: browse
// archived mail, keeping the dashboard query separate from the inbox.
const DefaultQuery = "-in:inbox"

// DefaultPageSize bounds one list call.
const DefaultPageSize = 25

// PassSummary reports what one triage pass did.
type PassSummary struct {
	Listed  int // message refs returned by the list call
	Fetched int // messages fetched and normalized
	Skipped int // messages skipped due to fetch failure
	Matched int // rule matches across all emails
	Applied int // actions that changed an email
	Errors  int // evaluation or action failures (isolated, non-fatal)
}

// Controller runs triage passes over a single mailbox. All processing within
// a pass is sequential: rule actions mutate shared email state that must be
// read-after-write consistent across rules.
type Controller struct {
	gateway   provider.MailGateway
	ruleStore store.RuleStore
	evaluator *rules.Evaluator
	executor  *rules.Executor
	log       *slog.Logger

	pageSize int

	state         State
	inFlight      bool
	emails        []domain.Email
	nextPageToken string
	lastQuery     string
}

// NewController wires a controller from its collaborators. pageSize <= 0
// selects the default.
func NewController(gateway provider.MailGateway, ruleStore store.RuleStore, evaluator *rules.Evaluator, executor *rules.Executor, pageSize int, log *slog.Logger) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		gateway:   gateway,
		ruleStore: ruleStore,
		evaluator: evaluator,
		executor:  executor,
		log:       log,
		pageSize:  pageSize,
	}
}

// State returns the controller's current phase.
func (c *Controller) State() State { return c.state }

// Emails returns the in-memory email window in list order.
func (c *Controller) Emails() []domain.Email { return c.emails }

// HasMore reports whether a continuation token is pending.
func (c *Controller) HasMore() bool { return c.nextPageToken != "" }

// Sync runs a fresh triage pass: the first page of the query replaces the
// in-memory set. An empty query selects DefaultQuery.
func (c *Controller) Sync(ctx context.Context, query string) (PassSummary, error) {
	if query == "" {
		query = DefaultQuery
	}
	c.lastQuery = query
	return c.run(ctx, query, "", true)
}

// LoadMore continues the previous pass with its continuation token, merging
// the new page into the in-memory set by ID. Calling it with no pending
// token is an error.
func (c *Controller) LoadMore(ctx context.Context) (PassSummary, error) {
	if c.nextPageToken == "" {
		return PassSummary{}, fmt.Errorf("no further pages to load")
	}
	return c.run(ctx, c.lastQuery, c.nextPageToken, false)
}

func (c *Controller) run(ctx context.Context, query, pageToken string, replace bool) (PassSummary, error) {
	if c.inFlight {
		return PassSummary{}, ErrPassInFlight
	}
	c.inFlight = true
	defer func() {
		c.inFlight = false
		c.state = StateIdle
	}()

	var summary PassSummary

	// Phase 1: list message IDs. A list failure aborts the whole pass and is
	// reported once.
	c.state = StateListingIDs
	refs, next, err := c.gateway.ListMessages(ctx, query, pageToken, c.pageSize)
	if err != nil {
		return summary, fmt.Errorf("failed to list messages: %w", err)
	}
	summary.Listed = len(refs)

	// Phase 2: fetch details. A per-message failure skips that message.
	c.state = StateFetchingDetails
	fetched := make([]domain.Email, 0, len(refs))
	for _, ref := range refs {
		email, err := c.gateway.GetMessage(ctx, ref.ID)
		if err != nil {
			c.log.Warn("skipping message: fetch failed", "message", ref.ID, "error", err)
			summary.Skipped++
			continue
		}
		fetched = append(fetched, *email)
	}
	summary.Fetched = len(fetched)

	// Phase 3: apply rules sequentially per email, each action feeding the
	// next rule's input.
	c.state = StateApplyingRules
	ruleList, err := c.ruleStore.ListRules(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load rules: %w", err)
	}
	for i := range fetched {
		fetched[i] = c.applyRules(ctx, fetched[i], ruleList, &summary)
	}

	if replace {
		c.emails = fetched
	} else {
		c.emails = mergeByID(c.emails, fetched)
	}
	c.nextPageToken = next

	c.log.Info("triage pass complete",
		"listed", summary.Listed,
		"fetched", summary.Fetched,
		"skipped", summary.Skipped,
		"matched", summary.Matched,
		"applied", summary.Applied,
		"errors", summary.Errors,
	)
	return summary, nil
}

// applyRules runs the ordered rule list against one email. Failures are
// isolated per rule: an evaluation or action error is counted and the
// remaining rules still run against the current snapshot.
func (c *Controller) applyRules(ctx context.Context, email domain.Email, ruleList []domain.Rule, summary *PassSummary) domain.Email {
	current := email
	for _, rule := range ruleList {
		matched, err := c.evaluator.Evaluate(ctx, &current, rule)
		if err != nil {
			c.log.Warn("rule evaluation failed", "rule", rule.Name, "message", current.ID, "error", err)
			summary.Errors++
			continue
		}
		if !matched {
			continue
		}
		summary.Matched++

		updated, changed, err := c.executor.Apply(ctx, rule, current)
		if err != nil {
			c.log.Warn("rule action failed", "rule", rule.Name, "message", current.ID, "error", err)
			summary.Errors++
			continue
		}
		current = updated
		if changed {
			summary.Applied++
		}
	}
	return current
}

// mergeByID unions the new page into the existing set, preferring the newly
// fetched record since it reflects rule actions applied during this fetch.
// Existing order is kept; genuinely new emails are appended.
func mergeByID(existing, fresh []domain.Email) []domain.Email {
	index := make(map[string]int, len(existing))
	for i, e := range existing {
		index[e.ID] = i
	}
	merged := append([]domain.Email(nil), existing...)
	for _, e := range fresh {
		if i, ok := index[e.ID]; ok {
			merged[i] = e
			continue
		}
		index[e.ID] = len(merged)
		merged = append(merged, e)
	}
	return merged
}
