package store

import (
	"context"

	"github.com/mailsift/mailsift/internal/domain"
)

// RuleStore is the engine's read/replace access to the ordered user rule
// list. The engine never mutates rules in place; edits are delete-and-
// recreate through this interface.
type RuleStore interface {
	ListRules(ctx context.Context) ([]domain.Rule, error)
	CreateRule(ctx context.Context, rule *domain.Rule) error
	DeleteRule(ctx context.Context, id string) error
	ReplaceRules(ctx context.Context, rules []domain.Rule) error
}

// Store defines the persistence surface for the application.
type Store interface {
	RuleStore

	// Accounts
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}
