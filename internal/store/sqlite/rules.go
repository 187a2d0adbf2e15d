package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mailsift/mailsift/internal/domain"
)

// ListRules returns all rules in their stored evaluation order.
func (s *DB) ListRules(ctx context.Context) ([]domain.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, condition_type, condition_value, ai_prompt_target, action_type, action_value
		 FROM rules ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// CreateRule appends a rule at the end of the evaluation order.
func (s *DB) CreateRule(ctx context.Context, rule *domain.Rule) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rules (id, name, condition_type, condition_value, ai_prompt_target, action_type, action_value, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM rules))`,
		rule.ID, rule.Name, rule.ConditionType, rule.ConditionValue,
		string(rule.AIPromptTarget), rule.ActionType, rule.ActionValue,
	)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// DeleteRule removes a rule. Deleting an unknown ID is an error.
func (s *DB) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("rule %s not found", id)
	}
	return nil
}

// ReplaceRules swaps the whole rule list in one transaction, preserving the
// order of the given slice.
func (s *DB) ReplaceRules(ctx context.Context, rules []domain.Rule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rules`); err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}
	for i, r := range rules {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO rules (id, name, condition_type, condition_value, ai_prompt_target, action_type, action_value, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.ConditionType, r.ConditionValue,
			string(r.AIPromptTarget), r.ActionType, r.ActionValue, i+1,
		)
		if err != nil {
			return fmt.Errorf("failed to insert rule %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rules: %w", err)
	}
	return nil
}

func scanRule(rows *sql.Rows) (domain.Rule, error) {
	var (
		r      domain.Rule
		target sql.NullString
		value  sql.NullString
	)
	err := rows.Scan(&r.ID, &r.Name, &r.ConditionType, &r.ConditionValue, &target, &r.ActionType, &value)
	if err != nil {
		return domain.Rule{}, fmt.Errorf("failed to scan rule: %w", err)
	}
	r.AIPromptTarget = domain.PromptTarget(target.String)
	r.ActionValue = value.String
	r.Normalize()
	return r, nil
}
