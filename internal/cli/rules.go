package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mailsift/mailsift/internal/domain"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage triage rules",
	}
	cmd.AddCommand(newRulesAddCmd())
	cmd.AddCommand(newRulesListCmd())
	cmd.AddCommand(newRulesDeleteCmd())
	cmd.AddCommand(newRulesImportCmd())
	cmd.AddCommand(newRulesExportCmd())
	return cmd
}

func newRulesAddCmd() *cobra.Command {
	var (
		nameFlag      string
		conditionFlag string
		valueFlag     string
		targetFlag    string
		actionFlag    string
		labelFlag     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a triage rule",
		Example: `  mailsift rules add --name "From boss" --condition sender --value boss@example.com --action markRead
  mailsift rules add --name "Invoices" --condition bodyKeywords --value "invoice, due" --action addLabel --label Billing
  mailsift rules add --name "Newsletters" --condition aiPrompt --value "Is this a newsletter?" --action archive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rule := domain.Rule{
				ID:             uuid.NewString(),
				Name:           nameFlag,
				ConditionType:  domain.ConditionType(conditionFlag),
				ConditionValue: valueFlag,
				AIPromptTarget: domain.PromptTarget(targetFlag),
				ActionType:     domain.ActionType(actionFlag),
				ActionValue:    labelFlag,
			}
			rule.Normalize()
			if err := rule.Validate(); err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.CreateRule(cmd.Context(), &rule); err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "add", RuleID: rule.ID})
			}

			fmt.Printf("Rule added: %s\n", rule)
			return nil
		},
	}

	cmd.Flags().StringVar(&nameFlag, "name", "", "rule name")
	cmd.Flags().StringVar(&conditionFlag, "condition", "", "condition type (sender, bodyKeywords, aiPrompt)")
	cmd.Flags().StringVar(&valueFlag, "value", "", "condition value")
	cmd.Flags().StringVar(&targetFlag, "target", "", "aiPrompt target (sender, subject, body; defaults to body)")
	cmd.Flags().StringVar(&actionFlag, "action", "", "action type (markRead, archive, addLabel, summarize)")
	cmd.Flags().StringVar(&labelFlag, "label", "", "label name for addLabel actions")
	return cmd
}

func newRulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List triage rules in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ruleList, err := db.ListRules(cmd.Context())
			if err != nil {
				return err
			}

			if jsonFlag {
				if ruleList == nil {
					ruleList = []domain.Rule{}
				}
				return printJSON(ruleList)
			}

			if len(ruleList) == 0 {
				fmt.Println("No rules configured. Run 'mailsift rules add' to add one.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tRULE")
			for _, r := range ruleList {
				fmt.Fprintf(w, "%s\t%s\n", r.ID, r)
			}
			return w.Flush()
		},
	}
}

func newRulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete a triage rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DeleteRule(cmd.Context(), args[0]); err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "delete", RuleID: args[0]})
			}

			fmt.Printf("Rule deleted: %s\n", args[0])
			return nil
		},
	}
}

func newRulesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import rules from a JSON file, replacing the current list",
		Long:  "Import reads a JSON array of rules (use '-' for stdin) and replaces\nthe current rule list. Rules missing an ID are assigned one.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read rules file: %w", err)
			}

			var ruleList []domain.Rule
			if err := json.Unmarshal(data, &ruleList); err != nil {
				return fmt.Errorf("failed to parse rules file: %w", err)
			}

			for i := range ruleList {
				if ruleList[i].ID == "" {
					ruleList[i].ID = uuid.NewString()
				}
				ruleList[i].Normalize()
				if err := ruleList[i].Validate(); err != nil {
					return fmt.Errorf("invalid rule at index %d: %w", i, err)
				}
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.ReplaceRules(cmd.Context(), ruleList); err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "import"})
			}

			fmt.Printf("Imported %d rules.\n", len(ruleList))
			return nil
		},
	}
}

func newRulesExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export rules as JSON to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ruleList, err := db.ListRules(cmd.Context())
			if err != nil {
				return err
			}
			if ruleList == nil {
				ruleList = []domain.Rule{}
			}
			return printJSON(ruleList)
		},
	}
}
