package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mailsift/mailsift/internal/domain"
)

func newSyncCmd() *cobra.Command {
	var (
		accountFlag string
		queryFlag   string
		pagesFlag   int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a triage pass over the mailbox",
		Long:  "Sync lists messages matching the query (default \"-in:inbox\"), fetches\ntheir details, and applies the configured rules to each. Additional pages\nare loaded and merged when --pages is greater than one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, db, err := setupController(accountFlag)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			summary, err := ctrl.Sync(ctx, queryFlag)
			if err != nil {
				return err
			}

			for page := 1; page < pagesFlag && ctrl.HasMore(); page++ {
				more, err := ctrl.LoadMore(ctx)
				if err != nil {
					return err
				}
				summary.Listed += more.Listed
				summary.Fetched += more.Fetched
				summary.Skipped += more.Skipped
				summary.Matched += more.Matched
				summary.Applied += more.Applied
				summary.Errors += more.Errors
			}

			if jsonFlag {
				return printJSON(toJSONPass(summary, ctrl.HasMore(), ctrl.Emails()))
			}

			printEmails(ctrl.Emails())
			fmt.Printf("\nPass complete: %d listed, %d fetched, %d skipped, %d matched, %d applied, %d errors.\n",
				summary.Listed, summary.Fetched, summary.Skipped, summary.Matched, summary.Applied, summary.Errors)
			if ctrl.HasMore() {
				fmt.Println("More messages available; re-run with a higher --pages to load them.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountFlag, "account", "", "account ID (defaults to config default or first account)")
	cmd.Flags().StringVar(&queryFlag, "query", "", "Gmail search query (defaults to \"-in:inbox\")")
	cmd.Flags().IntVar(&pagesFlag, "pages", 1, "number of pages to load")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var (
		accountFlag  string
		queryFlag    string
		intervalFlag string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the mailbox and apply rules continuously",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if intervalFlag != "" {
				cfg.Sync.Interval = intervalFlag
			}
			interval, err := cfg.SyncInterval()
			if err != nil {
				return err
			}

			query := queryFlag
			if query == "" {
				query = cfg.Sync.Query
			}

			ctrl, db, err := setupController(accountFlag)
			if err != nil {
				return err
			}
			defer db.Close()

			if !jsonFlag {
				fmt.Printf("Watching mailbox every %s. Press Ctrl+C to stop.\n", interval)
			}
			err = ctrl.Watch(cmd.Context(), interval, query)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&accountFlag, "account", "", "account ID (defaults to config default or first account)")
	cmd.Flags().StringVar(&queryFlag, "query", "", "Gmail search query (defaults to config or \"-in:inbox\")")
	cmd.Flags().StringVar(&intervalFlag, "interval", "", "polling interval (e.g. 30s, 5m; defaults to config)")
	return cmd
}

// printEmails renders the email window as a table.
func printEmails(emails []domain.Email) {
	if len(emails) == 0 {
		fmt.Println("No messages matched the query.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSENDER\tSUBJECT")
	for _, e := range emails {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, statusString(e), e.Sender, e.Subject)
	}
	w.Flush()
}

func statusString(e domain.Email) string {
	switch {
	case e.IsTrashed:
		return "trashed"
	case e.IsUnread:
		return "unread"
	default:
		return "read"
	}
}
