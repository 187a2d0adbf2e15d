package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mailsift/mailsift/internal/domain"
	"github.com/mailsift/mailsift/internal/engine"
)

func newMarkReadCmd() *cobra.Command {
	var accountFlag string
	var unreadFlag bool

	cmd := &cobra.Command{
		Use:   "mark-read <message-id>",
		Short: "Mark an email as read or unread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(cmd.Context(), accountFlag, args[0], "mark-read",
				func(e domain.Email) bool { return e.IsUnread == unreadFlag },
				func(ctx context.Context, r *engine.Reconciler, set []domain.Email, id string) ([]domain.Email, error) {
					return r.ToggleRead(ctx, set, id)
				})
		},
	}

	cmd.Flags().StringVar(&accountFlag, "account", "", "account ID")
	cmd.Flags().BoolVar(&unreadFlag, "unread", false, "mark as unread instead of read")
	return cmd
}

func newArchiveCmd() *cobra.Command {
	var accountFlag string
	var undoFlag bool

	cmd := &cobra.Command{
		Use:   "archive <message-id>",
		Short: "Archive an email (remove from Inbox)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(cmd.Context(), accountFlag, args[0], "archive",
				func(e domain.Email) bool { return e.IsArchived != undoFlag },
				func(ctx context.Context, r *engine.Reconciler, set []domain.Email, id string) ([]domain.Email, error) {
					return r.ToggleArchive(ctx, set, id)
				})
		},
	}

	cmd.Flags().StringVar(&accountFlag, "account", "", "account ID")
	cmd.Flags().BoolVar(&undoFlag, "undo", false, "move back to the inbox instead")
	return cmd
}

func newTrashCmd() *cobra.Command {
	var accountFlag string
	var undoFlag bool

	cmd := &cobra.Command{
		Use:   "trash <message-id>",
		Short: "Move an email to trash, or restore it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(cmd.Context(), accountFlag, args[0], "trash",
				func(e domain.Email) bool { return e.IsTrashed != undoFlag },
				func(ctx context.Context, r *engine.Reconciler, set []domain.Email, id string) ([]domain.Email, error) {
					return r.ToggleTrash(ctx, set, id)
				})
		},
	}

	cmd.Flags().StringVar(&accountFlag, "account", "", "account ID")
	cmd.Flags().BoolVar(&undoFlag, "undo", false, "restore from trash to the inbox")
	return cmd
}

// runToggle fetches the message, checks whether it is already in the desired
// state, and otherwise flips it through the reconciler.
func runToggle(
	ctx context.Context,
	accountFlag, messageID, action string,
	done func(domain.Email) bool,
	toggle func(context.Context, *engine.Reconciler, []domain.Email, string) ([]domain.Email, error),
) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	gateway, _, err := setupGateway(db, cfg, accountFlag)
	if err != nil {
		return err
	}

	email, err := gateway.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}

	if done(*email) {
		if jsonFlag {
			return printJSON(jsonAction{OK: true, Action: action, MessageID: messageID})
		}
		fmt.Println("No change needed.")
		return nil
	}

	recon := engine.NewReconciler(gateway, slog.Default())
	set, err := toggle(ctx, recon, []domain.Email{*email}, messageID)
	if err != nil {
		return err
	}

	if jsonFlag {
		return printJSON(toJSONEmails(set)[0])
	}

	fmt.Printf("Done: %s is now %s.\n", messageID, statusString(set[0]))
	return nil
}
