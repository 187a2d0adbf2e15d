package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mailsift/mailsift/internal/domain"
	"github.com/mailsift/mailsift/internal/provider"
)

// Reconciler applies user-initiated toggles to an email set optimistically:
// the local copy flips first, the remote call follows, and a remote failure
// restores the pre-toggle snapshot so the caller never shows state the
// server rejected. Trash transitions are the exception: they apply locally
// only after the remote call confirms.
type Reconciler struct {
	gateway provider.MailGateway
	log     *slog.Logger
}

// NewReconciler creates a reconciler over the given gateway.
func NewReconciler(gateway provider.MailGateway, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{gateway: gateway, log: log}
}

// ToggleRead flips the unread state of the email with the given ID and
// returns the updated set. On remote failure the original set is returned
// along with the error.
func (r *Reconciler) ToggleRead(ctx context.Context, emails []domain.Email, id string) ([]domain.Email, error) {
	i, err := findEmail(emails, id)
	if err != nil {
		return emails, err
	}

	var add, remove []string
	if emails[i].IsUnread {
		remove = []string{domain.LabelUnread}
	} else {
		add = []string{domain.LabelUnread}
	}
	return r.toggle(ctx, emails, i, add, remove)
}

// ToggleArchive moves the email with the given ID out of the inbox, or back
// into it, and returns the updated set.
func (r *Reconciler) ToggleArchive(ctx context.Context, emails []domain.Email, id string) ([]domain.Email, error) {
	i, err := findEmail(emails, id)
	if err != nil {
		return emails, err
	}

	var add, remove []string
	if emails[i].IsArchived {
		add = []string{domain.LabelInbox}
	} else {
		remove = []string{domain.LabelInbox}
	}
	return r.toggle(ctx, emails, i, add, remove)
}

// toggle runs the optimistic flip: snapshot, local apply, remote call,
// commit-or-rollback. The gateway's returned label set is authoritative and
// replaces the optimistic guess on success.
func (r *Reconciler) toggle(ctx context.Context, emails []domain.Email, i int, add, remove []string) ([]domain.Email, error) {
	snapshot := cloneSet(emails)

	updated := cloneSet(emails)
	updated[i].SetLabelIDs(applyDelta(updated[i].LabelIDs, add, remove))

	confirmed, err := r.gateway.ModifyMessage(ctx, updated[i].ID, add, remove)
	if err != nil {
		r.log.Warn("toggle rolled back: remote update failed", "message", updated[i].ID, "error", err)
		return snapshot, fmt.Errorf("failed to update message %s: %w", updated[i].ID, err)
	}
	updated[i].SetLabelIDs(confirmed)
	return updated, nil
}

// ToggleTrash trashes the email with the given ID, or restores it to the
// inbox if already trashed. Unlike the other toggles there is no optimistic
// step: the local set changes only after the remote call confirms.
func (r *Reconciler) ToggleTrash(ctx context.Context, emails []domain.Email, id string) ([]domain.Email, error) {
	i, err := findEmail(emails, id)
	if err != nil {
		return emails, err
	}

	var confirmed []string
	if emails[i].IsTrashed {
		if confirmed, err = r.gateway.UntrashMessage(ctx, id); err != nil {
			return emails, fmt.Errorf("failed to restore message %s: %w", id, err)
		}
		// Untrash alone leaves the message outside the inbox; restore it
		// there so the user can find it again.
		if confirmed, err = r.gateway.ModifyMessage(ctx, id, []string{domain.LabelInbox}, nil); err != nil {
			return emails, fmt.Errorf("failed to restore message %s to inbox: %w", id, err)
		}
	} else {
		if confirmed, err = r.gateway.TrashMessage(ctx, id); err != nil {
			return emails, fmt.Errorf("failed to trash message %s: %w", id, err)
		}
	}

	updated := cloneSet(emails)
	updated[i].SetLabelIDs(confirmed)
	return updated, nil
}

func findEmail(emails []domain.Email, id string) (int, error) {
	for i := range emails {
		if emails[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("message %s not in the current view", id)
}

func cloneSet(emails []domain.Email) []domain.Email {
	out := make([]domain.Email, len(emails))
	for i := range emails {
		out[i] = emails[i].Clone()
	}
	return out
}

// applyDelta computes the optimistic label set before the server answers:
// removals drop matching IDs, additions append missing ones.
func applyDelta(labels, add, remove []string) []string {
	out := make([]string, 0, len(labels)+len(add))
	for _, l := range labels {
		removed := false
		for _, rm := range remove {
			if l == rm {
				removed = true
				break
			}
		}
		if !removed {
			out = append(out, l)
		}
	}
	for _, a := range add {
		present := false
		for _, l := range out {
			if l == a {
				present = true
				break
			}
		}
		if !present {
			out = append(out, a)
		}
	}
	return out
}
