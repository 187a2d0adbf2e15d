package rules

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mailsift/mailsift/internal/domain"
	"github.com/mailsift/mailsift/internal/provider"
)

// fakeGateway counts modify calls and returns a scripted post-state.
type fakeGateway struct {
	modifyCalls int
	lastAdd     []string
	lastRemove  []string
	returnIDs   []string
	err         error
}

func (f *fakeGateway) Authenticate(ctx context.Context) error { return nil }
func (f *fakeGateway) IsAuthenticated() bool                  { return true }

func (f *fakeGateway) ListMessages(ctx context.Context, query, pageToken string, maxResults int) ([]provider.MessageRef, string, error) {
	return nil, "", nil
}

func (f *fakeGateway) GetMessage(ctx context.Context, id string) (*domain.Email, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGateway) ModifyMessage(ctx context.Context, id string, add, remove []string) ([]string, error) {
	f.modifyCalls++
	f.lastAdd = add
	f.lastRemove = remove
	if f.err != nil {
		return nil, f.err
	}
	return f.returnIDs, nil
}

func (f *fakeGateway) TrashMessage(ctx context.Context, id string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGateway) UntrashMessage(ctx context.Context, id string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGateway) ListLabels(ctx context.Context) ([]domain.Label, error) { return nil, nil }

func (f *fakeGateway) CreateLabel(ctx context.Context, name string) (domain.Label, error) {
	return domain.Label{}, errors.New("not implemented")
}

var _ provider.MailGateway = (*fakeGateway)(nil)

// fakeResolver maps label names to IDs without a remote.
type fakeResolver struct {
	ids map[string]string
	err error
}

func (f *fakeResolver) ResolveOrCreate(ctx context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.ids[name], nil
}

func unreadInboxEmail() domain.Email {
	e := domain.Email{ID: "m1", BodyPlain: strings.Repeat("long enough body text ", 5)}
	e.SetLabelIDs([]string{domain.LabelUnread, domain.LabelInbox})
	return e
}

func TestApplyMarkRead(t *testing.T) {
	gw := &fakeGateway{returnIDs: []string{domain.LabelInbox}}
	ex := NewExecutor(gw, nil, nil, 0, nil)

	email := unreadInboxEmail()
	updated, changed, err := ex.Apply(context.Background(), domain.Rule{ActionType: domain.ActionMarkRead}, email)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !changed {
		t.Error("changed = false, want true")
	}
	if updated.IsUnread {
		t.Error("email still unread after markRead")
	}
	if len(gw.lastRemove) != 1 || gw.lastRemove[0] != domain.LabelUnread {
		t.Errorf("remove = %v, want [UNREAD]", gw.lastRemove)
	}
}

func TestApplyMarkReadIdempotent(t *testing.T) {
	gw := &fakeGateway{}
	ex := NewExecutor(gw, nil, nil, 0, nil)

	email := domain.Email{ID: "m1"}
	email.SetLabelIDs([]string{domain.LabelInbox})

	updated, changed, err := ex.Apply(context.Background(), domain.Rule{ActionType: domain.ActionMarkRead}, email)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if changed {
		t.Error("changed = true for already-read email")
	}
	if gw.modifyCalls != 0 {
		t.Errorf("gateway called %d times, want 0 for a no-op", gw.modifyCalls)
	}
	if updated.ID != email.ID {
		t.Error("no-op should return the input email")
	}
}

func TestApplyArchive(t *testing.T) {
	gw := &fakeGateway{returnIDs: []string{domain.LabelUnread}}
	ex := NewExecutor(gw, nil, nil, 0, nil)

	email := unreadInboxEmail()
	updated, changed, err := ex.Apply(context.Background(), domain.Rule{ActionType: domain.ActionArchive}, email)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !changed || !updated.IsArchived {
		t.Errorf("changed = %v, IsArchived = %v, want archived", changed, updated.IsArchived)
	}
	if len(gw.lastRemove) != 1 || gw.lastRemove[0] != domain.LabelInbox {
		t.Errorf("remove = %v, want [INBOX]", gw.lastRemove)
	}
}

func TestApplyArchiveIdempotent(t *testing.T) {
	gw := &fakeGateway{}
	ex := NewExecutor(gw, nil, nil, 0, nil)

	email := domain.Email{ID: "m1"}
	email.SetLabelIDs([]string{domain.LabelUnread}) // no INBOX: already archived

	_, changed, err := ex.Apply(context.Background(), domain.Rule{ActionType: domain.ActionArchive}, email)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if changed || gw.modifyCalls != 0 {
		t.Errorf("changed = %v, calls = %d, want no-op", changed, gw.modifyCalls)
	}
}

func TestApplyAddLabel(t *testing.T) {
	gw := &fakeGateway{returnIDs: []string{domain.LabelInbox, "Label_7"}}
	resolver := &fakeResolver{ids: map[string]string{"Receipts": "Label_7"}}
	ex := NewExecutor(gw, resolver, nil, 0, nil)

	email := domain.Email{ID: "m1"}
	email.SetLabelIDs([]string{domain.LabelInbox})

	rule := domain.Rule{Name: "receipts", ActionType: domain.ActionAddLabel, ActionValue: "Receipts"}
	updated, changed, err := ex.Apply(context.Background(), rule, email)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !changed || !updated.HasLabel("Label_7") {
		t.Errorf("changed = %v, labels = %v, want Label_7 added", changed, updated.LabelIDs)
	}
	if len(gw.lastAdd) != 1 || gw.lastAdd[0] != "Label_7" {
		t.Errorf("add = %v, want [Label_7]", gw.lastAdd)
	}
}

func TestApplyAddLabelIdempotent(t *testing.T) {
	gw := &fakeGateway{}
	resolver := &fakeResolver{ids: map[string]string{"Receipts": "Label_7"}}
	ex := NewExecutor(gw, resolver, nil, 0, nil)

	email := domain.Email{ID: "m1"}
	email.SetLabelIDs([]string{domain.LabelInbox, "Label_7"})

	rule := domain.Rule{Name: "receipts", ActionType: domain.ActionAddLabel, ActionValue: "Receipts"}
	_, changed, err := ex.Apply(context.Background(), rule, email)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if changed || gw.modifyCalls != 0 {
		t.Errorf("changed = %v, calls = %d, want no-op when label present", changed, gw.modifyCalls)
	}
}

func TestApplyAddLabelResolveFailure(t *testing.T) {
	gw := &fakeGateway{}
	resolver := &fakeResolver{err: errors.New("remote down")}
	ex := NewExecutor(gw, resolver, nil, 0, nil)

	email := unreadInboxEmail()
	rule := domain.Rule{Name: "receipts", ActionType: domain.ActionAddLabel, ActionValue: "Receipts"}
	updated, changed, err := ex.Apply(context.Background(), rule, email)
	if err == nil {
		t.Fatal("Apply returned nil error on resolve failure")
	}
	if changed {
		t.Error("changed = true on failure")
	}
	if updated.ID != email.ID || len(updated.LabelIDs) != len(email.LabelIDs) {
		t.Error("failed action should return the input email unmodified")
	}
	if gw.modifyCalls != 0 {
		t.Errorf("gateway called %d times after resolve failure, want 0", gw.modifyCalls)
	}
}

func TestApplySummarize(t *testing.T) {
	fc := &fakeClassifier{configured: true, summary: "a short summary"}
	ex := NewExecutor(&fakeGateway{}, nil, fc, 0, nil)

	email := unreadInboxEmail()
	updated, changed, err := ex.Apply(context.Background(), domain.Rule{Name: "s", ActionType: domain.ActionSummarize}, email)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !changed || updated.Summary != "a short summary" {
		t.Errorf("changed = %v, summary = %q", changed, updated.Summary)
	}
}

func TestApplySummarizeSkips(t *testing.T) {
	t.Run("existing summary", func(t *testing.T) {
		fc := &fakeClassifier{configured: true, summary: "new"}
		ex := NewExecutor(&fakeGateway{}, nil, fc, 0, nil)

		email := unreadInboxEmail()
		email.Summary = "existing"
		updated, changed, err := ex.Apply(context.Background(), domain.Rule{Name: "s", ActionType: domain.ActionSummarize}, email)
		if err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
		if changed || updated.Summary != "existing" || fc.calls != 0 {
			t.Errorf("changed = %v, summary = %q, calls = %d; want untouched no-op", changed, updated.Summary, fc.calls)
		}
	})

	t.Run("unconfigured classifier", func(t *testing.T) {
		fc := &fakeClassifier{configured: false}
		ex := NewExecutor(&fakeGateway{}, nil, fc, 0, nil)

		email := unreadInboxEmail()
		_, changed, err := ex.Apply(context.Background(), domain.Rule{Name: "s", ActionType: domain.ActionSummarize}, email)
		if err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
		if changed || fc.calls != 0 {
			t.Errorf("changed = %v, calls = %d; want skip without error", changed, fc.calls)
		}
	})

	t.Run("content too short", func(t *testing.T) {
		fc := &fakeClassifier{configured: true, summary: "new"}
		ex := NewExecutor(&fakeGateway{}, nil, fc, 0, nil)

		email := domain.Email{ID: "m1", BodyPlain: "short"}
		_, changed, err := ex.Apply(context.Background(), domain.Rule{Name: "s", ActionType: domain.ActionSummarize}, email)
		if err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
		if changed || fc.calls != 0 {
			t.Errorf("changed = %v, calls = %d; want skip for short content", changed, fc.calls)
		}
	})
}

func TestApplyUnknownAction(t *testing.T) {
	ex := NewExecutor(&fakeGateway{}, nil, nil, 0, nil)
	_, _, err := ex.Apply(context.Background(), domain.Rule{ActionType: "snooze"}, domain.Email{})
	if err == nil {
		t.Fatal("Apply accepted an unknown action type")
	}
}

func TestApplyModifyFailureReturnsInput(t *testing.T) {
	gw := &fakeGateway{err: errors.New("rate limited")}
	ex := NewExecutor(gw, nil, nil, 0, nil)

	email := unreadInboxEmail()
	updated, changed, err := ex.Apply(context.Background(), domain.Rule{ActionType: domain.ActionMarkRead}, email)
	if err == nil {
		t.Fatal("Apply returned nil error on gateway failure")
	}
	if changed {
		t.Error("changed = true on failure")
	}
	if !updated.IsUnread {
		t.Error("failed action should leave the email unchanged")
	}
}
