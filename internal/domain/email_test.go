package domain

import "testing"

func TestSetLabelIDsDerivesFlags(t *testing.T) {
	tests := []struct {
		name         string
		labels       []string
		wantUnread   bool
		wantArchived bool
		wantTrashed  bool
	}{
		{"unread in inbox", []string{LabelUnread, LabelInbox}, true, false, false},
		{"read in inbox", []string{LabelInbox}, false, false, false},
		{"archived", []string{LabelUnread}, true, true, false},
		{"trashed", []string{LabelTrash}, false, true, true},
		{"empty set", nil, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Email
			e.SetLabelIDs(tt.labels)
			if e.IsUnread != tt.wantUnread {
				t.Errorf("IsUnread = %v, want %v", e.IsUnread, tt.wantUnread)
			}
			if e.IsArchived != tt.wantArchived {
				t.Errorf("IsArchived = %v, want %v", e.IsArchived, tt.wantArchived)
			}
			if e.IsTrashed != tt.wantTrashed {
				t.Errorf("IsTrashed = %v, want %v", e.IsTrashed, tt.wantTrashed)
			}
		})
	}
}

func TestBodyOrSnippet(t *testing.T) {
	e := Email{BodyPlain: "body", Snippet: "snippet"}
	if got := e.BodyOrSnippet(); got != "body" {
		t.Errorf("BodyOrSnippet = %q, want body when present", got)
	}

	e.BodyPlain = ""
	if got := e.BodyOrSnippet(); got != "snippet" {
		t.Errorf("BodyOrSnippet = %q, want snippet fallback", got)
	}
}

func TestCloneDoesNotAliasLabels(t *testing.T) {
	var e Email
	e.SetLabelIDs([]string{LabelUnread, LabelInbox})

	c := e.Clone()
	c.SetLabelIDs([]string{LabelInbox})
	c.LabelIDs[0] = "MUTATED"

	if e.LabelIDs[0] != LabelUnread {
		t.Errorf("clone mutation leaked into the original: %v", e.LabelIDs)
	}
	if !e.IsUnread {
		t.Error("original flags changed after clone mutation")
	}
}
