package domain

// Email is a normalized, flat view of a provider message. The status flags
// IsUnread, IsArchived and IsTrashed are derived from LabelIDs membership and
// must be re-derived after every label mutation; they carry no independent
// state.
type Email struct {
	ID         string
	ThreadID   string
	Subject    string
	Sender     string
	Date       string // raw Date header value; provider format, not guaranteed parseable
	Snippet    string
	BodyPlain  string
	BodyHTML   string
	IsUnread   bool
	IsArchived bool
	IsTrashed  bool
	LabelIDs   []string
	Summary    string // set by a summarize action; never stored remotely
}

// HasLabel reports whether the given label ID is present.
func (e *Email) HasLabel(id string) bool {
	for _, l := range e.LabelIDs {
		if l == id {
			return true
		}
	}
	return false
}

// SetLabelIDs replaces the label set and re-derives the status flags.
// Callers must use this (never assign LabelIDs directly) so the flags stay
// consistent with the labels.
func (e *Email) SetLabelIDs(ids []string) {
	e.LabelIDs = ids
	e.IsUnread = e.HasLabel(LabelUnread)
	e.IsArchived = !e.HasLabel(LabelInbox)
	e.IsTrashed = e.HasLabel(LabelTrash)
}

// BodyOrSnippet returns the plain-text body, falling back to the snippet
// when no text/plain part was found. This is the text rules evaluate against.
func (e *Email) BodyOrSnippet() string {
	if e.BodyPlain != "" {
		return e.BodyPlain
	}
	return e.Snippet
}

// Clone returns a copy of the email with its own label slice, so mutations
// on the copy never alias the original.
func (e Email) Clone() Email {
	out := e
	out.LabelIDs = append([]string(nil), e.LabelIDs...)
	return out
}
