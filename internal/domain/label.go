package domain

type LabelType string

const (
	LabelTypeSystem LabelType = "system"
	LabelTypeUser   LabelType = "user"
)

// Label is a provider-side tag on a message. Certain system labels double as
// status flags (INBOX, UNREAD, TRASH).
type Label struct {
	ID   string
	Name string
	Type LabelType
}

const (
	LabelInbox  = "INBOX"
	LabelUnread = "UNREAD"
	LabelTrash  = "TRASH"
	LabelSpam   = "SPAM"
	LabelSent   = "SENT"
)
