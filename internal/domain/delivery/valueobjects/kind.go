package valueobjects

import "fmt"

// Kind is the category of a submission and selects its message title.
type Kind string

const (
	KindContact   Kind = "contact"
	KindBugReport Kind = "bug_report"
	KindFeedback  Kind = "feedback"
	KindEvent     Kind = "event"
)

var validKinds = map[Kind]bool{
	KindContact:   true,
	KindBugReport: true,
	KindFeedback:  true,
	KindEvent:     true,
}

var kindTitles = map[Kind]string{
	KindContact:   "📬 New contact message",
	KindBugReport: "🐞 New bug report",
	KindFeedback:  "💬 New feedback",
	KindEvent:     "📣 New event",
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	return validKinds[k]
}

// Title returns the emoji-prefixed heading used in the Telegram message.
func (k Kind) Title() string {
	if title, ok := kindTitles[k]; ok {
		return title
	}
	return "🔔 New notification"
}

func NewKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid submission kind: %s", s)
	}
	return k, nil
}
