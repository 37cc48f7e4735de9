package valueobjects

import "fmt"

type Status string

const (
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusThrottled Status = "throttled"
)

var validStatuses = map[Status]bool{
	StatusSent:      true,
	StatusFailed:    true,
	StatusThrottled: true,
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

func (s Status) IsSent() bool {
	return s == StatusSent
}

func NewStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid delivery status: %s", s)
	}
	return st, nil
}
