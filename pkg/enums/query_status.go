package enums

import "fmt"

// QueryStatus tracks a customer query through triage.
type QueryStatus string

const (
	QueryStatusOpen     QueryStatus = "open"
	QueryStatusResolved QueryStatus = "resolved"
)

var validQueryStatuses = []QueryStatus{
	QueryStatusOpen,
	QueryStatusResolved,
}

// String implements fmt.Stringer.
func (q QueryStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QueryStatus.
func (q QueryStatus) IsValid() bool {
	for _, candidate := range validQueryStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQueryStatus converts raw input into a QueryStatus.
func ParseQueryStatus(value string) (QueryStatus, error) {
	for _, candidate := range validQueryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid query status %q", value)
}
