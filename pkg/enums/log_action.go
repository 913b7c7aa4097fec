package enums

import "fmt"

// LogAction identifies the kind of stock mutation an audit entry records.
type LogAction string

const (
	LogActionTake    LogAction = "TAKE"
	LogActionRestock LogAction = "RESTOCK"
	LogActionCreate  LogAction = "CREATE"
	LogActionUpdate  LogAction = "UPDATE"
	LogActionDelete  LogAction = "DELETE"
	LogActionReset   LogAction = "RESET"
)

var validLogActions = []LogAction{
	LogActionTake,
	LogActionRestock,
	LogActionCreate,
	LogActionUpdate,
	LogActionDelete,
	LogActionReset,
}

// IsValid reports whether the value matches a canonical log action.
func (a LogAction) IsValid() bool {
	for _, candidate := range validLogActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseLogAction converts raw input into LogAction.
func ParseLogAction(value string) (LogAction, error) {
	for _, candidate := range validLogActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid log action %q", value)
}

func (a LogAction) String() string {
	return string(a)
}
