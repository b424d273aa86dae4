package models

// TaskStatus values are stored as-is in the tasks.status column.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusPaused     = "PAUSED"
	StatusResumed    = "RESUMED"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// ActiveStatuses are the non-terminal states. PAUSED counts as active for
// dashboard purposes even though its interval is closed.
var ActiveStatuses = []string{StatusInProgress, StatusResumed, StatusPaused}

// TerminalStatuses have no outgoing transitions.
var TerminalStatuses = []string{StatusCompleted, StatusCancelled}

var legalTransitions = map[string][]string{
	StatusInProgress: {StatusPaused, StatusCancelled, StatusCompleted},
	StatusPaused:     {StatusResumed, StatusCancelled, StatusCompleted},
	StatusResumed:    {StatusPaused, StatusCancelled, StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// IsValidStatus reports whether s is one of the five known statuses.
func IsValidStatus(s string) bool {
	_, ok := legalTransitions[s]
	return ok
}

// CanTransition reports whether a task in state from may move to state to.
// IN_PROGRESS is only ever entered at creation, never by transition.
func CanTransition(from, to string) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s is COMPLETED or CANCELLED.
func IsTerminal(s string) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ClosesInterval reports whether entering status s closes the currently open
// time log. RESUMED opens a new one instead.
func ClosesInterval(s string) bool {
	return s == StatusPaused || s == StatusCancelled || s == StatusCompleted
}

// DisplayStatus maps a stored status to its display bucket. RESUMED collapses
// into "In Progress" so all consumers share one definition.
func DisplayStatus(s string) string {
	switch s {
	case StatusInProgress, StatusResumed:
		return "In Progress"
	case StatusPaused:
		return "Paused"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return s
	}
}
