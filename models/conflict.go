package models

// Conflict categories.
const (
	ConflictExistingAppointment = "existing_appointment"
	ConflictCalendar            = "calendar_conflict"
	ConflictBusinessRule        = "business_rule"
)

// Suggestion priorities, best first.
const (
	SuggestionPreferred      = "preferred"
	SuggestionAvailable      = "available"
	SuggestionAlternativeDay = "alternative_day"
)

// Suggestion is one ranked alternative slot offered when a candidate
// conflicts.
type Suggestion struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Reason   string `json:"reason"`
	Priority string `json:"priority"`
}

// ConflictReport is the verdict for a candidate (date, time, service).
// It is produced and consumed within a single resolution call, never stored.
type ConflictReport struct {
	HasConflict  bool         `json:"hasConflict"`
	ConflictType string       `json:"conflictType,omitempty"`
	Details      []string     `json:"details,omitempty"`
	Suggestions  []Suggestion `json:"suggestions,omitempty"`
}

// Add records a conflict detail under the given category. The first category
// recorded wins; later details keep accumulating.
func (r *ConflictReport) Add(conflictType string, details ...string) {
	r.HasConflict = true
	if r.ConflictType == "" {
		r.ConflictType = conflictType
	}
	r.Details = append(r.Details, details...)
}
