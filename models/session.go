package models

import "time"

// Conversation states.
const (
	StateGreeting     = "greeting"
	StateFAQ          = "faq"
	StateBooking      = "booking"
	StateConfirmation = "confirmation"
	StateCompleted    = "completed"
)

// Booking steps within StateBooking.
const (
	StepName    = "name"
	StepService = "service"
	StepDate    = "date"
	StepTime    = "time"
)

// BookingDraft holds the fields collected step by step during the booking
// flow. Step names which field is asked for next; earlier fields are filled,
// later ones empty.
type BookingDraft struct {
	Step    string `json:"step,omitempty"`
	Name    string `json:"name,omitempty"`
	Service string `json:"service,omitempty"`
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
}

// ConversationSession is the per-user state machine snapshot held between
// messages. One session per user identifier; never shared across users.
type ConversationSession struct {
	UserID        string       `json:"userId"`
	State         string       `json:"state"`
	Draft         BookingDraft `json:"draft,omitzero"`
	LastMessageAt time.Time    `json:"lastMessageAt"`
}

// NewConversationSession returns a fresh session in the greeting state.
func NewConversationSession(userID string) *ConversationSession {
	return &ConversationSession{
		UserID: userID,
		State:  StateGreeting,
	}
}
