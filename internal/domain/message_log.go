package domain

import "time"

// MessageType differentiates notification log entries.
type MessageType string

const (
	MessageTypeEntry  MessageType = "entry"
	MessageTypeCall   MessageType = "call"
	MessageTypeCancel MessageType = "cancel"
)

// MessageLog is a write-only audit record of an attempted notification.
// Absence of a log row is never an error for the ticket transition itself.
type MessageLog struct {
	ID          string
	TicketID    string
	MessageType MessageType
	Content     string
	SentAt      time.Time
}
