// Package domain contains core concepts of the messaging system.
// This file defines Message records and their visibility rules.
// Messages are immutable once appended to the log.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Broadcast is the recipient sentinel marking a message addressed to everyone.
const Broadcast = "*"

// Mode selects how a deployment routes messages.
type Mode string

const (
	// ModeDirected delivers each message to exactly one recipient.
	ModeDirected Mode = "directed"
	// ModeBroadcast puts every message on the global feed.
	ModeBroadcast Mode = "broadcast"
)

// Message represents an immutable chat record.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Body      string    `json:"body"`
	Lang      string    `json:"lang,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsBroadcast reports whether the message is addressed to everyone.
func (m Message) IsBroadcast() bool {
	return m.Recipient == Broadcast
}

// VisibleTo reports whether the given user may read the message.
// A broadcast is visible to all, a directed message only to its two parties.
func (m Message) VisibleTo(username string) bool {
	if m.IsBroadcast() {
		return true
	}
	return m.Sender == username || m.Recipient == username
}
