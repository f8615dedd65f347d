// Package projection derives read-only conversation views from the
// message log. Projections are pure and computed fresh on every call;
// at this scale a filtered pass beats maintaining per-pair indexes.
// Nothing here performs I/O or mutates the log.
package projection

import (
	"chatline/domain"

	"github.com/samber/lo"
)

// ForUser keeps the messages visible to the given viewer: everything the
// viewer sent or received, broadcasts included. Input order is preserved,
// so a log sorted by (createdAt, id) stays sorted.
func ForUser(log []domain.Message, username string) []domain.Message {
	return lo.Filter(log, func(m domain.Message, _ int) bool {
		return m.Sender == username || m.Recipient == username || m.IsBroadcast()
	})
}

// BetweenPair keeps the directed messages exchanged between a and b, in
// either direction. Symmetric: BetweenPair(log, a, b) == BetweenPair(log, b, a).
func BetweenPair(log []domain.Message, a, b string) []domain.Message {
	return lo.Filter(log, func(m domain.Message, _ int) bool {
		return (m.Sender == a && m.Recipient == b) || (m.Sender == b && m.Recipient == a)
	})
}
