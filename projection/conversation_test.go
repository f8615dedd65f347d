package projection

import (
	"testing"
	"time"

	"chatline/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func message(sender, recipient, body string, offset time.Duration) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Sender:    sender,
		Recipient: recipient,
		Body:      body,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(offset),
	}
}

func TestForUser_KeepsOnlyVisibleMessages(t *testing.T) {
	req := require.New(t)
	log := []domain.Message{
		message("alice", "bob", "hi bob", 0),
		message("bob", "alice", "hi alice", time.Second),
		message("bob", "clara", "secret", 2*time.Second),
		message("clara", domain.Broadcast, "hello everyone", 3*time.Second),
	}

	visible := ForUser(log, "alice")
	req.Len(visible, 3)
	req.Equal("hi bob", visible[0].Body)
	req.Equal("hi alice", visible[1].Body)
	req.Equal("hello everyone", visible[2].Body)
}

func TestForUser_UnknownViewerSeesOnlyBroadcasts(t *testing.T) {
	req := require.New(t)
	log := []domain.Message{
		message("alice", "bob", "hi bob", 0),
	}

	req.Empty(ForUser(log, "carol"))

	log = append(log, message("alice", domain.Broadcast, "to all", time.Second))
	visible := ForUser(log, "carol")
	req.Len(visible, 1)
	req.Equal("to all", visible[0].Body)
}

func TestForUser_PreservesOrdering(t *testing.T) {
	req := require.New(t)
	log := []domain.Message{
		message("alice", "bob", "first", 0),
		message("bob", "alice", "second", time.Second),
		message("alice", "bob", "third", 2*time.Second),
	}

	visible := ForUser(log, "bob")
	req.Len(visible, 3)
	for i := 1; i < len(visible); i++ {
		req.False(visible[i].CreatedAt.Before(visible[i-1].CreatedAt))
	}
}

func TestBetweenPair_IsSymmetric(t *testing.T) {
	req := require.New(t)
	log := []domain.Message{
		message("alice", "bob", "a to b", 0),
		message("bob", "alice", "b to a", time.Second),
		message("alice", "clara", "a to c", 2*time.Second),
		message("clara", domain.Broadcast, "to all", 3*time.Second),
	}

	ab := BetweenPair(log, "alice", "bob")
	ba := BetweenPair(log, "bob", "alice")
	req.Equal(ab, ba)
	req.Len(ab, 2)
	req.Equal("a to b", ab[0].Body)
	req.Equal("b to a", ab[1].Body)
}

func TestBetweenPair_ExcludesBroadcasts(t *testing.T) {
	req := require.New(t)
	log := []domain.Message{
		message("alice", domain.Broadcast, "to all", 0),
		message("alice", "bob", "direct", time.Second),
	}

	pair := BetweenPair(log, "alice", "bob")
	req.Len(pair, 1)
	req.Equal("direct", pair[0].Body)
}
