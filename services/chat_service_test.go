package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"chatline/domain"
	"chatline/errors"
	"chatline/mocks"
	"chatline/moderation"
	"chatline/observability"
	"chatline/search"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type chatServiceFixture struct {
	users    *mocks.MockIUserRepository
	messages *mocks.MockIMessageRepository
	service  *ChatService
}

func newChatServiceFixture(t *testing.T, mode domain.Mode, censoredWords []string) chatServiceFixture {
	t.Helper()
	req := require.New(t)
	ctrl := gomock.NewController(t)

	log := slog.Default()
	moderator, err := moderation.NewModerator(censoredWords, '*', log)
	req.NoError(err)

	index, err := search.OpenInMemory(log)
	req.NoError(err)
	t.Cleanup(func() { _ = index.Close() })

	monitor, err := observability.NewMonitor(log)
	req.NoError(err)

	users := mocks.NewMockIUserRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	return chatServiceFixture{
		users:    users,
		messages: messages,
		service:  NewChatService(users, messages, &moderator, index, monitor, mode, log),
	}
}

func echoAppend(_ context.Context, message domain.Message) (domain.Message, error) {
	message.ID = uuid.New()
	message.CreatedAt = time.Now().UTC()
	return message, nil
}

func TestChatService_Send_Directed(t *testing.T) {
	ctx := context.Background()

	t.Run("trims and stores a valid message", func(t *testing.T) {
		req := require.New(t)
		f := newChatServiceFixture(t, domain.ModeDirected, nil)

		f.messages.EXPECT().
			Append(ctx, gomock.Any()).
			DoAndReturn(echoAppend).
			Times(1)

		stored, err := f.service.Send(ctx, "alice", "bob", "  hi bob  ")

		req.NoError(err)
		req.Equal("hi bob", stored.Body)
		req.Equal("alice", stored.Sender)
		req.Equal("bob", stored.Recipient)
		req.NotEqual(uuid.Nil, stored.ID)
	})

	t.Run("rejects whitespace-only body without touching the log", func(t *testing.T) {
		req := require.New(t)
		f := newChatServiceFixture(t, domain.ModeDirected, nil)

		f.messages.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.service.Send(ctx, "alice", "bob", "   \t\n  ")

		req.ErrorIs(err, errors.ErrEmptyBody)
	})

	t.Run("rejects a missing recipient", func(t *testing.T) {
		req := require.New(t)
		f := newChatServiceFixture(t, domain.ModeDirected, nil)

		f.messages.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.service.Send(ctx, "alice", "", "hi")

		req.ErrorIs(err, errors.ErrMissingRecipient)
	})

	t.Run("rejects the broadcast sentinel as a recipient", func(t *testing.T) {
		req := require.New(t)
		f := newChatServiceFixture(t, domain.ModeDirected, nil)

		f.messages.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.service.Send(ctx, "alice", domain.Broadcast, "hi")

		req.ErrorIs(err, errors.ErrInvalidRequest)
	})

	t.Run("censors banned words before persisting", func(t *testing.T) {
		req := require.New(t)
		f := newChatServiceFixture(t, domain.ModeDirected, []string{"badger"})

		f.messages.EXPECT().
			Append(ctx, gomock.Any()).
			DoAndReturn(echoAppend).
			Times(1)

		stored, err := f.service.Send(ctx, "alice", "bob", "release the badger")

		req.NoError(err)
		req.Equal("release the ******", stored.Body)
	})
}

func TestChatService_Send_Broadcast(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newChatServiceFixture(t, domain.ModeBroadcast, nil)

	f.messages.EXPECT().
		Append(ctx, gomock.Any()).
		DoAndReturn(echoAppend).
		Times(1)

	// The recipient field is ignored: broadcast deployments force the sentinel.
	stored, err := f.service.Send(ctx, "alice", "bob", "hello everyone")

	req.NoError(err)
	req.Equal(domain.Broadcast, stored.Recipient)
	req.True(stored.IsBroadcast())
}

func TestChatService_Feed(t *testing.T) {
	ctx := context.Background()
	log := []domain.Message{
		{ID: uuid.New(), Sender: "alice", Recipient: "bob", Body: "hi bob"},
		{ID: uuid.New(), Sender: "bob", Recipient: "clara", Body: "private"},
		{ID: uuid.New(), Sender: "clara", Recipient: domain.Broadcast, Body: "to all"},
	}

	t.Run("directed mode filters to the viewer", func(t *testing.T) {
		req := require.New(t)
		f := newChatServiceFixture(t, domain.ModeDirected, nil)
		f.messages.EXPECT().List(ctx).Return(log, nil).Times(1)

		feed, err := f.service.Feed(ctx, "alice")

		req.NoError(err)
		req.Len(feed, 2)
		req.Equal("hi bob", feed[0].Body)
		req.Equal("to all", feed[1].Body)
	})

	t.Run("unregistered viewer gets an empty feed without error", func(t *testing.T) {
		req := require.New(t)
		f := newChatServiceFixture(t, domain.ModeDirected, nil)
		f.messages.EXPECT().List(ctx).Return(nil, nil).Times(1)

		feed, err := f.service.Feed(ctx, "carol")

		req.NoError(err)
		req.Empty(feed)
	})

	t.Run("broadcast mode returns the whole log", func(t *testing.T) {
		req := require.New(t)
		f := newChatServiceFixture(t, domain.ModeBroadcast, nil)
		f.messages.EXPECT().List(ctx).Return(log, nil).Times(1)

		feed, err := f.service.Feed(ctx, "anyone")

		req.NoError(err)
		req.Len(feed, len(log))
	})
}

func TestChatService_Conversation(t *testing.T) {
	ctx := context.Background()

	t.Run("returns both directions of the pair", func(t *testing.T) {
		req := require.New(t)
		f := newChatServiceFixture(t, domain.ModeDirected, nil)
		log := []domain.Message{
			{ID: uuid.New(), Sender: "alice", Recipient: "bob", Body: "ping"},
			{ID: uuid.New(), Sender: "bob", Recipient: "alice", Body: "pong"},
			{ID: uuid.New(), Sender: "alice", Recipient: "clara", Body: "other"},
		}
		f.messages.EXPECT().List(ctx).Return(log, nil).Times(2)

		ab, err := f.service.Conversation(ctx, "alice", "bob")
		req.NoError(err)
		ba, err := f.service.Conversation(ctx, "bob", "alice")
		req.NoError(err)

		req.Equal(ab, ba)
		req.Len(ab, 2)
	})

	t.Run("is rejected in broadcast mode", func(t *testing.T) {
		req := require.New(t)
		f := newChatServiceFixture(t, domain.ModeBroadcast, nil)

		_, err := f.service.Conversation(ctx, "alice", "bob")

		req.ErrorIs(err, errors.ErrInvalidRequest)
	})
}

func TestChatService_Search_RespectsVisibility(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newChatServiceFixture(t, domain.ModeDirected, nil)

	visible := domain.Message{
		ID: uuid.New(), Sender: "alice", Recipient: "bob",
		Body: "deploy is done", CreatedAt: time.Now().UTC(),
	}
	hidden := domain.Message{
		ID: uuid.New(), Sender: "bob", Recipient: "clara",
		Body: "deploy is broken", CreatedAt: time.Now().UTC(),
	}

	f.messages.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m domain.Message) (domain.Message, error) {
			if m.Body == visible.Body {
				return visible, nil
			}
			return hidden, nil
		}).
		Times(2)

	_, err := f.service.Send(ctx, "alice", "bob", visible.Body)
	req.NoError(err)
	_, err = f.service.Send(ctx, "bob", "clara", hidden.Body)
	req.NoError(err)

	f.messages.EXPECT().List(ctx).Return([]domain.Message{visible, hidden}, nil).Times(1)

	results, err := f.service.Search(ctx, "alice", "deploy")

	req.NoError(err)
	req.Len(results, 1)
	req.Equal(visible.ID, results[0].ID)
}
