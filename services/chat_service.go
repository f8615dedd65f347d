package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"chatline/domain"
	"chatline/errors"
	"chatline/moderation"
	"chatline/observability"
	"chatline/projection"
	"chatline/repositories"
	"chatline/search"

	"github.com/samber/lo"
)

// searchLimit caps how many index hits a single search resolves.
const searchLimit = 50

type IChatService interface {
	Send(ctx context.Context, sender, recipient, body string) (domain.Message, error)
	Feed(ctx context.Context, viewer string) ([]domain.Message, error)
	Conversation(ctx context.Context, a, b string) ([]domain.Message, error)
	Users(ctx context.Context) ([]string, error)
	Search(ctx context.Context, viewer, query string) ([]domain.Message, error)
}

// ChatService owns the send pipeline (trim, censor, language tag, append,
// index) and the read-side projections. Delivery is pull-only: clients poll
// the feed, nothing here pushes.
type ChatService struct {
	users     repositories.IUserRepository
	messages  repositories.IMessageRepository
	moderator *moderation.Moderator
	index     *search.Index
	monitor   *observability.Monitor
	mode      domain.Mode
	log       *slog.Logger
}

func NewChatService(
	users repositories.IUserRepository,
	messages repositories.IMessageRepository,
	moderator *moderation.Moderator,
	index *search.Index,
	monitor *observability.Monitor,
	mode domain.Mode,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		users:     users,
		messages:  messages,
		moderator: moderator,
		index:     index,
		monitor:   monitor,
		mode:      mode,
		log:       log,
	}
}

// Send validates, sanitizes and durably appends one message, returning the
// stored record with its assigned id and timestamp.
func (s *ChatService) Send(ctx context.Context, sender, recipient, body string) (domain.Message, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return domain.Message{}, errors.ErrEmptyBody
	}

	switch s.mode {
	case domain.ModeBroadcast:
		recipient = domain.Broadcast
	default:
		if recipient == "" {
			return domain.Message{}, errors.ErrMissingRecipient
		}
		if recipient == domain.Broadcast {
			return domain.Message{}, fmt.Errorf("%w: recipient %q is reserved", errors.ErrInvalidRequest, domain.Broadcast)
		}
	}

	censored, foundWords := s.moderator.Censor(trimmed)
	if len(foundWords) > 0 {
		s.log.Info("Censored message content", "sender", sender, "words", len(foundWords))
	}

	message := domain.Message{
		Sender:    sender,
		Recipient: recipient,
		Body:      censored,
		Lang:      s.moderator.DetectLanguage(trimmed),
	}

	stored, err := s.messages.Append(ctx, message)
	if err != nil {
		return domain.Message{}, err
	}
	s.monitor.IncrMessagesStored()

	// The index is an accelerator, not the record: an indexing failure must
	// not fail a message that is already durable.
	if err := s.index.IndexMessage(stored); err != nil {
		s.log.Warn("Indexing message failed", "id", stored.ID, "err", err)
	}

	return stored, nil
}

// Feed returns the messages visible to the viewer in ascending
// (createdAt, id) order. It always succeeds, possibly empty, even for a
// viewer that never registered.
func (s *ChatService) Feed(ctx context.Context, viewer string) ([]domain.Message, error) {
	messages, err := s.messages.List(ctx)
	if err != nil {
		return nil, err
	}
	s.monitor.IncrFeedReads()

	if s.mode == domain.ModeBroadcast {
		return messages, nil
	}
	return projection.ForUser(messages, viewer), nil
}

// Conversation returns the directed exchange between two users, in either
// direction, ascending. Only meaningful in the directed variant.
func (s *ChatService) Conversation(ctx context.Context, a, b string) ([]domain.Message, error) {
	if s.mode != domain.ModeDirected {
		return nil, fmt.Errorf("%w: pair view requires directed mode", errors.ErrInvalidRequest)
	}

	messages, err := s.messages.List(ctx)
	if err != nil {
		return nil, err
	}
	s.monitor.IncrFeedReads()

	return projection.BetweenPair(messages, a, b), nil
}

// Users lists every registered username in registration order.
func (s *ChatService) Users(ctx context.Context) ([]string, error) {
	return s.users.ListUsernames(ctx)
}

// Search resolves full-text hits on message bodies back to log records,
// keeping only what the viewer is allowed to read and preserving log order.
func (s *ChatService) Search(ctx context.Context, viewer, query string) ([]domain.Message, error) {
	ids, err := s.index.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	hits := lo.SliceToMap(ids, func(id string) (string, struct{}) { return id, struct{}{} })

	messages, err := s.messages.List(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Filter(messages, func(m domain.Message, _ int) bool {
		if _, ok := hits[m.ID.String()]; !ok {
			return false
		}
		return s.mode == domain.ModeBroadcast || m.VisibleTo(viewer)
	}), nil
}
