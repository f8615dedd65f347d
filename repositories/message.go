//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"chatline/domain"
	apperrors "chatline/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const messageKeyPrefix = "msg:"

type IMessageRepository interface {
	Append(ctx context.Context, message domain.Message) (domain.Message, error)
	List(ctx context.Context) ([]domain.Message, error)
}

// MessageRepository persists the append-only message log in BadgerDB.
// The key is formatted as "msg:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological iteration using 19-digit zero padding
//     (lexicographical order is (createdAt, id) order).
//  2. Prevent collisions with the UUID suffix when two messages land
//     on the same nanosecond; the clock is never the sole uniqueness source.
type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

func messageKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", messageKeyPrefix, message.CreatedAt.UnixNano(), message.ID))
}

// Append assigns the identifier and timestamp, persists the record and,
// when a cap is configured, evicts the oldest entries past the cap. The
// insert and the eviction commit as one transaction, so readers never see
// an over-full log.
func (m MessageRepository) Append(ctx context.Context, message domain.Message) (domain.Message, error) {
	message.ID = uuid.New()
	message.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(message)
	if err != nil {
		return domain.Message{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = update(ctx, m.db, func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(message), data); err != nil {
			return err
		}
		if m.limitMessages == nil {
			return nil
		}
		return m.evictOldest(txn, *m.limitMessages)
	})
	if err != nil {
		return domain.Message{}, err
	}

	return message, nil
}

// evictOldest trims the log down to limit entries, oldest first. The
// iterator sees the pending insert of the surrounding transaction, so the
// count is taken over the post-append state.
func (m MessageRepository) evictOldest(txn *badger.Txn, limit int) error {
	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	prefix := []byte(messageKeyPrefix)
	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}

	excess := len(keys) - limit
	for i := 0; i < excess; i++ {
		if err := txn.Delete(keys[i]); err != nil {
			return err
		}
		m.log.Debug("Evicted oldest message", "key", string(keys[i]))
	}
	return nil
}

// List returns the whole log in ascending (createdAt, id) order. Thanks to
// the padded timestamp in the key, a forward prefix scan is already sorted.
func (m MessageRepository) List(ctx context.Context) ([]domain.Message, error) {
	var rawMessages [][]byte

	err := view(ctx, m.db, func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(messageKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				rawMessages = append(rawMessages, append([]byte(nil), val...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	for _, raw := range rawMessages {
		var message domain.Message
		if err := json.Unmarshal(raw, &message); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrCorruptRecord, err)
		}
		messages = append(messages, message)
	}
	return messages, nil
}
