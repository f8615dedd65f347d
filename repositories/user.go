//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"chatline/domain"
	apperrors "chatline/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const (
	userKeyPrefix = "user:"
	userSeqKey    = "seq:user"
)

// ErrNotFound reports an absent identity. It aliases the Badger sentinel so
// callers can match it without importing the storage engine.
var ErrNotFound = badger.ErrKeyNotFound

type IUserRepository interface {
	CreateUser(ctx context.Context, username, credentialHash string) error
	GetUser(ctx context.Context, username string) (domain.User, error)
	ListUsernames(ctx context.Context) ([]string, error)
}

// UserRepository persists identities in BadgerDB under "user:{username}",
// which makes the uniqueness check a single point lookup inside the same
// transaction as the insert. Registration order is kept in a durable
// sequence number carried by each record, since Badger iterates keys
// lexicographically, not in insertion order.
type UserRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

func NewUserRepository(db *badger.DB) (*UserRepository, error) {
	seq, err := db.GetSequence([]byte(userSeqKey), 64)
	if err != nil {
		return nil, fmt.Errorf("user sequence: %w", err)
	}
	return &UserRepository{db: db, seq: seq}, nil
}

// Close releases the registration sequence. Unused leased numbers are
// dropped; gaps are fine, only the ordering matters.
func (u *UserRepository) Close() error {
	return u.seq.Release()
}

// CreateUser inserts a new identity, failing with ErrUserAlreadyExists when
// the username is taken. The check and the insert share one transaction, so
// two concurrent registrations of the same name cannot both succeed.
func (u *UserRepository) CreateUser(ctx context.Context, username, credentialHash string) error {
	seq, err := u.seq.Next()
	if err != nil {
		return fmt.Errorf("user sequence: %w", err)
	}

	user := domain.User{
		Username:       username,
		CredentialHash: credentialHash,
		Seq:            seq,
		CreatedAt:      time.Now().UTC(),
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return update(ctx, u.db, func(txn *badger.Txn) error {
		key := []byte(userKeyPrefix + username)
		if _, err := txn.Get(key); err == nil {
			return apperrors.ErrUserAlreadyExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, data)
	})
}

// GetUser retrieves a single identity. Absent users surface as
// badger.ErrKeyNotFound; callers decide how much of that to reveal.
func (u *UserRepository) GetUser(ctx context.Context, username string) (domain.User, error) {
	var user domain.User

	err := view(ctx, u.db, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKeyPrefix + username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &user); err != nil {
				return fmt.Errorf("%w: user %q: %v", apperrors.ErrCorruptRecord, username, err)
			}
			return nil
		})
	})
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// ListUsernames returns every username in registration order. Nobody is
// filtered out here; hiding the caller from their own listing is a
// presentation concern.
func (u *UserRepository) ListUsernames(ctx context.Context) ([]string, error) {
	var users []domain.User

	err := view(ctx, u.db, func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(userKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var user domain.User
				if err := json.Unmarshal(val, &user); err != nil {
					return fmt.Errorf("%w: key %q: %v", apperrors.ErrCorruptRecord, item.Key(), err)
				}
				users = append(users, user)
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

	sort.Slice(users, func(i, j int) bool { return users[i].Seq < users[j].Seq })

	return lo.Map(users, func(u domain.User, _ int) string { return u.Username }), nil
}
