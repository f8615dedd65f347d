package repositories

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// maxUpdateAttempts bounds the retry policy for mutating transactions.
// Conflicts are rare (writers serialize on short transactions) so three
// attempts is plenty before surfacing the failure.
const maxUpdateAttempts = 3

// update runs fn as a read-write transaction under the caller's deadline,
// retrying on commit conflicts. If the context expires first the caller
// unblocks with the context error while the attempt finishes on its own;
// a write is never left half-applied because Badger commits atomically.
func update(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		var err error
		for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
			err = db.Update(fn)
			if !errors.Is(err, badger.ErrConflict) {
				break
			}
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// view runs fn as a read-only snapshot transaction. Snapshots never
// conflict, so no retry is involved.
func view(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.View(fn)
}
