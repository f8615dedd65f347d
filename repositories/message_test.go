package repositories

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"chatline/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func Test_Append_Multiple_Messages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t, t.TempDir())
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	bodies := []string{"first", "second", "third"}
	for _, body := range bodies {
		stored, err := repository.Append(ctx, domain.Message{
			Sender:    "alice",
			Recipient: "bob",
			Body:      body,
		})
		req.NoError(err)
		req.NotEqual(uuid.Nil, stored.ID)
		req.False(stored.CreatedAt.IsZero())
	}

	fetched, err := repository.List(ctx)
	req.NoError(err)
	req.Len(fetched, len(bodies))
	req.Equal(bodies, lo.Map(fetched, func(m domain.Message, _ int) string { return m.Body }))
}

func Test_List_OrderedByCreationThenID(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t, t.TempDir())
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	for i := 0; i < 20; i++ {
		_, err := repository.Append(ctx, domain.Message{
			Sender:    "alice",
			Recipient: "bob",
			Body:      "tick",
		})
		req.NoError(err)
	}

	fetched, err := repository.List(ctx)
	req.NoError(err)
	req.Len(fetched, 20)
	for i := 1; i < len(fetched); i++ {
		prev, curr := fetched[i-1], fetched[i]
		req.False(curr.CreatedAt.Before(prev.CreatedAt))
		if curr.CreatedAt.Equal(prev.CreatedAt) {
			req.Less(prev.ID.String(), curr.ID.String())
		}
	}
}

func Test_Append_ConcurrentDistinctIDs(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t, t.TempDir())
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)

	const writers = 8
	const perWriter = 10
	errs := make(chan error, writers*perWriter)
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := repository.Append(ctx, domain.Message{
					Sender:    "alice",
					Recipient: "bob",
					Body:      "concurrent",
				})
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	fetched, err := repository.List(ctx)
	req.NoError(err)
	req.Len(fetched, writers*perWriter)

	ids := lo.Map(fetched, func(m domain.Message, _ int) string { return m.ID.String() })
	req.Len(lo.Uniq(ids), writers*perWriter)
}

func Test_Append_EvictsOldestPastLimit(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t, t.TempDir())
	defer db.Close()

	limit := 3
	repository := NewMessageRepository(db, slog.Default(), &limit)
	for _, body := range []string{"one", "two", "three", "four", "five"} {
		_, err := repository.Append(ctx, domain.Message{
			Sender:    "alice",
			Recipient: domain.Broadcast,
			Body:      body,
		})
		req.NoError(err)
	}

	fetched, err := repository.List(ctx)
	req.NoError(err)
	req.Len(fetched, limit)
	req.Equal([]string{"three", "four", "five"},
		lo.Map(fetched, func(m domain.Message, _ int) string { return m.Body }))
}

func Test_Append_HundredCap(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t, t.TempDir())
	defer db.Close()

	limit := 100
	repository := NewMessageRepository(db, slog.Default(), &limit)

	var firstID uuid.UUID
	for i := 0; i <= limit; i++ {
		stored, err := repository.Append(ctx, domain.Message{
			Sender:    "alice",
			Recipient: domain.Broadcast,
			Body:      "numbered",
		})
		req.NoError(err)
		if i == 0 {
			firstID = stored.ID
		}
	}

	fetched, err := repository.List(ctx)
	req.NoError(err)
	req.Len(fetched, limit)

	// Exactly the oldest entry is gone.
	for _, m := range fetched {
		req.NotEqual(firstID, m.ID)
	}
}

func Test_Messages_SurviveRestart(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	db := openTestDB(t, dir)
	repository := NewMessageRepository(db, slog.Default(), nil)
	stored, err := repository.Append(ctx, domain.Message{
		Sender:    "alice",
		Recipient: "bob",
		Body:      "hi bob",
		Lang:      "en",
	})
	req.NoError(err)
	req.NoError(db.Close())

	db = openTestDB(t, dir)
	defer db.Close()
	repository = NewMessageRepository(db, slog.Default(), nil)

	fetched, err := repository.List(ctx)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal(stored, fetched[0])
}
