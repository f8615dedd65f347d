// Package search maintains a Bluge full-text index over message bodies.
// The index is a lookup accelerator only; the Badger log stays the source
// of truth and results are resolved back to it by message id.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"chatline/domain"

	"github.com/blugelabs/bluge"
)

const bodyField = "body"

// Index wraps a single Bluge writer. Writers are safe for concurrent use;
// readers are opened per search so every query sees the latest flush.
type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func Open(path string, log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("open bluge writer: %w", err)
	}
	return &Index{writer: writer, log: log}, nil
}

// OpenInMemory builds an index that never touches disk, for tests.
func OpenInMemory(log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("open bluge writer: %w", err)
	}
	return &Index{writer: writer, log: log}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// IndexMessage adds one message to the index, keyed by its id.
func (i *Index) IndexMessage(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField(bodyField, message.Body)).
		AddField(bluge.NewKeywordField("sender", message.Sender)).
		AddField(bluge.NewKeywordField("recipient", message.Recipient))

	return i.writer.Update(doc.ID(), doc)
}

// Search runs a match query over message bodies and returns the ids of the
// best matches. Visibility filtering belongs to the caller, which knows the
// viewer; the index knows only text.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]string, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open bluge reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Closing bluge reader failed", "err", err)
		}
	}()

	match := bluge.NewMatchQuery(query).SetField(bodyField)
	request := bluge.NewTopNSearch(limit, match)

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("bluge search: %w", err)
	}

	var ids []string
	for {
		next, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("bluge iterate: %w", err)
		}
		if next == nil {
			break
		}
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, string(value))
			}
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("bluge visit: %w", err)
		}
	}
	return ids, nil
}
