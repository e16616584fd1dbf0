// Package cursor persists the next-page pointer of the remote listing.
package cursor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hpungsan/holocron/internal/db"
	"github.com/hpungsan/holocron/internal/errors"
)

// value is the stored shape of the cursor entry.
type value struct {
	Next *string `json:"next"`
}

// Tracker reads and writes the cursor through the durable store.
type Tracker struct {
	store *db.Store
}

// New returns a Tracker backed by store.
func New(store *db.Store) *Tracker {
	return &Tracker{store: store}
}

// Get returns the stored cursor. Nil means no page is pending: either nothing
// has been fetched yet or the last page was reached.
func (t *Tracker) Get(ctx context.Context) (*string, error) {
	raw, ok, err := db.Get(ctx, t.store, db.PartitionMetadata, db.CursorKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewConnection(fmt.Errorf("store not initialized: metadata %q missing", db.CursorKey))
	}

	var v value
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("decode cursor: %w", err))
	}
	return v.Next, nil
}

// Set stores next as the cursor. It returns only after the write commits.
func (t *Tracker) Set(ctx context.Context, next *string) error {
	raw, err := json.Marshal(value{Next: next})
	if err != nil {
		return errors.NewInternal(err)
	}
	return db.Put(ctx, t.store, db.PartitionMetadata, db.CursorKey, raw)
}

// Resolve returns the URL of the next page to fetch. A nil cursor resolves to
// firstPage, so ingesting past the last page wraps around to page one.
func (t *Tracker) Resolve(ctx context.Context, firstPage string) (string, error) {
	next, err := t.Get(ctx)
	if err != nil {
		return "", err
	}
	if next == nil || *next == "" {
		return firstPage, nil
	}
	return *next, nil
}
