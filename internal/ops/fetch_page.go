package ops

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hpungsan/holocron/internal/cursor"
	"github.com/hpungsan/holocron/internal/db"
	"github.com/hpungsan/holocron/internal/errors"
	"github.com/hpungsan/holocron/internal/planet"
)

// FetchPageOutput contains the result of one ingestion cycle.
type FetchPageOutput struct {
	Planets []planet.Planet `json:"planets"`
	Next    *string         `json:"next"`
	URL     string          `json:"url,omitempty"`
	BatchID string          `json:"batch_id,omitempty"`
}

// FetchPage fetches the page the cursor points at (or the first page when the
// cursor is null), stores its planets, and advances the cursor.
//
// Without a store or source it returns an empty result and a null cursor.
// Cycles on the same store are serialized. Insert and cursor advance are two
// separate transactions; a crash between them re-fetches the page on retry.
func FetchPage(ctx context.Context, d Deps) (*FetchPageOutput, error) {
	if d.Store == nil || d.Source == nil {
		slog.Debug("fetch page skipped: no store or source")
		return &FetchPageOutput{Planets: []planet.Planet{}}, nil
	}

	unlock := d.Store.LockIngest()
	defer unlock()

	tracker := cursor.New(d.Store)
	url, err := tracker.Resolve(ctx, d.firstPage())
	if err != nil {
		return nil, err
	}

	page, err := d.Source.GetPage(ctx, url)
	if err != nil {
		slog.Error("fetch page failed", "url", url, "error", err)
		return nil, err
	}

	batchID, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	planets := planet.NormalizePage(page, batchID)
	values := make([]json.RawMessage, 0, len(planets))
	for i := range planets {
		raw, err := json.Marshal(&planets[i])
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		values = append(values, raw)
	}

	keys, err := db.InsertMany(ctx, d.Store, db.PartitionPlanets, values)
	if err != nil {
		slog.Error("store page failed", "url", url, "batch_id", batchID, "error", err)
		return nil, err
	}
	for i := range planets {
		planets[i].ID = keys[i]
	}

	if err := tracker.Set(ctx, page.Next); err != nil {
		slog.Error("advance cursor failed", "url", url, "batch_id", batchID, "error", err)
		return nil, err
	}

	slog.Info("fetched page",
		"url", url,
		"batch_id", batchID,
		"count", len(planets),
		"next", deref(page.Next),
	)

	return &FetchPageOutput{
		Planets: planets,
		Next:    page.Next,
		URL:     url,
		BatchID: batchID,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
