package ops

import (
	"context"
	"log/slog"

	"github.com/hpungsan/holocron/internal/planet"
)

// Origin values for InitializeOutput.
const (
	OriginCache  = "cache"
	OriginRemote = "remote"
)

// InitializeOutput contains the result of the Initialize operation.
type InitializeOutput struct {
	Planets []planet.Planet `json:"planets"`
	Origin  string          `json:"origin"`
	Next    *string         `json:"next,omitempty"`
}

// Initialize returns the cached planets, fetching the first page only when
// the cache is empty. It never fetches more than one page.
func Initialize(ctx context.Context, d Deps) (*InitializeOutput, error) {
	if err := d.requireStore(); err != nil {
		return nil, err
	}
	if err := d.Store.Open(ctx); err != nil {
		return nil, err
	}

	planets, err := readPlanets(ctx, d.Store)
	if err != nil {
		return nil, err
	}
	if len(planets) > 0 {
		slog.Debug("initialize: cache hit", "count", len(planets))
		return &InitializeOutput{Planets: planets, Origin: OriginCache}, nil
	}

	out, err := FetchPage(ctx, d)
	if err != nil {
		return nil, err
	}
	return &InitializeOutput{Planets: out.Planets, Origin: OriginRemote, Next: out.Next}, nil
}
