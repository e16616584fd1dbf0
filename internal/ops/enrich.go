package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/holocron/internal/db"
	"github.com/hpungsan/holocron/internal/errors"
	"github.com/hpungsan/holocron/internal/planet"
)

// EnrichInput contains parameters for the Enrich operation.
type EnrichInput struct {
	ID *int64 // required; nil is reported as NOT_FOUND
}

// Enrich resolves every resident URL of the stored planet to a name and
// writes the planet back with ResidentsNames filled in. Names keep the order
// of ResidentsURLs. If any lookup fails nothing is written.
func Enrich(ctx context.Context, d Deps, input EnrichInput) (*planet.Planet, error) {
	if input.ID == nil {
		slog.Error("enrich: planet id is undefined")
		return nil, errors.NewNotFound("")
	}
	if err := d.requireStore(); err != nil {
		return nil, err
	}
	if d.Source == nil {
		return nil, errors.NewInternal(fmt.Errorf("no source configured"))
	}

	p, err := getPlanet(ctx, d.Store, *input.ID)
	if err != nil {
		return nil, err
	}

	names, err := resolveNames(ctx, d.Source, p.ResidentsURLs)
	if err != nil {
		slog.Error("resolve resident names failed", "id", p.ID, "error", err)
		return nil, err
	}
	p.ResidentsNames = names

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := db.Put(ctx, d.Store, db.PartitionPlanets, p.ID, raw); err != nil {
		return nil, err
	}

	slog.Info("enriched planet", "id", p.ID, "name", p.Name, "residents", len(names))
	return p, nil
}

// resolveNames fetches all urls concurrently. Each result is written to the
// index of its url, so completion order does not matter.
func resolveNames(ctx context.Context, src Source, urls []string) ([]string, error) {
	names := make([]string, len(urls))
	if len(urls) == 0 {
		return names, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		g.Go(func() error {
			name, err := src.GetName(gctx, url)
			if err != nil {
				return err
			}
			names[i] = name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}
