package ops

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/holocron/internal/config"
	"github.com/hpungsan/holocron/internal/db"
	"github.com/hpungsan/holocron/internal/errors"
	"github.com/hpungsan/holocron/internal/planet"
)

// Source is the remote API the cache is filled from.
type Source interface {
	GetPage(ctx context.Context, url string) (*planet.Page, error)
	GetName(ctx context.Context, url string) (string, error)
}

// Deps bundles what operations need. A zero Deps is valid only for FetchPage,
// which treats a missing store or source as a no-op.
type Deps struct {
	Store  *db.Store
	Source Source
	Config *config.Config
}

// firstPage returns the canonical first-page URL.
func (d Deps) firstPage() string {
	if d.Config != nil && d.Config.SourceURL != "" {
		return d.Config.SourceURL
	}
	return config.DefaultSourceURL
}

func (d Deps) requireStore() error {
	if d.Store == nil {
		return errors.NewConnection(fmt.Errorf("no store configured"))
	}
	return nil
}

// readPlanets returns every stored planet with its key attached.
func readPlanets(ctx context.Context, store *db.Store) ([]planet.Planet, error) {
	entries, err := db.ReadAll[int64](ctx, store, db.PartitionPlanets)
	if err != nil {
		return nil, err
	}

	planets := make([]planet.Planet, 0, len(entries))
	for _, e := range entries {
		p, err := decodePlanet(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		planets = append(planets, *p)
	}
	return planets, nil
}

// getPlanet loads one planet by key. Absent keys yield NOT_FOUND.
func getPlanet(ctx context.Context, store *db.Store, id int64) (*planet.Planet, error) {
	raw, ok, err := db.Get(ctx, store, db.PartitionPlanets, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewNotFound(strconv.FormatInt(id, 10))
	}
	return decodePlanet(id, raw)
}

func decodePlanet(id int64, raw json.RawMessage) (*planet.Planet, error) {
	var p planet.Planet
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("decode planet %d: %w", id, err))
	}
	p.ID = id
	if p.ResidentsNames == nil {
		p.ResidentsNames = []string{}
	}
	return &p, nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
