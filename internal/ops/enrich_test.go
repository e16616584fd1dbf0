package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/holocron/internal/db"
	"github.com/hpungsan/holocron/internal/errors"
	"github.com/hpungsan/holocron/internal/planet"
)

// delayedSource answers name lookups after a per-URL delay.
type delayedSource struct {
	names  map[string]string
	delays map[string]time.Duration

	mu      sync.Mutex
	arrival []string
}

func (s *delayedSource) GetPage(ctx context.Context, url string) (*planet.Page, error) {
	return nil, errors.NewNetwork(url, fmt.Errorf("not a listing"))
}

func (s *delayedSource) GetName(ctx context.Context, url string) (string, error) {
	select {
	case <-time.After(s.delays[url]):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	name, ok := s.names[url]
	if !ok {
		return "", errors.NewNetwork(url, fmt.Errorf("unexpected status code: 404"))
	}
	s.mu.Lock()
	s.arrival = append(s.arrival, name)
	s.mu.Unlock()
	return name, nil
}

// storePlanet inserts p directly and returns its ID.
func storePlanet(t *testing.T, store *db.Store, p planet.Planet) int64 {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	keys, err := db.InsertMany(context.Background(), store, db.PartitionPlanets, []json.RawMessage{raw})
	require.NoError(t, err)
	return keys[0]
}

func TestEnrich_NamesAlignedWithReferences(t *testing.T) {
	api := newFakeAPI(t)
	d := setupDeps(t, api)

	src := &delayedSource{
		names: map[string]string{"u1": "A", "u2": "B", "u3": "C"},
		// Responses arrive in reverse order
		delays: map[string]time.Duration{"u1": 60 * time.Millisecond, "u2": 30 * time.Millisecond, "u3": 0},
	}
	d.Source = src

	id := storePlanet(t, d.Store, planet.Planet{
		Name:           "Tatooine",
		ResidentsURLs:  []string{"u1", "u2", "u3"},
		ResidentsNames: []string{},
	})

	p, err := Enrich(context.Background(), d, EnrichInput{ID: &id})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, p.ResidentsNames)
	assert.Equal(t, []string{"C", "B", "A"}, src.arrival)

	stored, err := Get(context.Background(), d, GetInput{ID: &id})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, stored.ResidentsNames)
	assert.Equal(t, []string{"u1", "u2", "u3"}, stored.ResidentsURLs)
	assert.Equal(t, id, stored.ID)
}

func TestEnrich_OverHTTP(t *testing.T) {
	api := newFakeAPI(t)
	seedStandardPages(api)
	api.addPerson("/people/1/", "Luke Skywalker")
	api.addPerson("/people/2/", "C-3PO")
	d := setupDeps(t, api)
	ctx := context.Background()

	_, err := Initialize(ctx, d)
	require.NoError(t, err)

	p, err := Enrich(ctx, d, EnrichInput{ID: int64Ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "Tatooine", p.Name)
	assert.Equal(t, []string{"Luke Skywalker", "C-3PO"}, p.ResidentsNames)
	assert.ElementsMatch(t, []string{"/people/1/", "/people/2/"}, api.requestsMatching("/people/"))

	// Other planets are untouched
	other, err := Get(ctx, d, GetInput{ID: int64Ptr(2)})
	require.NoError(t, err)
	assert.Empty(t, other.ResidentsNames)
}

func TestEnrich_NoResidents(t *testing.T) {
	api := newFakeAPI(t)
	seedStandardPages(api)
	d := setupDeps(t, api)
	ctx := context.Background()

	_, err := Initialize(ctx, d)
	require.NoError(t, err)

	p, err := Enrich(ctx, d, EnrichInput{ID: int64Ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, "Yavin IV", p.Name)
	assert.Empty(t, p.ResidentsNames)
	assert.Empty(t, api.requestsMatching("/people/"))
}

func TestEnrich_NotFound(t *testing.T) {
	api := newFakeAPI(t)
	seedStandardPages(api)
	d := setupDeps(t, api)
	ctx := context.Background()

	_, err := Initialize(ctx, d)
	require.NoError(t, err)
	before, err := List(ctx, d)
	require.NoError(t, err)

	_, err = Enrich(ctx, d, EnrichInput{ID: int64Ptr(99)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)

	after, err := List(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, before, after, "store must be unmodified")
}

func TestEnrich_UndefinedID(t *testing.T) {
	api := newFakeAPI(t)
	d := setupDeps(t, api)

	_, err := Enrich(context.Background(), d, EnrichInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestEnrich_PartialFailureWritesNothing(t *testing.T) {
	api := newFakeAPI(t)
	seedStandardPages(api)
	api.addPerson("/people/1/", "Luke Skywalker")
	api.mu.Lock()
	api.fail["/people/2/"] = http.StatusInternalServerError
	api.mu.Unlock()
	d := setupDeps(t, api)
	ctx := context.Background()

	_, err := Initialize(ctx, d)
	require.NoError(t, err)

	_, err = Enrich(ctx, d, EnrichInput{ID: int64Ptr(1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNetwork), "got %v", err)

	stored, err := Get(ctx, d, GetInput{ID: int64Ptr(1)})
	require.NoError(t, err)
	assert.Empty(t, stored.ResidentsNames, "failed enrichment must not persist")
}

func TestEnrich_ConcurrentDistinctIDs(t *testing.T) {
	api := newFakeAPI(t)
	seedStandardPages(api)
	api.addPerson("/people/1/", "Luke Skywalker")
	api.addPerson("/people/2/", "C-3PO")
	api.addPerson("/people/5/", "Leia Organa")
	d := setupDeps(t, api)
	ctx := context.Background()

	_, err := Initialize(ctx, d)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range []int64{1, 2} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Enrich(ctx, d, EnrichInput{ID: &id})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := List(ctx, d)
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	assert.Equal(t, []string{"Luke Skywalker", "C-3PO"}, list.Items[0].ResidentsNames)
	assert.Equal(t, []string{"Leia Organa"}, list.Items[1].ResidentsNames)
	assert.Empty(t, list.Items[2].ResidentsNames)
}
