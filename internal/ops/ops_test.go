package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/holocron/internal/config"
	"github.com/hpungsan/holocron/internal/db"
	"github.com/hpungsan/holocron/internal/source"
)

// fakeAPI serves a paginated planets listing plus people resources.
type fakeAPI struct {
	srv *httptest.Server

	mu       sync.Mutex
	pages    map[string]string // path+query -> body
	people   map[string]string // path -> name
	requests []string
	fail     map[string]int // path -> status code to return
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{
		pages:  make(map[string]string),
		people: make(map[string]string),
		fail:   make(map[string]int),
	}
	api.srv = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	a.mu.Lock()
	a.requests = append(a.requests, key)
	status, failing := a.fail[r.URL.Path]
	body, isPage := a.pages[key]
	name, isPerson := a.people[r.URL.Path]
	a.mu.Unlock()

	switch {
	case failing:
		http.Error(w, "unavailable", status)
	case isPage:
		_, _ = w.Write([]byte(body))
	case isPerson:
		_ = json.NewEncoder(w).Encode(map[string]string{"name": name})
	default:
		http.NotFound(w, r)
	}
}

// url returns an absolute URL on the fake server.
func (a *fakeAPI) url(path string) string {
	return a.srv.URL + path
}

// addPage registers a listing page at path. names become planets whose
// residents are the given people paths.
func (a *fakeAPI) addPage(path string, next *string, planets map[string][]string, order ...string) {
	type raw struct {
		Name      string   `json:"name"`
		Climate   string   `json:"climate"`
		Residents []string `json:"residents"`
	}
	results := make([]raw, 0, len(order))
	for _, name := range order {
		residents := make([]string, 0, len(planets[name]))
		for _, p := range planets[name] {
			residents = append(residents, a.url(p))
		}
		results = append(results, raw{Name: name, Climate: "temperate", Residents: residents})
	}
	body, _ := json.Marshal(map[string]any{"results": results, "next": next})

	a.mu.Lock()
	defer a.mu.Unlock()
	a.pages[path] = string(body)
}

func (a *fakeAPI) addPerson(path, name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.people[path] = name
}

func (a *fakeAPI) requestsMatching(prefix string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, r := range a.requests {
		if strings.HasPrefix(r, prefix) {
			out = append(out, r)
		}
	}
	return out
}

// setupDeps creates a temp store wired to the fake API.
func setupDeps(t *testing.T, api *fakeAPI) Deps {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.SourceURL = api.url("/planets/")

	store := db.New(t.TempDir(), cfg)
	require.NoError(t, store.Open(context.Background()))
	t.Cleanup(func() { store.Close() })

	return Deps{Store: store, Source: source.New(cfg), Config: cfg}
}

// seedStandardPages registers page 1 (3 planets, next=page 2) and page 2
// (2 planets, next=null).
func seedStandardPages(api *fakeAPI) (page2 string) {
	page2 = api.url("/planets/?page=2")
	api.addPage("/planets/", &page2, map[string][]string{
		"Tatooine": {"/people/1/", "/people/2/"},
		"Alderaan": {"/people/5/"},
		"Yavin IV": nil,
	}, "Tatooine", "Alderaan", "Yavin IV")
	api.addPage("/planets/?page=2", nil, map[string][]string{
		"Hoth":    nil,
		"Dagobah": nil,
	}, "Hoth", "Dagobah")
	return page2
}

func int64Ptr(v int64) *int64 { return &v }

func ids(t *testing.T, d Deps) []int64 {
	t.Helper()
	out, err := List(context.Background(), d)
	require.NoError(t, err)
	ids := make([]int64, 0, len(out.Items))
	for _, p := range out.Items {
		ids = append(ids, p.ID)
	}
	return ids
}
