package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/holocron/internal/config"
	"github.com/hpungsan/holocron/internal/db"
	"github.com/hpungsan/holocron/internal/ops"
	"github.com/hpungsan/holocron/internal/planet"
	"github.com/hpungsan/holocron/internal/source"
)

// setupTestDeps creates a temporary store wired to a fake planets API.
func setupTestDeps(t *testing.T) ops.Deps {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/planets/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"results":[{"name":"Hoth","residents":[]}],"next":null}`)
			return
		}
		fmt.Fprintf(w, `{"results":[{"name":"Tatooine","residents":["%[1]s/people/1/","%[1]s/people/2/"]},{"name":"Alderaan","residents":[]}],"next":"%[1]s/planets/?page=2"}`, srv.URL)
	})
	mux.HandleFunc("/people/1/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"Luke Skywalker"}`)
	})
	mux.HandleFunc("/people/2/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"C-3PO"}`)
	})

	cfg := config.DefaultConfig()
	cfg.SourceURL = srv.URL + "/planets/"

	store := db.New(t.TempDir(), cfg)
	t.Cleanup(func() { store.Close() })

	return ops.Deps{Store: store, Source: source.New(cfg), Config: cfg}
}

// run executes the CLI with args and returns stdout.
func run(t *testing.T, deps ops.Deps, args ...string) ([]byte, error) {
	t.Helper()
	app := newCLIApp(deps)
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run(append([]string{"holocron"}, args...))
	return out.Bytes(), err
}

func TestCLIInit(t *testing.T) {
	deps := setupTestDeps(t)

	out, err := run(t, deps, "init")
	require.NoError(t, err)

	var output ops.InitializeOutput
	require.NoError(t, json.Unmarshal(out, &output), "output: %s", out)
	assert.Equal(t, ops.OriginRemote, output.Origin)
	require.Len(t, output.Planets, 2)
	assert.Equal(t, int64(1), output.Planets[0].ID)

	out, err = run(t, deps, "init")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(out, &output))
	assert.Equal(t, ops.OriginCache, output.Origin)
}

func TestCLIFetchPage(t *testing.T) {
	deps := setupTestDeps(t)

	out, err := run(t, deps, "fetch-page")
	require.NoError(t, err)
	var single ops.FetchPageOutput
	require.NoError(t, json.Unmarshal(out, &single), "output: %s", out)
	assert.Len(t, single.Planets, 2)
	require.NotNil(t, single.Next)

	out, err = run(t, deps, "fetch-page", "--count=2")
	require.NoError(t, err)
	var many []ops.FetchPageOutput
	require.NoError(t, json.Unmarshal(out, &many), "output: %s", out)
	require.Len(t, many, 2)
	assert.Nil(t, many[0].Next, "page two is the last page")
	assert.Equal(t, deps.Config.SourceURL, many[1].URL, "cursor wraps to page one")

	_, err = run(t, deps, "fetch-page", "--count=0")
	assert.Error(t, err)
}

func TestCLIList(t *testing.T) {
	deps := setupTestDeps(t)

	out, err := run(t, deps, "list")
	require.NoError(t, err)
	var output ops.ListOutput
	require.NoError(t, json.Unmarshal(out, &output))
	assert.Equal(t, 0, output.Total, "list never fetches")

	_, err = run(t, deps, "init")
	require.NoError(t, err)

	out, err = run(t, deps, "list", "--summary")
	require.NoError(t, err)
	var summary struct {
		Items []planet.Summary `json:"items"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(out, &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Items[0].ResidentCount)
}

func TestCLIGetAndEnrich(t *testing.T) {
	deps := setupTestDeps(t)
	_, err := run(t, deps, "init")
	require.NoError(t, err)

	out, err := run(t, deps, "enrich", "1")
	require.NoError(t, err)
	var enriched planet.Planet
	require.NoError(t, json.Unmarshal(out, &enriched), "output: %s", out)
	assert.Equal(t, []string{"Luke Skywalker", "C-3PO"}, enriched.ResidentsNames)

	out, err = run(t, deps, "get", "1")
	require.NoError(t, err)
	var got planet.Planet
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, enriched.ResidentsNames, got.ResidentsNames)
}

func TestCLICursor(t *testing.T) {
	deps := setupTestDeps(t)

	out, err := run(t, deps, "cursor")
	require.NoError(t, err)
	var output ops.CursorOutput
	require.NoError(t, json.Unmarshal(out, &output))
	assert.Nil(t, output.Next)
	assert.Equal(t, deps.Config.SourceURL, output.Resolved)
}

func TestCLIDestroy(t *testing.T) {
	deps := setupTestDeps(t)
	_, err := run(t, deps, "init")
	require.NoError(t, err)

	_, err = run(t, deps, "destroy")
	assert.Error(t, err, "destroy without --yes must fail")

	out, err := run(t, deps, "destroy", "--yes")
	require.NoError(t, err)
	var output ops.DestroyOutput
	require.NoError(t, json.Unmarshal(out, &output))
	assert.True(t, output.Destroyed)

	list, err := ops.List(context.Background(), deps)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

// TestCLIErrorHandling tests error handling in CLI commands.
func TestCLIErrorHandling(t *testing.T) {
	deps := setupTestDeps(t)

	tests := []struct {
		name string
		args []string
	}{
		{"get not found", []string{"get", "99"}},
		{"get without id", []string{"get"}},
		{"get non-numeric id", []string{"get", "tatooine"}},
		{"enrich not found", []string{"enrich", "5"}},
		{"serve invalid port", []string{"serve", "--port=0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, deps, tt.args...)
			assert.Error(t, err)
		})
	}
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"holocron"}, expected: false},
		{name: "init command", args: []string{"holocron", "init"}, expected: true},
		{name: "fetch-page command", args: []string{"holocron", "fetch-page"}, expected: true},
		{name: "serve command", args: []string{"holocron", "serve"}, expected: true},
		{name: "help flag", args: []string{"holocron", "--help"}, expected: true},
		{name: "version flag", args: []string{"holocron", "--version"}, expected: true},
		{name: "short help flag", args: []string{"holocron", "-h"}, expected: true},
		{name: "short version flag", args: []string{"holocron", "-v"}, expected: true},
		{name: "unknown arg defaults to MCP", args: []string{"holocron", "--unknown"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isCLIMode(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"holocron"}, expected: false},
		{name: "help flag", args: []string{"holocron", "--help"}, expected: true},
		{name: "short version flag", args: []string{"holocron", "-v"}, expected: true},
		{name: "help subcommand", args: []string{"holocron", "help"}, expected: true},
		{name: "list command is not help", args: []string{"holocron", "list"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isHelpOrVersion(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}
