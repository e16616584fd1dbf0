package planet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CopiesResidentsAndInitializesNames(t *testing.T) {
	raw := Raw{
		Name:      "Tatooine",
		Climate:   "arid",
		Residents: []string{"https://swapi.dev/api/people/1/", "https://swapi.dev/api/people/2/"},
		Films:     []string{"https://swapi.dev/api/films/1/"},
	}

	p := Normalize(raw, "batch-1")

	assert.Equal(t, "Tatooine", p.Name)
	assert.Equal(t, "arid", p.Climate)
	assert.Equal(t, raw.Residents, p.ResidentsURLs)
	require.NotNil(t, p.ResidentsNames)
	assert.Empty(t, p.ResidentsNames)
	assert.Equal(t, int64(0), p.ID)
	assert.Equal(t, "batch-1", p.BatchID)

	// The normalized slice must not alias the raw one.
	raw.Residents[0] = "mutated"
	assert.Equal(t, "https://swapi.dev/api/people/1/", p.ResidentsURLs[0])
}

func TestNormalize_NilResidents(t *testing.T) {
	p := Normalize(Raw{Name: "Yavin IV"}, "")

	require.NotNil(t, p.ResidentsURLs)
	assert.Empty(t, p.ResidentsURLs)
	assert.False(t, p.Enriched())
}

func TestNormalizePage_PreservesOrder(t *testing.T) {
	page := &Page{Results: []Raw{{Name: "Alderaan"}, {Name: "Hoth"}, {Name: "Dagobah"}}}

	planets := NormalizePage(page, "b")

	require.Len(t, planets, 3)
	assert.Equal(t, "Alderaan", planets[0].Name)
	assert.Equal(t, "Hoth", planets[1].Name)
	assert.Equal(t, "Dagobah", planets[2].Name)
}

func TestNormalizePage_Nil(t *testing.T) {
	assert.Empty(t, NormalizePage(nil, "b"))
}

func TestMarkdown(t *testing.T) {
	p := Planet{
		Name:           "Tatooine",
		Climate:        "arid",
		ResidentsURLs:  []string{"u1", "u2"},
		ResidentsNames: []string{"Luke Skywalker", "C-3PO"},
	}

	md := p.Markdown()
	assert.True(t, strings.HasPrefix(md, "## Tatooine\n"))
	assert.Contains(t, md, "| Climate | arid |")
	assert.Contains(t, md, "| Gravity | unknown |")
	assert.Contains(t, md, "- Luke Skywalker\n- C-3PO\n")

	p.ResidentsNames = nil
	assert.Contains(t, p.Markdown(), "2 residents not yet resolved.")

	p.ResidentsURLs = nil
	assert.Contains(t, p.Markdown(), "No known residents.")
}
