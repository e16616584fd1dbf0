package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/holocron/internal/errors"
	"github.com/hpungsan/holocron/internal/ops"
	"github.com/hpungsan/holocron/internal/planet"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	deps     ops.Deps
	renderer *Renderer
}

// HandleList handles GET /planets. It initializes the cache, so the first
// visit to an empty store loads page one.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Initialize(r.Context(), h.deps)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderList(w, r, result.Planets)
}

// HandleLoadMore handles POST /planets/more: one ingestion cycle.
func (h *Handlers) HandleLoadMore(w http.ResponseWriter, r *http.Request) {
	result, err := ops.FetchPage(r.Context(), h.deps)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	if isHTMX(r) {
		list, err := ops.List(r.Context(), h.deps)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		h.renderList(w, r, list.Items)
		return
	}

	http.Redirect(w, r, "/planets", http.StatusSeeOther)
}

func (h *Handlers) renderList(w http.ResponseWriter, r *http.Request, planets []planet.Planet) {
	items := make([]planet.Summary, 0, len(planets))
	for i := range planets {
		items = append(items, planets[i].ToSummary())
	}

	cur, err := ops.GetCursor(r.Context(), h.deps)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Planets",
			Version: h.renderer.version,
			Nav:     "planets",
		},
		Items:    items,
		NextURL:  cur.Resolved,
		LastPage: cur.Next == nil,
	})
}

// HandleDetail handles GET /planets/{id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	p, err := ops.Get(r.Context(), h.deps, ops.GetInput{ID: &id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, p)
		return
	}
	h.renderDetail(w, r, p)
}

// HandleEnrich handles POST /planets/{id}/enrich.
func (h *Handlers) HandleEnrich(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	p, err := ops.Enrich(r.Context(), h.deps, ops.EnrichInput{ID: &id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	switch {
	case wantsJSON(r):
		renderJSON(w, http.StatusOK, p)
	case isHTMX(r):
		h.renderDetail(w, r, p)
	default:
		http.Redirect(w, r, fmt.Sprintf("/planets/%d", id), http.StatusSeeOther)
	}
}

func (h *Handlers) renderDetail(w http.ResponseWriter, r *http.Request, p *planet.Planet) {
	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   displayName(p),
			Version: h.renderer.version,
			Nav:     "planets",
		},
		Planet:       p,
		RenderedHTML: renderMarkdown(p.Markdown()),
	})
}

// HandleDestroy handles POST /planets/destroy. Every view must reload
// afterwards, so htmx clients get HX-Refresh.
func (h *Handlers) HandleDestroy(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	result, err := ops.Destroy(r.Context(), h.deps)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/planets", http.StatusSeeOther)
}

// parseID reads the {id} path value as a positive integer.
func parseID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, errors.NewInvalidRequest("planet id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid planet id: %q", raw))
	}
	return id, nil
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// displayName returns the planet name, or its id when the name is blank.
func displayName(p *planet.Planet) string {
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return fmt.Sprintf("Planet %d", p.ID)
}
