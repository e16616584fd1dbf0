package planet

// Planet is a cached planet record.
// Values are stored as JSON in the planets partition; ID is the partition key
// and is reattached on every read.
type Planet struct {
	// ID is assigned by the store at insertion time (auto-increment)
	ID int64 `json:"id"`

	Name           string   `json:"name"`
	RotationPeriod string   `json:"rotation_period"`
	OrbitalPeriod  string   `json:"orbital_period"`
	Diameter       string   `json:"diameter"`
	Climate        string   `json:"climate"`
	Gravity        string   `json:"gravity"`
	Terrain        string   `json:"terrain"`
	SurfaceWater   string   `json:"surface_water"`
	Population     string   `json:"population"`
	Films          []string `json:"films"`
	Created        string   `json:"created"`
	Edited         string   `json:"edited"`
	URL            string   `json:"url"`

	// ResidentsURLs are the related-resource references, copied verbatim from the source
	ResidentsURLs []string `json:"residentsUrls"`

	// ResidentsNames are the resolved display names, positionally aligned with
	// ResidentsURLs once enriched. Empty until enrichment.
	ResidentsNames []string `json:"residentsNames"`

	// BatchID is the ULID of the ingestion cycle that inserted this planet
	BatchID string `json:"batch_id,omitempty"`
}

// Raw is one element of the remote listing's results array.
type Raw struct {
	Name           string   `json:"name"`
	RotationPeriod string   `json:"rotation_period"`
	OrbitalPeriod  string   `json:"orbital_period"`
	Diameter       string   `json:"diameter"`
	Climate        string   `json:"climate"`
	Gravity        string   `json:"gravity"`
	Terrain        string   `json:"terrain"`
	SurfaceWater   string   `json:"surface_water"`
	Population     string   `json:"population"`
	Residents      []string `json:"residents"`
	Films          []string `json:"films"`
	Created        string   `json:"created"`
	Edited         string   `json:"edited"`
	URL            string   `json:"url"`
}

// Page is the remote listing envelope.
type Page struct {
	Results []Raw   `json:"results"`
	Next    *string `json:"next"`
}

// Enriched reports whether resident names have been resolved for every reference.
// A planet with no residents has nothing to resolve and never reports enriched;
// views treat it as complete on ResidentsURLs being empty.
func (p *Planet) Enriched() bool {
	return len(p.ResidentsURLs) == len(p.ResidentsNames) && len(p.ResidentsURLs) > 0
}
