package planet

import (
	"fmt"
	"strings"
)

// Summary is a planet without its reference lists.
// Used for list output to keep payloads small.
type Summary struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Climate       string `json:"climate"`
	Terrain       string `json:"terrain"`
	Population    string `json:"population"`
	ResidentCount int    `json:"resident_count"`
	Enriched      bool   `json:"enriched"`
}

// ToSummary converts a Planet to a Summary.
func (p *Planet) ToSummary() Summary {
	return Summary{
		ID:            p.ID,
		Name:          p.Name,
		Climate:       p.Climate,
		Terrain:       p.Terrain,
		Population:    p.Population,
		ResidentCount: len(p.ResidentsURLs),
		Enriched:      p.Enriched(),
	}
}

// Markdown renders the planet as a markdown document for the detail view.
func (p *Planet) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n", orUnknown(p.Name))
	b.WriteString("| Attribute | Value |\n|---|---|\n")
	rows := [][2]string{
		{"Climate", p.Climate},
		{"Terrain", p.Terrain},
		{"Gravity", p.Gravity},
		{"Diameter", p.Diameter},
		{"Population", p.Population},
		{"Surface water", p.SurfaceWater},
		{"Rotation period", p.RotationPeriod},
		{"Orbital period", p.OrbitalPeriod},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", r[0], orUnknown(r[1]))
	}

	b.WriteString("\n### Residents\n\n")
	switch {
	case len(p.ResidentsURLs) == 0:
		b.WriteString("No known residents.\n")
	case len(p.ResidentsNames) == 0:
		fmt.Fprintf(&b, "%d residents not yet resolved.\n", len(p.ResidentsURLs))
	default:
		for _, name := range p.ResidentsNames {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}

	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
