package planet

// Normalize converts a raw listing entry into a Planet ready for insertion.
// Resident references are copied verbatim and the resolved names start empty.
// The returned planet has no ID; the store assigns one.
func Normalize(r Raw, batchID string) Planet {
	residents := make([]string, len(r.Residents))
	copy(residents, r.Residents)

	films := make([]string, len(r.Films))
	copy(films, r.Films)

	return Planet{
		Name:           r.Name,
		RotationPeriod: r.RotationPeriod,
		OrbitalPeriod:  r.OrbitalPeriod,
		Diameter:       r.Diameter,
		Climate:        r.Climate,
		Gravity:        r.Gravity,
		Terrain:        r.Terrain,
		SurfaceWater:   r.SurfaceWater,
		Population:     r.Population,
		Films:          films,
		Created:        r.Created,
		Edited:         r.Edited,
		URL:            r.URL,
		ResidentsURLs:  residents,
		ResidentsNames: []string{},
		BatchID:        batchID,
	}
}

// NormalizePage normalizes every result of a page, preserving order.
func NormalizePage(p *Page, batchID string) []Planet {
	if p == nil {
		return []Planet{}
	}
	out := make([]Planet, 0, len(p.Results))
	for _, r := range p.Results {
		out = append(out, Normalize(r, batchID))
	}
	return out
}
