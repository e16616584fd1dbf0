package ops

import (
	"context"

	"github.com/hpungsan/holocron/internal/errors"
	"github.com/hpungsan/holocron/internal/planet"
)

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []planet.Planet `json:"items"`
	Total int             `json:"total"`
}

// List returns every stored planet in insertion order. It never touches the network.
func List(ctx context.Context, d Deps) (*ListOutput, error) {
	if err := d.requireStore(); err != nil {
		return nil, err
	}
	planets, err := readPlanets(ctx, d.Store)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Items: planets, Total: len(planets)}, nil
}

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID *int64
}

// Get returns one stored planet by ID.
func Get(ctx context.Context, d Deps, input GetInput) (*planet.Planet, error) {
	if input.ID == nil {
		return nil, errors.NewNotFound("")
	}
	if err := d.requireStore(); err != nil {
		return nil, err
	}
	return getPlanet(ctx, d.Store, *input.ID)
}
