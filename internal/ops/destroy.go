package ops

import (
	"context"
)

// DestroyOutput contains the result of the Destroy operation.
type DestroyOutput struct {
	Destroyed bool `json:"destroyed"`
	// ReloadRequired tells the consuming layer to re-initialize its views.
	ReloadRequired bool `json:"reload_required"`
}

// Destroy deletes the local database. The next operation recreates it empty.
func Destroy(ctx context.Context, d Deps) (*DestroyOutput, error) {
	if err := d.requireStore(); err != nil {
		return nil, err
	}
	if err := d.Store.Destroy(ctx); err != nil {
		return nil, err
	}
	return &DestroyOutput{Destroyed: true, ReloadRequired: true}, nil
}
