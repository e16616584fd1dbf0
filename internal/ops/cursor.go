package ops

import (
	"context"

	"github.com/hpungsan/holocron/internal/cursor"
)

// CursorOutput contains the stored cursor and the URL the next fetch would use.
type CursorOutput struct {
	Next     *string `json:"next"`
	Resolved string  `json:"resolved"`
}

// GetCursor reports the stored cursor without fetching anything.
func GetCursor(ctx context.Context, d Deps) (*CursorOutput, error) {
	if err := d.requireStore(); err != nil {
		return nil, err
	}
	next, err := cursor.New(d.Store).Get(ctx)
	if err != nil {
		return nil, err
	}

	resolved := d.firstPage()
	if next != nil && *next != "" {
		resolved = *next
	}
	return &CursorOutput{Next: next, Resolved: resolved}, nil
}
