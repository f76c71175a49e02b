package renderers

import (
	"context"
	"errors"
	"fmt"
)

// Fanout dispatches frames to all configured renderers.
type Fanout struct {
	renderers []Renderer
}

// NewFanout builds a dispatcher that fans out frames across renderers.
func NewFanout(rs []Renderer) *Fanout {
	cp := make([]Renderer, 0, len(rs))
	for _, r := range rs {
		if r == nil {
			continue
		}
		cp = append(cp, r)
	}
	return &Fanout{renderers: cp}
}

// Render forwards the frame to every registered renderer.
// It returns the number of renderers that successfully handled the frame.
func (f *Fanout) Render(ctx context.Context, frame Frame) (int, error) {
	if f == nil || len(f.renderers) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, r := range f.renderers {
		if err := r.Render(ctx, frame); err != nil {
			errs = append(errs, fmt.Errorf("%s renderer[%s]: %w", r.Type(), r.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active renderers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.renderers)
}

// Close releases renderers that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	return closeAll(f.renderers)
}
