package renderers

import "context"

// Renderer receives every dashboard frame (terminal, webhook, queue, etc).
type Renderer interface {
	ID() string
	Type() string
	Render(ctx context.Context, f Frame) error
}
