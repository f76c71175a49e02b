package renderers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/samvad-hq/samvad-market-pulse/internal/logger"
)

// Deps are shared collaborators handed to every builder.
type Deps struct {
	Log logger.Logger
	// Out is where the terminal renderer writes; stdout when nil.
	Out io.Writer
}

func (d Deps) normalize() Deps {
	d.Log = logger.Ensure(d.Log)
	if d.Out == nil {
		d.Out = os.Stdout
	}
	return d
}

// Builder creates a Renderer from a config entry.
type Builder func(ctx context.Context, cfg RendererConfig, deps Deps) (Renderer, error)

// Registry maps renderer types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	RendererFor(ctx context.Context, cfg RendererConfig, deps Deps) (Renderer, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{
		builders: make(map[string]Builder),
	}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a renderer type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// RendererFor returns the renderer built for the provided config.
func (r *registry) RendererFor(ctx context.Context, cfg RendererConfig, deps Deps) (Renderer, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("renderer %q has no type configured", cfg.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no renderer registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg, deps.normalize())
}

// DefaultRegistry wires up known renderers.
func DefaultRegistry() Registry {
	builders := map[string]Builder{
		TypeTerminal: newTerminalRenderer,
		TypeHTTP:     newHTTPRenderer,
		TypeSQS:      newSQSRenderer,
		TypeSNS:      newSNSRenderer,
		TypePubSub:   newPubSubRenderer,
	}
	return NewRegistry(builders)
}

// BuildAll instantiates renderers for configs using the registry.
func BuildAll(ctx context.Context, reg Registry, cfgs []RendererConfig, deps Deps) ([]Renderer, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}

	var out []Renderer
	for _, cfg := range cfgs {
		r, err := reg.RendererFor(ctx, cfg, deps)
		if err != nil {
			closeAll(out)
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// closer is implemented by renderers holding client connections.
type closer interface {
	Close() error
}

func closeAll(rs []Renderer) error {
	var errs []error
	for _, r := range rs {
		if c, ok := r.(closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s renderer[%s]: %w", r.Type(), r.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}
