package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-market-pulse/internal/config"
	"github.com/samvad-hq/samvad-market-pulse/internal/dashboard"
	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
	"github.com/samvad-hq/samvad-market-pulse/internal/logger"
	"github.com/samvad-hq/samvad-market-pulse/internal/storage"
	"github.com/samvad-hq/samvad-market-pulse/internal/view"
	"github.com/samvad-hq/samvad-market-pulse/pkg/renderers"
	"github.com/samvad-hq/samvad-market-pulse/pkg/sources"
	"github.com/samvad-hq/samvad-market-pulse/pkg/sources/sourceobs"
)

// Deps are the collaborators a Session drives. NewSession builds them from config.
type Deps struct {
	Fetcher   sources.Fetcher
	Store     storage.Store
	Renderers []renderers.Renderer
}

// Session represents one dashboard session. It owns the controller, turns user
// commands into loads and fans every state change out to the renderers.
type Session struct {
	id       string
	cfg      *config.Config
	log      logger.Logger
	ctrl     *dashboard.Controller
	store    storage.Store
	fanout   *renderers.Fanout
	location *time.Location

	modeMu sync.RWMutex
	mode   view.Mode

	renderMu sync.Mutex
	seq      atomic.Uint64
	trigger  atomic.Value

	inflight  sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// NewSession builds a session runtime from config files.
func NewSession(ctx context.Context, cfg *config.Config, log logger.Logger) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	sourceReg, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	src, err := sourceReg.Select(cfg.SourceID)
	if err != nil {
		return nil, fmt.Errorf("select source: %w", err)
	}
	fetcher, err := sources.DefaultFetcherRegistry(nil, cfg.RequestTimeout).FetcherFor(src)
	if err != nil {
		return nil, fmt.Errorf("build fetcher: %w", err)
	}
	log.InfoObj("source selected", "source_meta", map[string]any{
		"id":              src.ID,
		"name":            src.Name,
		"type":            src.Type,
		"timeout_seconds": int(src.Timeout(cfg.RequestTimeout).Seconds()),
	})

	rendererReg, err := renderers.LoadRegistry(cfg.RenderersFile)
	if err != nil {
		return nil, fmt.Errorf("load renderers registry: %w", err)
	}
	enabled := rendererReg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no renderers configured")
	}
	rs, err := renderers.BuildAll(ctx, renderers.DefaultRegistry(), enabled, renderers.Deps{Log: log})
	if err != nil {
		return nil, fmt.Errorf("build renderers: %w", err)
	}
	summaries := make([]map[string]string, 0, len(enabled))
	for _, rc := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   rc.ID,
			"type": rc.Type,
		})
	}
	log.InfoObj("renderers registry loaded", "renderers_meta", map[string]any{
		"count":     len(summaries),
		"renderers": summaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltDir)
	if err != nil {
		renderers.NewFanout(rs).Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"dir":  cfg.BBoltDir,
	})

	return New(cfg, Deps{
		Fetcher:   sourceobs.Wrap(fetcher, log),
		Store:     store,
		Renderers: rs,
	}, log)
}

// New wires a session from already built collaborators.
func New(cfg *config.Config, deps Deps, log logger.Logger) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if deps.Fetcher == nil {
		return nil, fmt.Errorf("session fetcher must not be nil")
	}
	window, err := domain.ParseTimeWindow(cfg.DefaultTimeWindow)
	if err != nil {
		return nil, err
	}
	mode, err := view.ParseMode(cfg.DefaultViewMode)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:       uuid.NewString(),
		cfg:      cfg,
		log:      logger.Ensure(log),
		store:    deps.Store,
		fanout:   renderers.NewFanout(deps.Renderers),
		location: cfg.Location,
		mode:     mode,
	}
	if s.store == nil {
		s.store, _ = storage.NewStore("none", "")
	}

	ctrl, err := dashboard.NewController(deps.Fetcher, dashboard.Options{
		Query:      domain.Query{Window: window},
		MaxRetries: cfg.MaxRetries,
		Store:      s.store,
		Logger:     s.log,
		OnChange:   func(dashboard.State) { s.emit(context.Background()) },
	})
	if err != nil {
		return nil, err
	}
	s.ctrl = ctrl
	return s, nil
}

// ID returns the session id stamped on every frame.
func (s *Session) ID() string { return s.id }

// Controller exposes the dashboard controller.
func (s *Session) Controller() *dashboard.Controller { return s.ctrl }

// Run performs the initial load, then processes line commands from commands until
// quit, EOF or ctx cancellation. In-flight loads are awaited before returning.
func (s *Session) Run(ctx context.Context, commands io.Reader) error {
	if s == nil || s.ctrl == nil {
		return fmt.Errorf("session is not initialized")
	}
	defer s.Close()

	s.log.InfoObj("session starting", "session_state", map[string]any{
		"session_id":       s.id,
		"renderers_count":  s.fanout.Size(),
		"refresh_interval": s.cfg.RefreshInterval.String(),
		"time_window":      s.cfg.DefaultTimeWindow,
	})

	s.dispatch(ctx, "initial", func(ctx context.Context) (dashboard.State, error) {
		return s.ctrl.Load(ctx, dashboard.ModeInitial)
	})

	lines := readLines(ctx, commands)

	var tick <-chan time.Time
	if s.cfg.RefreshInterval > 0 {
		ticker := time.NewTicker(s.cfg.RefreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

loop:
	for {
		select {
		case <-ctx.Done():
			s.log.InfoObj("session exiting", "reason", ctx.Err().Error())
			break loop
		case line, ok := <-lines:
			if !ok {
				s.log.InfoObj("session exiting", "reason", "input closed")
				break loop
			}
			if quit := s.Handle(ctx, line); quit {
				s.log.InfoObj("session exiting", "reason", "quit")
				break loop
			}
		case <-tick:
			s.dispatch(ctx, "auto_refresh", func(ctx context.Context) (dashboard.State, error) {
				return s.ctrl.Load(ctx, dashboard.ModeRefresh)
			})
		}
	}

	s.inflight.Wait()
	return nil
}

// Handle applies one command line and reports whether the session should end.
func (s *Session) Handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "quit", "exit", "q":
		return true
	case "search":
		s.dispatch(ctx, "search", func(ctx context.Context) (dashboard.State, error) {
			return s.ctrl.SubmitSearch(ctx, arg)
		})
	case "filter":
		s.setTrigger("filter")
		s.ctrl.SetFilterText(arg)
	case "window":
		w, err := domain.ParseTimeWindow(arg)
		if err != nil {
			s.log.WarnObj("invalid window command", "command_error", err.Error())
			return false
		}
		s.dispatch(ctx, "window_change", func(ctx context.Context) (dashboard.State, error) {
			return s.ctrl.ChangeWindow(ctx, w)
		})
	case "more":
		s.dispatch(ctx, "load_more", func(ctx context.Context) (dashboard.State, error) {
			return s.ctrl.Load(ctx, dashboard.ModeLoadMore)
		})
	case "refresh":
		s.dispatch(ctx, "refresh", func(ctx context.Context) (dashboard.State, error) {
			return s.ctrl.Load(ctx, dashboard.ModeRefresh)
		})
	case "retry":
		s.dispatch(ctx, "retry", func(ctx context.Context) (dashboard.State, error) {
			return s.ctrl.Load(ctx, dashboard.ModeRetry)
		})
	case "view":
		m, err := view.ParseMode(arg)
		if err != nil {
			s.log.WarnObj("invalid view command", "command_error", err.Error())
			return false
		}
		s.modeMu.Lock()
		s.mode = m
		s.modeMu.Unlock()
		s.setTrigger("view")
		s.emit(ctx)
	default:
		s.log.WarnObj("unknown command", "command", cmd)
	}
	return false
}

// Wait blocks until every dispatched load has resolved.
func (s *Session) Wait() {
	s.inflight.Wait()
}

// Close releases renderers and the session store. It is safe to call more than once.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if n, err := s.store.Count(); err == nil {
			s.log.InfoObj("session summary", "session_summary", map[string]any{
				"session_id":     s.id,
				"frames":         s.seq.Load(),
				"articles_known": n,
			})
		}
		var errs []error
		if err := s.fanout.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
		s.closeErr = errors.Join(errs...)
		if s.closeErr != nil {
			s.log.ErrorObj("session close failed", "error", s.closeErr.Error())
		}
	})
	return s.closeErr
}

// dispatch runs a load in its own goroutine so later triggers can supersede it.
func (s *Session) dispatch(ctx context.Context, trigger string, load func(context.Context) (dashboard.State, error)) {
	s.setTrigger(trigger)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		_, err := load(ctx)
		switch {
		case err == nil:
		case errors.Is(err, dashboard.ErrInFlight),
			errors.Is(err, dashboard.ErrNothingToLoad),
			errors.Is(err, dashboard.ErrNothingToRetry),
			errors.Is(err, dashboard.ErrRetryExhausted),
			errors.Is(err, dashboard.ErrSuperseded):
			s.log.DebugObj("command had no effect", "command_result", map[string]any{
				"trigger": trigger,
				"reason":  err.Error(),
			})
		default:
			// fetch failures are already folded into the state and logged by the controller
		}
	}()
}

// emit renders the current state. Frames are serialized and always built from a
// fresh snapshot so a late callback cannot publish an older state.
func (s *Session) emit(ctx context.Context) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	s.modeMu.RLock()
	mode := s.mode
	s.modeMu.RUnlock()

	st := s.ctrl.State()
	vm := view.Build(st, view.Options{Mode: mode, Location: s.location})
	frame := renderers.NewFrame(s.id, s.seq.Add(1), s.currentTrigger(), vm)

	if _, err := s.fanout.Render(ctx, frame); err != nil {
		s.log.WarnObj("renderer fanout failed", "render_error", map[string]any{
			"session_id": s.id,
			"sequence":   frame.Sequence,
			"error":      err.Error(),
		})
	}
}

func (s *Session) setTrigger(name string) {
	s.trigger.Store(name)
}

func (s *Session) currentTrigger() string {
	if v, ok := s.trigger.Load().(string); ok {
		return v
	}
	return ""
}

// readLines streams trimmed lines from r until EOF or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		if r == nil {
			<-ctx.Done()
			return
		}
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case out <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
