package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
	"github.com/samvad-hq/samvad-market-pulse/internal/logger"
)

// Source is the remote news/sentiment capability the controller fetches from.
type Source interface {
	FetchBatch(ctx context.Context, req domain.BatchRequest) (domain.Batch, error)
}

// SeenStore remembers which article ids were already shown for the current query.
type SeenStore interface {
	SeenArticle(id string) (bool, error)
	MarkArticle(id string, page int) error
	Reset() error
}

// Options configures a Controller.
type Options struct {
	Query      domain.Query
	MaxRetries int
	Store      SeenStore
	Logger     logger.Logger
	// OnChange receives a snapshot after every state transition.
	OnChange func(State)
}

// Controller owns the dashboard State and is the only thing that mutates it.
// It is safe for concurrent use; the remote call runs outside the lock.
type Controller struct {
	mu       sync.Mutex
	state    State
	source   Source
	store    SeenStore
	log      logger.Logger
	onChange func(State)
}

// NewController builds a controller for src starting from the given query.
func NewController(src Source, opts Options) (*Controller, error) {
	if src == nil {
		return nil, fmt.Errorf("dashboard source must not be nil")
	}
	w, err := domain.ParseTimeWindow(string(opts.Query.Window))
	if err != nil {
		return nil, err
	}
	q := opts.Query
	q.Window = w
	return &Controller{
		state:    NewState(q, opts.MaxRetries),
		source:   src,
		store:    opts.Store,
		log:      logger.Ensure(opts.Logger),
		onChange: opts.OnChange,
	}, nil
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Load triggers mode for the current query. No-op triggers return the unchanged
// state with ErrInFlight, ErrNothingToLoad, ErrNothingToRetry or ErrRetryExhausted.
// A failed fetch is folded into the returned state and also returned for logging.
func (c *Controller) Load(ctx context.Context, mode Mode) (State, error) {
	return c.load(ctx, mode, nil)
}

// ChangeWindow discards the accumulated articles and loads page 1 for window w.
func (c *Controller) ChangeWindow(ctx context.Context, w domain.TimeWindow) (State, error) {
	w, err := domain.ParseTimeWindow(string(w))
	if err != nil {
		return c.State(), err
	}
	return c.load(ctx, ModeWindowChange, func(q domain.Query) domain.Query {
		q.Window = w
		return q
	})
}

// SubmitSearch submits text as the remote search query and loads page 1.
func (c *Controller) SubmitSearch(ctx context.Context, text string) (State, error) {
	text = strings.TrimSpace(text)
	return c.load(ctx, ModeSearch, func(q domain.Query) domain.Query {
		q.SearchText = text
		return q
	})
}

// SetFilterText updates the local filter term without fetching.
func (c *Controller) SetFilterText(text string) State {
	c.mu.Lock()
	c.state.FilterText = text
	snap := c.state.Clone()
	c.mu.Unlock()
	c.notify(snap)
	return snap
}

// Displayed returns the current articles after the local filter.
func (c *Controller) Displayed() []domain.Article {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Project(c.state.Articles, c.state.FilterText)
}

// load derives the query from the current one with edit, under the same lock
// that begins the request. A nil edit keeps the current query.
func (c *Controller) load(ctx context.Context, mode Mode, edit func(domain.Query) domain.Query) (State, error) {
	c.mu.Lock()
	q := c.state.Query
	if edit != nil {
		q = edit(q)
	}
	next, req, err := Begin(c.state, mode, q)
	if err != nil {
		snap := c.state.Clone()
		c.mu.Unlock()
		c.log.DebugObj("dashboard trigger ignored", "dashboard_trigger", map[string]any{
			"mode":   mode.String(),
			"reason": err.Error(),
		})
		return snap, err
	}
	c.state = next
	begun := c.state.Clone()
	c.mu.Unlock()
	c.notify(begun)

	c.log.DebugObj("dashboard fetch issued", "dashboard_request", requestMeta(req))

	batch, fetchErr := c.source.FetchBatch(ctx, req.BatchRequest())

	c.mu.Lock()
	resolved, applied := Resolve(c.state, req, batch, fetchErr)
	if !applied {
		snap := c.state.Clone()
		c.mu.Unlock()
		c.log.DebugObj("dashboard result discarded", "dashboard_request", requestMeta(req))
		return snap, ErrSuperseded
	}
	if fetchErr == nil {
		c.trackDuplicates(&resolved, req, batch.Articles)
	}
	c.state = resolved
	snap := c.state.Clone()
	c.mu.Unlock()
	c.notify(snap)

	if fetchErr != nil {
		c.log.WarnObj("dashboard fetch failed", "dashboard_failure", map[string]any{
			"request_id":  req.ID,
			"mode":        req.Mode.String(),
			"retry":       req.Retry,
			"page":        req.Page,
			"retry_count": snap.RetryCount,
			"error":       fetchErr.Error(),
		})
		return snap, fetchErr
	}

	c.log.InfoObj("dashboard fetch applied", "dashboard_result", map[string]any{
		"request_id": req.ID,
		"mode":       req.Mode.String(),
		"page":       snap.Page,
		"articles":   len(snap.Articles),
		"has_more":   snap.HasMore,
	})
	return snap, nil
}

// trackDuplicates records article ids per query and counts ids that come back on
// a later page. Duplicates are reported, never removed. Called with c.mu held.
func (c *Controller) trackDuplicates(s *State, req Request, incoming []domain.Article) {
	if c.store == nil {
		return
	}
	if req.Mode.fresh() {
		s.Duplicates = 0
		if err := c.store.Reset(); err != nil {
			c.log.WarnObj("seen store reset failed", "store_error", err.Error())
			return
		}
	}

	var errs []error
	for _, a := range incoming {
		seen, err := c.store.SeenArticle(a.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if seen {
			s.Duplicates++
			c.log.WarnObj("article repeated across pages", "duplicate_article", map[string]any{
				"article_id": a.ID,
				"page":       req.Page,
			})
			continue
		}
		if err := c.store.MarkArticle(a.ID, req.Page); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		c.log.WarnObj("seen store update failed", "store_error", err.Error())
	}
}

func (c *Controller) notify(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

func requestMeta(req Request) map[string]any {
	return map[string]any{
		"request_id": req.ID,
		"generation": req.Generation,
		"mode":       req.Mode.String(),
		"retry":      req.Retry,
		"window":     string(req.Query.Window),
		"search":     req.Query.SearchText,
		"page":       req.Page,
	}
}
