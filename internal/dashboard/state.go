package dashboard

import (
	"errors"

	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
)

// DefaultMaxRetries is the number of failed fetches after which "Try Again" is withdrawn.
const DefaultMaxRetries = 3

var (
	// ErrInFlight is returned when an identical request is already pending, or when
	// load-more is asked for while any fetch is pending.
	ErrInFlight = errors.New("dashboard: fetch already in flight")
	// ErrNothingToLoad is returned by load-more once the last batch was short.
	ErrNothingToLoad = errors.New("dashboard: no more pages")
	// ErrNothingToRetry is returned by retry when the last fetch did not fail.
	ErrNothingToRetry = errors.New("dashboard: nothing to retry")
	// ErrRetryExhausted is returned by retry once the retry cap is reached.
	ErrRetryExhausted = errors.New("dashboard: retries exhausted, refresh to try again")
	// ErrSuperseded is returned when a newer trigger replaced the request before it resolved.
	ErrSuperseded = errors.New("dashboard: result superseded by a newer request")
)

// LoadState is the fetch lifecycle shown by the view.
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Refreshing
	Error
)

func (s LoadState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Refreshing:
		return "refreshing"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Mode names the trigger of a load.
type Mode int

const (
	ModeInitial Mode = iota
	ModeRefresh
	ModeWindowChange
	ModeSearch
	ModeLoadMore
	ModeRetry
)

func (m Mode) String() string {
	switch m {
	case ModeInitial:
		return "initial"
	case ModeRefresh:
		return "refresh"
	case ModeWindowChange:
		return "window_change"
	case ModeSearch:
		return "search"
	case ModeLoadMore:
		return "load_more"
	case ModeRetry:
		return "retry"
	default:
		return "unknown"
	}
}

// fresh reports whether the mode replaces the article set with page 1.
func (m Mode) fresh() bool {
	return m != ModeLoadMore && m != ModeRetry
}

// Request is one issued fetch. Mode is the original trigger, even for retries.
type Request struct {
	ID         string
	Generation uint64
	Mode       Mode
	Retry      bool
	Query      domain.Query
	Page       int
}

// BatchRequest converts the request for a source.
func (r Request) BatchRequest() domain.BatchRequest {
	return domain.BatchRequest{Query: r.Query, Page: r.Page, PageSize: domain.PageSize}
}

func (r Request) sameKey(o Request) bool {
	return r.Query == o.Query && r.Page == o.Page
}

// State is everything the dashboard knows about the current session.
type State struct {
	Query      domain.Query
	FilterText string

	LoadState    LoadState
	ErrorMessage string
	RetryCount   int
	MaxRetries   int
	Page         int
	HasMore      bool

	Articles  []domain.Article
	Sentiment domain.SentimentSummary
	Trending  []domain.TrendingTopic

	// Duplicates counts articles seen again on a later page of the same query.
	Duplicates int

	// Generation increases with every issued request; only the latest resolves.
	Generation uint64
	// Pending is the request currently awaited, if any.
	Pending *Request
	// Failed is the last failed request, replayed by ModeRetry.
	Failed *Request
	// DataQuery is the query the current Articles belong to.
	DataQuery *domain.Query
}

// NewState returns the state of a freshly mounted dashboard.
func NewState(q domain.Query, maxRetries int) State {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return State{Query: q, LoadState: Idle, Page: 1, MaxRetries: maxRetries}
}

// CanRetry reports whether the "Try Again" affordance is offered.
func (s State) CanRetry() bool {
	return s.LoadState == Error && s.Failed != nil && s.RetryCount < s.MaxRetries
}

// InFlight reports whether a request is pending.
func (s State) InFlight() bool {
	return s.Pending != nil
}

// Clone returns a copy that shares no slices or pointers with s.
func (s State) Clone() State {
	out := s
	out.Articles = append([]domain.Article(nil), s.Articles...)
	out.Trending = append([]domain.TrendingTopic(nil), s.Trending...)
	if s.Pending != nil {
		p := *s.Pending
		out.Pending = &p
	}
	if s.Failed != nil {
		f := *s.Failed
		out.Failed = &f
	}
	if s.DataQuery != nil {
		q := *s.DataQuery
		out.DataQuery = &q
	}
	return out
}

// Begin decides whether a trigger issues a request and moves the state into
// Loading or Refreshing. q is only used by fresh modes.
func Begin(s State, mode Mode, q domain.Query) (State, Request, error) {
	var req Request

	switch mode {
	case ModeLoadMore:
		if s.Pending != nil {
			return s, Request{}, ErrInFlight
		}
		if !s.HasMore {
			return s, Request{}, ErrNothingToLoad
		}
		req = Request{Mode: ModeLoadMore, Query: s.Query, Page: s.Page + 1}
		s.LoadState = Loading

	case ModeRetry:
		if s.Pending != nil {
			return s, Request{}, ErrInFlight
		}
		if s.LoadState != Error || s.Failed == nil {
			return s, Request{}, ErrNothingToRetry
		}
		if s.RetryCount >= s.MaxRetries {
			return s, Request{}, ErrRetryExhausted
		}
		req = *s.Failed
		req.Retry = true
		s.LoadState = Loading

	default:
		req = Request{Mode: mode, Query: q, Page: 1}
		if s.Pending != nil && s.Pending.sameKey(req) {
			return s, Request{}, ErrInFlight
		}
		// Page stays with the loaded articles until the request resolves.
		if q.Window != s.Query.Window {
			s.Articles = nil
			s.HasMore = false
			s.DataQuery = nil
			s.Page = 1
		}
		s.Query = q
		s.LoadState = Loading
		if mode == ModeRefresh {
			s.RetryCount = 0
			s.LoadState = Refreshing
		}
	}

	s.Generation++
	req.Generation = s.Generation
	req.ID = uuid.NewString()
	s.ErrorMessage = ""
	pending := req
	s.Pending = &pending
	return s, req, nil
}

// Resolve applies the outcome of req. A result for anything but the latest
// generation is discarded and reported as not applied.
func Resolve(s State, req Request, batch domain.Batch, err error) (State, bool) {
	if req.Generation != s.Generation {
		return s, false
	}
	s.Pending = nil

	if err != nil {
		s.LoadState = Error
		s.RetryCount++
		s.ErrorMessage = Message(err)
		failed := req
		failed.Retry = false
		s.Failed = &failed
		if req.Mode.fresh() && (s.DataQuery == nil || *s.DataQuery != req.Query) {
			s.Articles = nil
			s.HasMore = false
			s.Page = 1
		}
		return s, true
	}

	s.LoadState = Idle
	s.RetryCount = 0
	s.ErrorMessage = ""
	s.Failed = nil
	s.Sentiment = batch.Sentiment.Normalize()
	s.Trending = append([]domain.TrendingTopic(nil), batch.Trending...)

	if req.Mode.fresh() {
		s.Articles = append([]domain.Article(nil), batch.Articles...)
		s.Page = 1
	} else {
		s.Articles = Append(s.Articles, batch.Articles)
		s.Page = req.Page
	}
	s.HasMore = HasMore(len(batch.Articles), domain.PageSize)
	dq := req.Query
	s.DataQuery = &dq
	return s, true
}
