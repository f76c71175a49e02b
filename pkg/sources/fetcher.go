package sources

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-market-pulse/pkg/httpclient"
)

// fetcherRegistry implements FetcherRegistry keyed by source type.
type fetcherRegistry struct {
	builders map[string]Builder
	client   HTTPClient
	timeout  time.Duration
	mu       sync.RWMutex
}

// NewFetcherRegistry builds a registry from type builders. A nil client means each
// source gets its own resty client bounded by the source (or default) timeout.
func NewFetcherRegistry(builders map[string]Builder, client HTTPClient, defaultTimeout time.Duration) FetcherRegistry {
	reg := &fetcherRegistry{
		builders: make(map[string]Builder),
		client:   client,
		timeout:  defaultTimeout,
	}
	for typ, b := range builders {
		reg.register(typ, b)
	}
	return reg
}

func (r *fetcherRegistry) register(typ string, b Builder) {
	if b == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(typ))
	if key == "" {
		return
	}

	r.mu.Lock()
	r.builders[key] = b
	r.mu.Unlock()
}

// FetcherFor builds the fetcher for the given source based on its type.
func (r *fetcherRegistry) FetcherFor(src Source) (Fetcher, error) {
	if r == nil {
		return nil, fmt.Errorf("fetcher registry is nil")
	}
	if strings.TrimSpace(src.ID) == "" {
		return nil, fmt.Errorf("source id is empty")
	}

	r.mu.RLock()
	b, ok := r.builders[strings.ToLower(strings.TrimSpace(src.Type))]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no fetcher registered for source %q (type %q)", src.ID, src.Type)
	}

	client := r.client
	if client == nil {
		client = httpclient.NewRestyClient(src.Timeout(r.timeout))
	}
	return b(src, client)
}

// DefaultHTTPTimeout bounds remote calls when neither config nor source set one.
const DefaultHTTPTimeout = 15 * time.Second

// DefaultFetcherRegistry wires up the known source types.
func DefaultFetcherRegistry(client HTTPClient, defaultTimeout time.Duration) FetcherRegistry {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultHTTPTimeout
	}
	return NewFetcherRegistry(map[string]Builder{
		TypeHTTPJSON: NewHTTPJSONFetcher,
		TypeFixture:  NewFixtureFetcher,
	}, client, defaultTimeout)
}
