package renderers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/samvad-hq/samvad-market-pulse/internal/logger"
	"github.com/samvad-hq/samvad-market-pulse/pkg/httpclient"
)

// httpRenderer posts every frame as JSON to a webhook.
type httpRenderer struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
	typ     string
	log     logger.Logger
}

func newHTTPRenderer(_ context.Context, cfg RendererConfig, deps Deps) (Renderer, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("renderer %q missing http configuration", cfg.ID)
	}

	client := httpclient.NewRestyHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)

	return &httpRenderer{
		id:      cfg.ID,
		typ:     TypeHTTP,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  client,
		log:     logger.Ensure(deps.Log),
	}, nil
}

func (h *httpRenderer) ID() string   { return h.id }
func (h *httpRenderer) Type() string { return h.typ }

func (h *httpRenderer) Render(ctx context.Context, f Frame) error {
	req := h.client.R().
		SetContext(ctx).
		SetBody(f)

	if len(h.headers) > 0 {
		req.SetHeaders(h.headers)
	}

	req.SetHeader("Content-Type", "application/json")

	resp, err := req.Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if resp.IsError() {
		snippet := readBodySnippet(resp.Body())
		return fmt.Errorf("http response status %d: %s", resp.StatusCode(), snippet)
	}
	h.log.DebugObj("http renderer delivered frame", "renderer_http_delivery", map[string]any{
		"renderer_id": h.id,
		"sequence":    f.Sequence,
		"status":      resp.StatusCode(),
	})
	return nil
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
