package renderers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPRendererSuccess(t *testing.T) {
	var got Frame
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if h := r.Header.Get("X-Test"); h != "1" {
			t.Errorf("missing header, got %s", h)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r, err := newHTTPRenderer(context.Background(), RendererConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPRendererConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			Headers:        map[string]string{"X-Test": "1"},
			TimeoutSeconds: 2,
		},
	}, Deps{Log: nopLog})
	if err != nil {
		t.Fatalf("newHTTPRenderer: %v", err)
	}

	if err := r.Render(context.Background(), sampleFrame()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got.SessionID != "session-1" || len(got.View.Articles) != 1 || got.View.Articles[0].Title != "Fed holds" {
		t.Fatalf("server received unexpected frame: %+v", got)
	}
}

func TestHTTPRendererErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	r, err := newHTTPRenderer(context.Background(), RendererConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPRendererConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			TimeoutSeconds: 1,
		},
	}, Deps{})
	if err != nil {
		t.Fatalf("newHTTPRenderer: %v", err)
	}

	if err := r.Render(context.Background(), Frame{}); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}
