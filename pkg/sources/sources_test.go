package sources

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "sources.yaml", `
sources:
  - id: pulse
    name: Market Pulse API
    type: HTTP_JSON
    base_url: https://api.example.com/v1/
    timeout_seconds: 5
    config:
      api_key: env:PULSE_API_KEY
  - id: offline
    name: Offline sample
    type: fixture
    dataset_file: sample.yaml
`)

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(reg.All()))
	}

	pulse, ok := reg.ByID("pulse")
	if !ok {
		t.Fatalf("expected pulse source")
	}
	if pulse.Type != TypeHTTPJSON || pulse.BaseURL != "https://api.example.com/v1" || pulse.Path != "/news" {
		t.Fatalf("unexpected sanitized source %+v", pulse)
	}
	if pulse.Timeout(time.Minute) != 5*time.Second {
		t.Fatalf("unexpected timeout %v", pulse.Timeout(time.Minute))
	}

	offline, _ := reg.ByID("offline")
	if offline.DatasetFile != filepath.Join(dir, "sample.yaml") {
		t.Fatalf("dataset path not resolved relative to sources file: %s", offline.DatasetFile)
	}
	if offline.Timeout(time.Minute) != time.Minute {
		t.Fatalf("expected fallback timeout")
	}

	first, err := reg.Select("")
	if err != nil || first.ID != "pulse" {
		t.Fatalf("Select default = %+v, %v", first, err)
	}
	if _, err := reg.Select("missing"); err == nil {
		t.Fatalf("expected error selecting unknown source")
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	file := writeFile(t, t.TempDir(), "sources.json",
		`{"sources":[{"id":"a","name":"A","type":"http_json","base_url":"https://a.example","path":"feed"}]}`)

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	a, _ := reg.ByID("a")
	if a.Path != "/feed" {
		t.Fatalf("expected path to gain leading slash, got %q", a.Path)
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	cases := map[string]string{
		"duplicate": `
sources:
  - {id: dup, name: One, type: http_json, base_url: https://one.example}
  - {id: dup, name: Two, type: http_json, base_url: https://two.example}
`,
		"missing base url": `
sources:
  - {id: x, name: X, type: http_json}
`,
		"missing dataset": `
sources:
  - {id: x, name: X, type: fixture}
`,
		"empty": `sources: []`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			file := writeFile(t, t.TempDir(), "sources.yaml", content)
			if _, err := LoadRegistry(file); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestHeadersResolvesEnvAPIKey(t *testing.T) {
	src := Source{Config: map[string]any{
		ConfigUserAgentKey:    "pulse/1.0",
		ConfigAPIKeyKey:       "env:PULSE_KEY",
		ConfigAPIKeyHeaderKey: "Authorization",
	}}
	headers := Headers(src, func(name string) string {
		if name == "PULSE_KEY" {
			return "Bearer abc"
		}
		return ""
	})
	if headers["Authorization"] != "Bearer abc" {
		t.Fatalf("api key header not resolved: %#v", headers)
	}
	if headers["User-Agent"] != "pulse/1.0" || headers["Accept"] != "application/json" {
		t.Fatalf("unexpected headers %#v", headers)
	}
}
