package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Package sources contains the remote news/sentiment source configs and fetchers.

const (
	TypeHTTPJSON = "http_json"
	TypeFixture  = "fixture"

	defaultPath = "/news"
)

// Source is one remote news/sentiment endpoint declared in the sources file.
type Source struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Type           string         `json:"type" yaml:"type"`
	BaseURL        string         `json:"base_url" yaml:"base_url"`
	Path           string         `json:"path" yaml:"path"`
	DatasetFile    string         `json:"dataset_file" yaml:"dataset_file"`
	TimeoutSeconds int            `json:"timeout_seconds" yaml:"timeout_seconds"`
	Config         map[string]any `json:"config" yaml:"config"`
}

type registryFile struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// Registry holds the sources loaded from a config file.
type Registry struct {
	mu      sync.RWMutex
	sources []Source
	idx     map[string]Source
}

// LoadRegistry loads the source registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	fileReg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	baseDir := filepath.Dir(path)
	reg := &Registry{
		sources: make([]Source, 0, len(fileReg.Sources)),
		idx:     make(map[string]Source, len(fileReg.Sources)),
	}
	for i := range fileReg.Sources {
		s := sanitizeSource(fileReg.Sources[i], baseDir)
		if err := validateSource(s); err != nil {
			return nil, fmt.Errorf("source[%d]: %w", i, err)
		}
		if _, exists := reg.idx[s.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", s.ID)
		}
		reg.sources = append(reg.sources, s)
		reg.idx[s.ID] = s
	}

	return reg, nil
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalRegistry(name string, data []byte, fn unmarshalFn) (registryFile, error) {
	var reg registryFile
	if err := fn(data, &reg); err != nil {
		return registryFile{}, fmt.Errorf("decode %s sources: %w", name, err)
	}
	return reg, nil
}

func sanitizeSource(s Source, baseDir string) Source {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.Type = strings.ToLower(strings.TrimSpace(s.Type))
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	s.Path = strings.TrimSpace(s.Path)
	s.DatasetFile = strings.TrimSpace(s.DatasetFile)

	if s.Path == "" {
		s.Path = defaultPath
	}
	if !strings.HasPrefix(s.Path, "/") {
		s.Path = "/" + s.Path
	}
	// dataset paths are relative to the sources file
	if s.DatasetFile != "" && !filepath.IsAbs(s.DatasetFile) {
		s.DatasetFile = filepath.Join(baseDir, s.DatasetFile)
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	return s
}

func validateSource(s Source) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required for source %q", s.ID)
	}
	switch s.Type {
	case "":
		return fmt.Errorf("type is required for source %q", s.ID)
	case TypeHTTPJSON:
		if s.BaseURL == "" {
			return fmt.Errorf("base_url is required for source %q", s.ID)
		}
	case TypeFixture:
		if s.DatasetFile == "" {
			return fmt.Errorf("dataset_file is required for source %q", s.ID)
		}
	}
	return nil
}

// All returns all configured sources in file order.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// ByID returns the source entry for the given id.
func (r *Registry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Source{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.idx[id]
	return s, ok
}

// Select returns the source named by id, or the first configured source when id is empty.
func (r *Registry) Select(id string) (Source, error) {
	if strings.TrimSpace(id) != "" {
		s, ok := r.ByID(id)
		if !ok {
			return Source{}, fmt.Errorf("source %q not found in registry", id)
		}
		return s, nil
	}
	all := r.All()
	if len(all) == 0 {
		return Source{}, errors.New("no sources configured")
	}
	return all[0], nil
}

// Timeout returns the per-source request timeout, or fallback when unset.
func (s Source) Timeout(fallback time.Duration) time.Duration {
	if s.TimeoutSeconds <= 0 {
		return fallback
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}
