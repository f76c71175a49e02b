package renderers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// Supported renderer types.
	TypeTerminal = "terminal"
	TypeHTTP     = "http"
	TypeSQS      = "sqs"
	TypeSNS      = "sns"
	TypePubSub   = "pubsub"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
	terminalDefaultWidth      = 100
)

// configFile represents the structure of the renderers configuration file.
type configFile struct {
	Renderers []RendererConfig `json:"renderers" yaml:"renderers"`
}

// RendererConfig represents a single renderer entry declared in config files.
type RendererConfig struct {
	ID       string                  `json:"id" yaml:"id"`
	Type     string                  `json:"type" yaml:"type"`
	Enabled  *bool                   `json:"enabled" yaml:"enabled"`
	Terminal *TerminalRendererConfig `json:"terminal" yaml:"terminal"`
	HTTP     *HTTPRendererConfig     `json:"http" yaml:"http"`
	SQS      *SQSRendererConfig      `json:"sqs" yaml:"sqs"`
	SNS      *SNSRendererConfig      `json:"sns" yaml:"sns"`
	PubSub   *PubSubRendererConfig   `json:"pubsub" yaml:"pubsub"`
}

// TerminalRendererConfig controls the text dashboard written to stdout.
type TerminalRendererConfig struct {
	Width       int `json:"width" yaml:"width"`
	MaxArticles int `json:"max_articles" yaml:"max_articles"`
}

// HTTPRendererConfig holds generic HTTP sink settings.
type HTTPRendererConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// AWSCredentials optionally pins static credentials instead of the default chain.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// SQSRendererConfig holds AWS SQS specific settings.
type SQSRendererConfig struct {
	QueueURL       string `json:"uri" yaml:"uri"`
	Region         string `json:"region" yaml:"region"`
	Endpoint       string `json:"endpoint" yaml:"endpoint"`
	AWSCredentials `json:",inline" yaml:",inline"`
}

// SNSRendererConfig holds AWS SNS specific settings.
type SNSRendererConfig struct {
	TopicARN       string `json:"topic_arn" yaml:"topic_arn"`
	Region         string `json:"region" yaml:"region"`
	Endpoint       string `json:"endpoint" yaml:"endpoint"`
	AWSCredentials `json:",inline" yaml:",inline"`
}

// PubSubRendererConfig holds Google Cloud Pub/Sub settings.
type PubSubRendererConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// ConfigRegistry materializes renderer definitions loaded from config files.
type ConfigRegistry struct {
	mu        sync.RWMutex
	renderers []RendererConfig
	idx       map[string]RendererConfig
}

// LoadRegistry loads the renderer registry from a YAML/JSON file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("renderers file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open renderers file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read renderers file: %w", err)
	}

	fileReg, err := parseRendererRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Renderers) == 0 {
		return nil, errors.New("renderers file contains no renderers entries")
	}

	reg := &ConfigRegistry{
		renderers: make([]RendererConfig, len(fileReg.Renderers)),
		idx:       make(map[string]RendererConfig, len(fileReg.Renderers)),
	}

	for i := range fileReg.Renderers {
		cfg := sanitizeRendererConfig(fileReg.Renderers[i])
		if err := validateRendererConfig(cfg); err != nil {
			return nil, fmt.Errorf("renderers[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate renderer id %q", cfg.ID)
		}
		reg.renderers[i] = cfg
		reg.idx[cfg.ID] = cfg
	}

	return reg, nil
}

// parseRendererRegistry attempts to decode the renderers file content.
func parseRendererRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalRendererRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("renderers file format not recognized (expected YAML or JSON)")
}

func unmarshalRendererRegistry(name string, data []byte, fn func([]byte, any) error) (configFile, error) {
	var reg configFile
	if err := fn(data, &reg); err != nil {
		return configFile{}, fmt.Errorf("decode %s renderers: %w", name, err)
	}
	return reg, nil
}

// sanitizeRendererConfig trims and normalizes the renderer config fields.
func sanitizeRendererConfig(cfg RendererConfig) RendererConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.Type == TypeTerminal && cfg.Terminal == nil {
		cfg.Terminal = &TerminalRendererConfig{}
	}
	if cfg.Terminal != nil {
		c := *cfg.Terminal
		if c.Width <= 0 {
			c.Width = terminalDefaultWidth
		}
		cfg.Terminal = &c
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		c.Headers = sanitizeHeaders(c.Headers)
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.Region = strings.TrimSpace(c.Region)
		c.Endpoint = strings.TrimSpace(c.Endpoint)
		c.AWSCredentials = sanitizeCredentials(c.AWSCredentials)
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.Region = strings.TrimSpace(c.Region)
		c.Endpoint = strings.TrimSpace(c.Endpoint)
		c.AWSCredentials = sanitizeCredentials(c.AWSCredentials)
		cfg.SNS = &c
	}
	if cfg.PubSub != nil {
		c := *cfg.PubSub
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		c.Endpoint = strings.TrimSpace(c.Endpoint)
		cfg.PubSub = &c
	}

	return cfg
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sanitizeCredentials(c AWSCredentials) AWSCredentials {
	c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
	c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
	c.SessionToken = strings.TrimSpace(c.SessionToken)
	return c
}

// validateRendererConfig checks that required fields are present.
func validateRendererConfig(cfg RendererConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for renderer %q", cfg.ID)
	case TypeTerminal:
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for renderer %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for renderer %q", cfg.ID)
		}
	case TypeSQS:
		if cfg.SQS == nil {
			return fmt.Errorf("sqs config required for renderer %q", cfg.ID)
		}
		if cfg.SQS.QueueURL == "" {
			return fmt.Errorf("sqs.uri is required for renderer %q", cfg.ID)
		}
		if cfg.SQS.Region == "" {
			return fmt.Errorf("sqs.region is required for renderer %q", cfg.ID)
		}
	case TypeSNS:
		if cfg.SNS == nil {
			return fmt.Errorf("sns config required for renderer %q", cfg.ID)
		}
		if cfg.SNS.TopicARN == "" {
			return fmt.Errorf("sns.topic_arn is required for renderer %q", cfg.ID)
		}
		if cfg.SNS.Region == "" {
			return fmt.Errorf("sns.region is required for renderer %q", cfg.ID)
		}
	case TypePubSub:
		if cfg.PubSub == nil {
			return fmt.Errorf("pubsub config required for renderer %q", cfg.ID)
		}
		if cfg.PubSub.ProjectID == "" || cfg.PubSub.Topic == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic are required for renderer %q", cfg.ID)
		}
	}
	return nil
}

// ByID returns the renderer config by id.
func (r *ConfigRegistry) ByID(id string) (RendererConfig, bool) {
	if r == nil {
		return RendererConfig{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return RendererConfig{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[id]
	return cfg, ok
}

// All returns all configured renderers.
func (r *ConfigRegistry) All() []RendererConfig {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RendererConfig, len(r.renderers))
	copy(out, r.renderers)
	return out
}

// Enabled returns renderers that are enabled.
func (r *ConfigRegistry) Enabled() []RendererConfig {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]RendererConfig, 0, len(all))
	for _, cfg := range all {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg RendererConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
