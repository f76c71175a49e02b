package sources

import "strings"

// ConfigString returns the trimmed string value for key from source.Config or a fallback.
func ConfigString(cfg Source, key, fallback string) string {
	if cfg.Config != nil {
		if raw, ok := cfg.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

const (
	ConfigUserAgentKey    = "user_agent"
	ConfigAcceptKey       = "accept"
	ConfigAPIKeyKey       = "api_key"
	ConfigAPIKeyHeaderKey = "api_key_header"

	defaultAPIKeyHeader = "X-Api-Key"
)

// Headers builds the request headers from a source config (skips empty values).
// api_key values of the form "env:NAME" are read from the environment.
func Headers(cfg Source, getenv func(string) string) map[string]string {
	headers := make(map[string]string, 3)

	if v := ConfigString(cfg, ConfigUserAgentKey, ""); v != "" {
		headers["User-Agent"] = v
	}
	headers["Accept"] = ConfigString(cfg, ConfigAcceptKey, "application/json")

	key := ConfigString(cfg, ConfigAPIKeyKey, "")
	if name, ok := strings.CutPrefix(key, "env:"); ok && getenv != nil {
		key = strings.TrimSpace(getenv(name))
	}
	if key != "" {
		headers[ConfigString(cfg, ConfigAPIKeyHeaderKey, defaultAPIKeyHeader)] = key
	}

	return headers
}
