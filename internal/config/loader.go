package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the engine's environment variables.
const envPrefix = "MAKALAH_"

// defaultsYAML holds the hardcoded defaults, lowest precedence.
var defaultsYAML = []byte(`
logging:
  level: info
  format: json
embedding:
  provider: tei
  model: BAAI/bge-small-en-v1.5
  base_url: http://localhost:8080
index:
  backend: chromem
  collection: phase_definitions
  qdrant_host: localhost
  qdrant_port: 6334
detection:
  top_k: 3
  threshold: 0.65
  timeout: 5s
  embed_retries: 2
cache:
  ttl: 30s
  max_entries: 100
`)

// Load reads configuration with the following precedence, highest first:
//
//  1. MAKALAH_-prefixed environment variables
//     (MAKALAH_EMBEDDING_BASE_URL -> embedding.base_url)
//  2. YAML config file, when configPath is non-empty
//  3. Hardcoded defaults
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultsYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if configPath != "" {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// envTransform maps environment variable names to config keys. The first
// underscore separates the section from the field:
//
//	MAKALAH_EMBEDDING_BASE_URL -> embedding.base_url
//	MAKALAH_DETECTION_TOP_K    -> detection.top_k
//	MAKALAH_CACHE_TTL          -> cache.ttl
func envTransform(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}
