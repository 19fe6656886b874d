package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultPort is used when the config file does not set server.port.
const DefaultPort = 8080

// Config holds everything the server reads from config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Google GoogleConfig `yaml:"google"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Port the API listens on (default 8080). The PORT environment
	// variable, when set, takes precedence — App Engine and Cloud Run
	// inject it.
	Port int `yaml:"port"`
}

// EffectivePort returns the PORT environment variable when set,
// otherwise the configured port.
func (s ServerConfig) EffectivePort() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return strconv.Itoa(s.Port)
}

// GoogleConfig holds the GCP resources the wall runs against.
type GoogleConfig struct {
	// ProjectID is the GCP project holding Firestore, the bucket and
	// the task queue.
	ProjectID string `yaml:"project_id"`

	// LocationID is the Cloud Tasks queue location, e.g. "europe-west1".
	LocationID string `yaml:"location_id"`

	// StorageBucket is the Cloud Storage bucket that holds post images.
	StorageBucket string `yaml:"storage_bucket"`

	// CleanupQueueID is the Cloud Tasks queue used to schedule cleanup
	// sweeps at post expiry.
	CleanupQueueID string `yaml:"cleanup_queue_id"`

	// ServiceURL is the public base URL of this service, the target of
	// scheduled cleanup tasks.
	ServiceURL string `yaml:"service_url"`
}

// Load reads and parses the config file at path. Missing fields are
// filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: DefaultPort,
		},
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range [1, 65535]", cfg.Server.Port)
	}
	if cfg.Google.ProjectID == "" {
		return fmt.Errorf("google.project_id must be set")
	}
	if cfg.Google.StorageBucket == "" {
		return fmt.Errorf("google.storage_bucket must be set")
	}
	return nil
}
