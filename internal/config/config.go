// Package config loads and validates the sitenav site configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	snerrors "git.home.luguber.info/inful/sitenav/internal/errors"
	"git.home.luguber.info/inful/sitenav/internal/sidebar"
)

// Config represents the application configuration
type Config struct {
	Site      SiteConfig       `yaml:"site"`
	Content   ContentConfig    `yaml:"content"`
	Output    OutputConfig     `yaml:"output"`
	Sidebar   sidebar.Spec     `yaml:"sidebar"`
	Source    *GitSourceConfig `yaml:"source,omitempty"`
	Preview   PreviewConfig    `yaml:"preview"`
	LinkCheck LinkCheckConfig  `yaml:"link_check"`
	Cache     CacheConfig      `yaml:"cache"`
}

// SiteConfig describes the rendered site.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
}

// ContentConfig locates the content tree.
type ContentConfig struct {
	Directory string `yaml:"directory"`
}

// OutputConfig represents output configuration. The output directory is
// always replaced wholesale via staging promotion, so there is no separate
// clean step.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// GitSourceConfig optionally sources the content tree from a git checkout.
type GitSourceConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
	Path   string `yaml:"path,omitempty"` // Content subdirectory inside the checkout
}

// PreviewConfig configures the serve command.
type PreviewConfig struct {
	Port            int    `yaml:"port,omitempty"`
	RebuildInterval string `yaml:"rebuild_interval,omitempty"` // Scheduled full rebuild ("30m"); empty disables
	Metrics         bool   `yaml:"metrics,omitempty"`
}

// RebuildIntervalDuration parses the scheduled rebuild interval.
// Returns 0 when disabled or unparseable.
func (p PreviewConfig) RebuildIntervalDuration() time.Duration {
	if p.RebuildInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(p.RebuildInterval)
	if err != nil {
		return 0
	}
	return d
}

// LinkCheckConfig configures post-render link verification.
type LinkCheckConfig struct {
	Strict  bool   `yaml:"strict,omitempty"`   // Broken in-body links fail the build
	NATSURL string `yaml:"nats_url,omitempty"` // Optional broken-link event publishing
	Subject string `yaml:"subject,omitempty"`
}

// CacheConfig configures the incremental build cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// Load loads configuration from the specified file.
//
// A `.env` file next to the working directory is loaded first (if present)
// and environment variables are expanded inside the YAML before decoding.
func Load(configPath string) (*Config, error) {
	// Missing .env files are fine; existing-but-unreadable ones are not.
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("load %s: %w", envPath, err)
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, snerrors.New(snerrors.CategoryConfig, snerrors.SeverityFatal,
			fmt.Sprintf("configuration file not found: %s", configPath))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, snerrors.Wrap(err, snerrors.CategoryConfig, snerrors.SeverityFatal, "read config file")
	}

	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, snerrors.Wrap(err, snerrors.CategoryConfig, snerrors.SeverityFatal, "unmarshal config")
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Documentation"
	}
	if c.Content.Directory == "" {
		c.Content.Directory = "./content"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./site"
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = 4321
	}
	if c.LinkCheck.Subject == "" {
		c.LinkCheck.Subject = "sitenav.links.broken"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = ".sitenav-cache.db"
	}
	if c.Source != nil && c.Source.Branch == "" {
		c.Source.Branch = "main"
	}
}

// Validate checks cross-field configuration invariants, including the sidebar
// specification invariants.
func (c *Config) Validate() error {
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return fmt.Errorf("preview port out of range: %d", c.Preview.Port)
	}
	if c.Source != nil && c.Source.URL == "" {
		return fmt.Errorf("source requires a url")
	}
	if c.Preview.RebuildInterval != "" {
		if _, err := time.ParseDuration(c.Preview.RebuildInterval); err != nil {
			return fmt.Errorf("invalid preview rebuild_interval: %w", err)
		}
	}
	if err := c.Sidebar.Validate(); err != nil {
		return fmt.Errorf("invalid sidebar: %w", err)
	}
	return nil
}
