package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root client configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Log      LogConfig      `yaml:"log"`
	TUI      TUIConfig      `yaml:"tui"`
	Diagrams DiagramsConfig `yaml:"diagrams"`
	MockAPI  MockAPIConfig  `yaml:"mockapi"`
}

// APIConfig locates the backing touchpoint API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"OHARA_API_URL"     env-default:"http://localhost:8080/api"`
	Timeout time.Duration `yaml:"timeout"  env:"OHARA_API_TIMEOUT" env-default:"10s"`
}

// LogConfig holds logging settings. File is only used by the TUI, which owns the terminal.
type LogConfig struct {
	Level string `yaml:"level" env:"OHARA_LOG_LEVEL" env-default:"info"`
	File  string `yaml:"file"  env:"OHARA_LOG_FILE"`
}

// TUIConfig holds interactive UI preferences.
type TUIConfig struct {
	Theme         string `yaml:"theme"          env:"OHARA_TUI_THEME"    env-default:"auto"`
	MarkdownStyle string `yaml:"markdown_style" env:"OHARA_TUI_MD_STYLE"`
}

// DiagramsConfig configures the diagram renderer used after HTML report rendering.
// An empty RendererURL leaves diagram blocks as source.
type DiagramsConfig struct {
	RendererURL string `yaml:"renderer_url" env:"OHARA_DIAGRAM_URL"`
}

// MockAPIConfig configures cmd/ohara-mockapi.
type MockAPIConfig struct {
	Addr   string `yaml:"addr"    env:"OHARA_MOCKAPI_ADDR" env-default:":8080"`
	DBPath string `yaml:"db_path" env:"OHARA_MOCKAPI_DB"   env-default:"ohara.sqlite"`
}

// Dir returns the config directory (~/.ohara unless OHARA_CONFIG_DIR is set).
func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.ohara).
	if v := strings.TrimSpace(os.Getenv("OHARA_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ohara"), nil
}

// DefaultPath returns the implicit config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// An explicit path must exist; the implicit ~/.ohara/config.yaml is optional.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks values cleanenv cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	switch strings.ToLower(strings.TrimSpace(c.TUI.Theme)) {
	case "", "auto", "light", "dark":
	default:
		return fmt.Errorf("tui.theme must be auto, light or dark, got %q", c.TUI.Theme)
	}
	if c.Diagrams.RendererURL != "" {
		if u, err := url.Parse(c.Diagrams.RendererURL); err != nil || u.Scheme == "" {
			return fmt.Errorf("diagrams.renderer_url must be an absolute URL, got %q", c.Diagrams.RendererURL)
		}
	}
	return nil
}
