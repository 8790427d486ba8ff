package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Camera    CameraConfig    `yaml:"camera"`
	Session   SessionConfig   `yaml:"session"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Links     LinksConfig     `yaml:"links"`
}

type ServerConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	WebDir string `yaml:"web_dir"`
}

// AuthConfig protects the session control endpoints. An empty key leaves
// them open.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type CameraConfig struct {
	Provider   string `yaml:"provider"` // synthetic, device or none
	Device     string `yaml:"device"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	FacingMode string `yaml:"facing_mode"`
}

type SessionConfig struct {
	TickInterval    time.Duration `yaml:"tick_interval"`
	DetectInterval  time.Duration `yaml:"detect_interval"`
	DetectThreshold float64       `yaml:"detect_threshold"`
}

type CatalogConfig struct {
	Driver    string         `yaml:"driver"` // builtin, postgres or sqlite
	Database  DatabaseConfig `yaml:"database"`
	SQLiteDir string         `yaml:"sqlite_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type LinksConfig struct {
	FundingURL string `yaml:"funding_url"`
	SourceURL  string `yaml:"source_url"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Default returns the configuration used for any value the file leaves out.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
		Tailscale: TailscaleConfig{
			Hostname: "nutrical",
			StateDir: "tsnet-state",
		},
		Camera: CameraConfig{
			Provider:   "synthetic",
			Device:     "/dev/video0",
			Width:      1280,
			Height:     720,
			FacingMode: "user",
		},
		Session: SessionConfig{
			TickInterval:    time.Second,
			DetectInterval:  2 * time.Second,
			DetectThreshold: 0.7,
		},
		Catalog: CatalogConfig{
			Driver:    "builtin",
			SQLiteDir: "data",
		},
	}
}

// Load reads config from a YAML file on top of Default, then applies
// environment variable overrides. Env vars use the prefix NUTRICAL_ and
// underscore-separated paths:
//
//	NUTRICAL_SERVER_HOST, NUTRICAL_SERVER_PORT, NUTRICAL_SERVER_WEB_DIR,
//	NUTRICAL_AUTH_API_KEY,
//	NUTRICAL_TAILSCALE_ENABLED, NUTRICAL_TAILSCALE_HOSTNAME,
//	NUTRICAL_CAMERA_PROVIDER, NUTRICAL_CAMERA_DEVICE,
//	NUTRICAL_CATALOG_DRIVER, NUTRICAL_CATALOG_SQLITE_DIR,
//	NUTRICAL_DB_HOST, NUTRICAL_DB_PORT, NUTRICAL_DB_NAME,
//	NUTRICAL_DB_USER, NUTRICAL_DB_PASSWORD, NUTRICAL_DB_SSLMODE
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NUTRICAL_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("NUTRICAL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("NUTRICAL_SERVER_WEB_DIR"); v != "" {
		cfg.Server.WebDir = v
	}
	if v := os.Getenv("NUTRICAL_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("NUTRICAL_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("NUTRICAL_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("NUTRICAL_CAMERA_PROVIDER"); v != "" {
		cfg.Camera.Provider = v
	}
	if v := os.Getenv("NUTRICAL_CAMERA_DEVICE"); v != "" {
		cfg.Camera.Device = v
	}
	if v := os.Getenv("NUTRICAL_CATALOG_DRIVER"); v != "" {
		cfg.Catalog.Driver = v
	}
	if v := os.Getenv("NUTRICAL_CATALOG_SQLITE_DIR"); v != "" {
		cfg.Catalog.SQLiteDir = v
	}
	if v := os.Getenv("NUTRICAL_DB_HOST"); v != "" {
		cfg.Catalog.Database.Host = v
	}
	if v := os.Getenv("NUTRICAL_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.Database.Port = port
		}
	}
	if v := os.Getenv("NUTRICAL_DB_NAME"); v != "" {
		cfg.Catalog.Database.Name = v
	}
	if v := os.Getenv("NUTRICAL_DB_USER"); v != "" {
		cfg.Catalog.Database.User = v
	}
	if v := os.Getenv("NUTRICAL_DB_PASSWORD"); v != "" {
		cfg.Catalog.Database.Password = v
	}
	if v := os.Getenv("NUTRICAL_DB_SSLMODE"); v != "" {
		cfg.Catalog.Database.SSLMode = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	switch c.Camera.Provider {
	case "synthetic", "none":
	case "device":
		if c.Camera.Device == "" {
			return fmt.Errorf("camera.device is required for the device provider")
		}
	default:
		return fmt.Errorf("camera.provider %q is not one of synthetic, device, none", c.Camera.Provider)
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("camera.width and camera.height must be positive")
	}
	if c.Camera.FacingMode != "user" && c.Camera.FacingMode != "environment" {
		return fmt.Errorf("camera.facing_mode %q is not one of user, environment", c.Camera.FacingMode)
	}

	if c.Session.TickInterval <= 0 {
		return fmt.Errorf("session.tick_interval must be positive")
	}
	if c.Session.DetectInterval <= 0 {
		return fmt.Errorf("session.detect_interval must be positive")
	}
	if c.Session.DetectThreshold <= 0 || c.Session.DetectThreshold >= 1 {
		return fmt.Errorf("session.detect_threshold must be between 0 and 1")
	}

	switch c.Catalog.Driver {
	case "builtin":
	case "sqlite":
		if c.Catalog.SQLiteDir == "" {
			return fmt.Errorf("catalog.sqlite_dir is required for the sqlite driver")
		}
	case "postgres":
		db := c.Catalog.Database
		if db.Host == "" {
			return fmt.Errorf("catalog.database.host is required")
		}
		if db.Port == 0 {
			return fmt.Errorf("catalog.database.port is required")
		}
		if db.Name == "" {
			return fmt.Errorf("catalog.database.name is required")
		}
		if db.User == "" {
			return fmt.Errorf("catalog.database.user is required")
		}
	default:
		return fmt.Errorf("catalog.driver %q is not one of builtin, postgres, sqlite", c.Catalog.Driver)
	}
	return nil
}
