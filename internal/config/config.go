package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete taskdesk configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Client  ClientConfig  `mapstructure:"client"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls the reference task API
type ServerConfig struct {
	// Addr is the listen address (default ":8080")
	Addr string `mapstructure:"addr"`
	// DBPath is the SQLite database file
	DBPath string `mapstructure:"db_path"`
	// UploadDir holds stored attachment blobs
	UploadDir string `mapstructure:"upload_dir"`
	// MaxUploadMB caps a single uploaded file
	MaxUploadMB int64 `mapstructure:"max_upload_mb"`
}

// AuthConfig controls token issuing and validation
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// ClientConfig controls the task client
type ClientConfig struct {
	// BaseURL of the remote API including the /api prefix
	BaseURL string `mapstructure:"base_url"`
	// Timeout bounds each remote call
	Timeout time.Duration `mapstructure:"timeout"`
	// SearchDebounce is the quiescence window of the search box
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
	// StateDir holds the persisted session and preferences
	StateDir string `mapstructure:"state_dir"`
	// DownloadDir receives downloaded attachments
	DownloadDir string `mapstructure:"download_dir"`
	// UsersTTL is how long the user directory is reused before it is fetched again
	UsersTTL time.Duration `mapstructure:"users_ttl"`
	// Watch subscribes to remote task events and refetches on change
	Watch bool `mapstructure:"watch"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format is "json" or "text"
	Format string `mapstructure:"format"`
}

// EnvPrefix is the prefix of environment overrides, e.g. TASKDESK_CLIENT_BASE_URL.
const EnvPrefix = "TASKDESK"

// ConfigDir returns the default configuration directory.
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "taskdesk")
	}
	return ".taskdesk"
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.db_path", "taskdesk.db")
	v.SetDefault("server.upload_dir", "uploads")
	v.SetDefault("server.max_upload_mb", 10)

	v.SetDefault("auth.jwt_secret", "development-insecure-secret-change-me")
	v.SetDefault("auth.issuer", "taskdesk")
	v.SetDefault("auth.audience", "taskdesk-clients")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("client.base_url", "http://localhost:8080/api")
	v.SetDefault("client.timeout", 15*time.Second)
	v.SetDefault("client.search_debounce", 300*time.Millisecond)
	v.SetDefault("client.state_dir", ConfigDir())
	v.SetDefault("client.download_dir", ".")
	v.SetDefault("client.users_ttl", 5*time.Minute)
	v.SetDefault("client.watch", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// New returns a viper instance with defaults and environment overrides wired.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads the config file into v. An empty path searches the default
// locations; a missing file is not an error in that case.
func Read(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is New + Read + Decode.
func Load(path string) (*Config, error) {
	v := New()
	if err := Read(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Validate rejects settings the client or server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Client.BaseURL) == "" {
		return fmt.Errorf("client.base_url must not be empty")
	}
	if c.Client.SearchDebounce < 0 {
		return fmt.Errorf("client.search_debounce must not be negative")
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}
	return nil
}
