package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the assistant
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Skills   SkillsConfig   `mapstructure:"skills"`
	Security SecurityConfig `mapstructure:"security"`
	Autosave AutosaveConfig `mapstructure:"autosave"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Address      string `mapstructure:"address"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// StorageConfig holds persistence settings
type StorageConfig struct {
	DataDir     string `mapstructure:"data_dir"`
	ContextFile string `mapstructure:"context_file"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	TempDir     string `mapstructure:"temp_dir"`
	ArchiveOn   bool   `mapstructure:"archive_enabled"`
}

// SkillsConfig holds skill runtime settings
type SkillsConfig struct {
	Manifest       string `mapstructure:"manifest"`
	DefaultTimeout int    `mapstructure:"default_timeout"` // seconds
	WatchManifest  bool   `mapstructure:"watch_manifest"`
}

// SecurityConfig holds API security settings
type SecurityConfig struct {
	JWTSecret    string   `mapstructure:"jwt_secret"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// AutosaveConfig holds the periodic context flush settings
type AutosaveConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalSeconds int  `mapstructure:"interval_seconds"`
}

// Load loads configuration from file, env, and defaults
func Load(configPath, dataDir string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if dataDir == "" {
		dataDir = getDefaultDataDir()
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	v.Set("storage.data_dir", dataDir)
	v.Set("storage.context_file", filepath.Join(dataDir, "context.json"))
	v.Set("storage.sqlite_path", filepath.Join(dataDir, "metoolok.db"))
	v.Set("storage.temp_dir", filepath.Join(dataDir, "temp"))

	if configPath == "" {
		configPath = filepath.Join(dataDir, "metoolok.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (METOOLOK_SERVER_PORT, METOOLOK_SECURITY_JWT_SECRET, ...)
	v.SetEnvPrefix("METOOLOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("storage.archive_enabled", true)

	v.SetDefault("skills.default_timeout", 15)
	v.SetDefault("skills.watch_manifest", true)

	v.SetDefault("security.allow_origins", []string{"*"})

	v.SetDefault("autosave.enabled", true)
	v.SetDefault("autosave.interval_seconds", 60)
}

func getDefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "metoolok")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}

	return filepath.Join(home, ".local", "share", "metoolok")
}

// loadEnvOverrides loads specific env vars that Viper doesn't pick up reliably
func loadEnvOverrides(cfg *Config) {
	getEnv := func(key, fallback string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		return fallback
	}

	cfg.Server.Address = getEnv("METOOLOK_SERVER_ADDRESS", cfg.Server.Address)
	if port := os.Getenv("METOOLOK_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	cfg.Storage.DataDir = getEnv("METOOLOK_STORAGE_DATA_DIR", cfg.Storage.DataDir)
	cfg.Skills.Manifest = getEnv("METOOLOK_SKILLS_MANIFEST", cfg.Skills.Manifest)
	cfg.Security.JWTSecret = getEnv("METOOLOK_SECURITY_JWT_SECRET", cfg.Security.JWTSecret)
}

func validate(cfg *Config) error {
	if cfg.Skills.DefaultTimeout <= 0 {
		return fmt.Errorf("skills.default_timeout must be positive, got %d", cfg.Skills.DefaultTimeout)
	}
	if cfg.Autosave.Enabled && cfg.Autosave.IntervalSeconds <= 0 {
		return fmt.Errorf("autosave.interval_seconds must be positive, got %d", cfg.Autosave.IntervalSeconds)
	}
	return nil
}
