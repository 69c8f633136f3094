// Package config provides configuration management for bucketctl.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"
)

// Config is the on-disk configuration for bucketctl.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\bucketctl\config
//   - Unix: ~/.config/bucketctl/config
//
// INI format:
//
//	[server]
//	url = https://platform.example.com
//	api_key = <token>
//	project = 42
//
//	[storage]
//	integration =
//
//	[notifications]
//	enabled = true
//	show_transfer_complete = true
//	show_transfer_failed = true
//
//	[integration "offsite-s3"]
//	endpoint = https://minio.internal:9000
//	region = us-east-1
//	access_key = ...
//	secret_key = ...
//	path_style = true
type Config struct {
	// Server connection settings
	ServerURL string `ini:"url"`
	APIKey    string `ini:"api_key"`
	Project   string `ini:"project"`

	// Integration is the default storage integration title. Empty selects
	// the project-local storage.
	Integration string `ini:"integration"`

	// Notification settings
	Notifications NotificationConfig

	// Integrations with local credentials, keyed by title. When a selected
	// integration appears here, the client talks to its S3-compatible
	// endpoint directly instead of going through the server.
	Integrations map[string]IntegrationConfig
}

// NotificationConfig contains settings for desktop notifications.
type NotificationConfig struct {
	Enabled              bool `ini:"enabled"`
	ShowTransferComplete bool `ini:"show_transfer_complete"`
	ShowTransferFailed   bool `ini:"show_transfer_failed"`
}

// IntegrationConfig describes an S3-compatible storage integration.
type IntegrationConfig struct {
	Endpoint  string `ini:"endpoint"`
	Region    string `ini:"region"`
	AccessKey string `ini:"access_key"`
	SecretKey string `ini:"secret_key"`
	// PathStyle forces path-style addressing, required by MinIO-compatible
	// stores that do not resolve bucket subdomains.
	PathStyle bool `ini:"path_style"`
}

// Validation errors
var (
	ErrMissingServerURL   = errors.New("server url is required")
	ErrMissingAPIKey      = errors.New("api_key is required")
	ErrMissingProject     = errors.New("project is required")
	ErrUnknownIntegration = errors.New("integration has no [integration] section and no server-side title")
)

// DefaultPath returns the default path for the config file.
func DefaultPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		configDir = filepath.Join(userProfile, ".config", "bucketctl")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "bucketctl")
	}

	return filepath.Join(configDir, "config"), nil
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Notifications: NotificationConfig{
			Enabled:              true,
			ShowTransferComplete: true,
			ShowTransferFailed:   true,
		},
		Integrations: make(map[string]IntegrationConfig),
	}
}

// Load loads configuration from an INI file.
// A missing file returns defaults and no error; an invalid file errors.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	server := iniFile.Section("server")
	cfg.ServerURL = server.Key("url").String()
	cfg.APIKey = server.Key("api_key").String()
	cfg.Project = server.Key("project").String()

	storage := iniFile.Section("storage")
	cfg.Integration = storage.Key("integration").String()

	notify := iniFile.Section("notifications")
	cfg.Notifications.Enabled = notify.Key("enabled").MustBool(true)
	cfg.Notifications.ShowTransferComplete = notify.Key("show_transfer_complete").MustBool(true)
	cfg.Notifications.ShowTransferFailed = notify.Key("show_transfer_failed").MustBool(true)

	for _, section := range iniFile.Sections() {
		name := section.Name()
		if !strings.HasPrefix(name, `integration "`) {
			continue
		}
		title := strings.TrimSuffix(strings.TrimPrefix(name, `integration "`), `"`)
		cfg.Integrations[title] = IntegrationConfig{
			Endpoint:  section.Key("endpoint").String(),
			Region:    section.Key("region").MustString("us-east-1"),
			AccessKey: section.Key("access_key").String(),
			SecretKey: section.Key("secret_key").String(),
			PathStyle: section.Key("path_style").MustBool(false),
		}
	}

	return cfg, nil
}

// Save saves configuration to an INI file atomically.
// The API key and integration secrets are sensitive, so the file is 0600.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	server, err := iniFile.NewSection("server")
	if err != nil {
		return fmt.Errorf("failed to create server section: %w", err)
	}
	server.Key("url").SetValue(cfg.ServerURL)
	server.Key("api_key").SetValue(cfg.APIKey)
	server.Key("project").SetValue(cfg.Project)

	storage, err := iniFile.NewSection("storage")
	if err != nil {
		return fmt.Errorf("failed to create storage section: %w", err)
	}
	storage.Key("integration").SetValue(cfg.Integration)

	notify, err := iniFile.NewSection("notifications")
	if err != nil {
		return fmt.Errorf("failed to create notifications section: %w", err)
	}
	notify.Key("enabled").SetValue(fmt.Sprintf("%t", cfg.Notifications.Enabled))
	notify.Key("show_transfer_complete").SetValue(fmt.Sprintf("%t", cfg.Notifications.ShowTransferComplete))
	notify.Key("show_transfer_failed").SetValue(fmt.Sprintf("%t", cfg.Notifications.ShowTransferFailed))

	for title, integ := range cfg.Integrations {
		section, err := iniFile.NewSection(fmt.Sprintf("integration %q", title))
		if err != nil {
			return fmt.Errorf("failed to create integration section: %w", err)
		}
		section.Key("endpoint").SetValue(integ.Endpoint)
		section.Key("region").SetValue(integ.Region)
		section.Key("access_key").SetValue(integ.AccessKey)
		section.Key("secret_key").SetValue(integ.SecretKey)
		section.Key("path_style").SetValue(fmt.Sprintf("%t", integ.PathStyle))
	}

	// Temp file + rename for atomicity; restrictive permissions first.
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks connection settings needed for any API call.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return ErrMissingServerURL
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if strings.TrimSpace(cfg.Project) == "" {
		return ErrMissingProject
	}
	return nil
}

// DirectIntegration returns the local credentials for the named integration,
// if configured. Direct mode bypasses the server and talks S3 straight to
// the integration endpoint.
func (cfg *Config) DirectIntegration(title string) (IntegrationConfig, bool) {
	integ, ok := cfg.Integrations[title]
	return integ, ok
}
