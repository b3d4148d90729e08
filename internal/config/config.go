// Package config manages pipeline preferences stored in
// ~/.config/ssopipeline/config.toml. Config stores only local defaults
// (template folders, output file, retry ceiling); the SSO tenant is the
// source of truth for all live resource state.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultRelayState is the console URL applied when a template omits
// RelayState.
const DefaultRelayState = "https://console.aws.amazon.com/"

// Config holds pipeline preferences from config.toml. All fields use flat
// snake_case TOML keys.
type Config struct {
	// RelayState is the default relay state URL for permission sets whose
	// template omits one.
	RelayState string `mapstructure:"relay_state" toml:"relay_state"`

	// PermissionSetFolder is the default repository folder for permission
	// set templates.
	PermissionSetFolder string `mapstructure:"permission_set_folder" toml:"permission_set_folder"`

	// AssignmentsFolder is the default repository folder for assignment
	// templates.
	AssignmentsFolder string `mapstructure:"assignments_folder" toml:"assignments_folder"`

	// OutputFile is where the assignment expander writes its resolved
	// records.
	OutputFile string `mapstructure:"output_file" toml:"output_file"`

	// RetryMaxAttempts is the SDK retry ceiling for every remote call.
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" toml:"retry_max_attempts"`
}

// DefaultConfigDir returns the default config directory path
// (~/.config/ssopipeline). If SSOPIPELINE_CONFIG_DIR is set, that value is
// used instead.
func DefaultConfigDir() string {
	if dir := os.Getenv("SSOPIPELINE_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "ssopipeline")
	}
	return filepath.Join(home, ".config", "ssopipeline")
}

// Load reads the config file from configDir/config.toml and returns a Config
// with defaults applied for any missing keys. If the file does not exist,
// all defaults are returned without error.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("relay_state", DefaultRelayState)
	v.SetDefault("permission_set_folder", filepath.Join("templates", "permissionsets"))
	v.SetDefault("assignments_folder", filepath.Join("templates", "assignments"))
	v.SetDefault("output_file", "assignments.json")
	v.SetDefault("retry_max_attempts", 1000)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
