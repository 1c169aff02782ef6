// Package config loads walrusctl configuration from defaults, config file,
// environment, and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full walrusctl configuration.
type Config struct {
	WalrusBin     string              `mapstructure:"walrus_bin"`
	WalrusConfig  string              `mapstructure:"walrus_config"`
	DaemonAddr    string              `mapstructure:"daemon_addr"`
	FullNodeURL   string              `mapstructure:"full_node_url"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Tracing       TracingConfig       `mapstructure:"tracing"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Archive       ArchiveConfig       `mapstructure:"archive"`
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// TracingConfig holds the OTLP exporter settings. Tracing is off unless an
// endpoint is set.
type TracingConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPProtocol string `mapstructure:"otlp_protocol"`
}

// CacheConfig configures the local blob read cache.
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// ArchiveConfig configures the local event archive database.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// ResolvedWalrusConfig returns the Walrus client config path with ~ expanded.
func (c Config) ResolvedWalrusConfig() string {
	return ExpandPath(c.WalrusConfig)
}

// SystemObjectID reads the Walrus client configuration YAML and returns the
// system_object value it names.
func SystemObjectID(walrusConfigPath string) (string, error) {
	v := viper.New()
	v.SetConfigFile(ExpandPath(walrusConfigPath))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read walrus config: %w", err)
	}

	id := v.GetString("system_object")
	if id == "" {
		return "", fmt.Errorf("walrus config %s has no system_object", walrusConfigPath)
	}
	return id, nil
}

// ExpandPath expands a leading ~/ to the user home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return filepath.Clean(path)
}
