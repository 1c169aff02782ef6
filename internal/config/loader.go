package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// SetDefaults configures standard defaults on a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("walrus_bin", Defaults.WalrusBin)
	v.SetDefault("walrus_config", Defaults.WalrusConfig)
	v.SetDefault("daemon_addr", Defaults.DaemonAddr)
	v.SetDefault("full_node_url", Defaults.FullNodeURL)
	v.SetDefault("observability.log_level", Defaults.LogLevel)
	v.SetDefault("observability.log_format", Defaults.LogFormat)
	v.SetDefault("cache.path", filepath.Join(DefaultDataDir(), "blobs"))
	v.SetDefault("archive.path", filepath.Join(DefaultDataDir(), "events.db"))
}

// BindCommonFlags binds the persistent CLI flags to Viper.
func BindCommonFlags(cmd *cobra.Command, v *viper.Viper) {
	f := cmd.PersistentFlags()

	f.String("walrus-bin", "", "path to the walrus client binary")
	f.String("walrus-config", "", "path to the walrus client config YAML")
	f.String("daemon", "", "walrus daemon address (default 127.0.0.1:8899)")
	f.String("full-node", "", "Sui full node JSON-RPC URL")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.String("log-format", "", "log format (auto, json, text)")

	_ = v.BindPFlag("walrus_bin", f.Lookup("walrus-bin"))
	_ = v.BindPFlag("walrus_config", f.Lookup("walrus-config"))
	_ = v.BindPFlag("daemon_addr", f.Lookup("daemon"))
	_ = v.BindPFlag("full_node_url", f.Lookup("full-node"))
	_ = v.BindPFlag("observability.log_level", f.Lookup("log-level"))
	_ = v.BindPFlag("observability.log_format", f.Lookup("log-format"))
}

// Load reads config from flags, env, and file. The envPrefix is used for
// environment variable lookups (e.g. "WALRUSCTL"). The configPaths are
// directories to search for config files.
func Load(v *viper.Viper, envPrefix string, configFile string, configPaths ...string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		for _, p := range configPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) && configFile != "" {
			return err
		}
		// Config file not found is OK if not explicitly specified
	}

	return nil
}

// LoadInto applies defaults, loads config from flags/env/file, and
// unmarshals into a Config.
func LoadInto(v *viper.Viper, configFile string) (Config, error) {
	SetDefaults(v)
	if err := Load(v, "WALRUSCTL", configFile, DefaultDataDir(), "/etc/walrusctl"); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
