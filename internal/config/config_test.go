package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestBindCommonFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	v := viper.New()

	BindCommonFlags(cmd, v)

	err := cmd.PersistentFlags().Parse([]string{
		"--walrus-bin", "/opt/walrus/bin/walrus",
		"--walrus-config", "/opt/walrus/client_config.yaml",
		"--daemon", "localhost:9999",
		"--full-node", "https://fullnode.devnet.sui.io:443",
		"--log-level", "debug",
		"--log-format", "json",
	})
	if err != nil {
		t.Fatalf("Parse flags: %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"walrus_bin", "/opt/walrus/bin/walrus"},
		{"walrus_config", "/opt/walrus/client_config.yaml"},
		{"daemon_addr", "localhost:9999"},
		{"full_node_url", "https://fullnode.devnet.sui.io:443"},
		{"observability.log_level", "debug"},
		{"observability.log_format", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := v.GetString(tt.key); got != tt.want {
				t.Errorf("v.GetString(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoadIntoDefaults(t *testing.T) {
	v := viper.New()

	cfg, err := LoadInto(v, "")
	if err != nil {
		t.Fatalf("LoadInto() error = %v", err)
	}

	if cfg.WalrusBin != Defaults.WalrusBin {
		t.Errorf("WalrusBin = %q, want %q", cfg.WalrusBin, Defaults.WalrusBin)
	}
	if cfg.DaemonAddr != Defaults.DaemonAddr {
		t.Errorf("DaemonAddr = %q, want %q", cfg.DaemonAddr, Defaults.DaemonAddr)
	}
	if cfg.FullNodeURL != Defaults.FullNodeURL {
		t.Errorf("FullNodeURL = %q, want %q", cfg.FullNodeURL, Defaults.FullNodeURL)
	}
	if cfg.Observability.LogFormat != Defaults.LogFormat {
		t.Errorf("LogFormat = %q, want %q", cfg.Observability.LogFormat, Defaults.LogFormat)
	}
	if cfg.Archive.Path == "" || cfg.Cache.Path == "" {
		t.Error("cache and archive paths should default under the data dir")
	}
}

func TestLoadIntoConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("daemon_addr: 10.0.0.5:8899\nobservability:\n  log_level: warn\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	cfg, err := LoadInto(v, path)
	if err != nil {
		t.Fatalf("LoadInto() error = %v", err)
	}

	if cfg.DaemonAddr != "10.0.0.5:8899" {
		t.Errorf("DaemonAddr = %q, want file value", cfg.DaemonAddr)
	}
	if cfg.Observability.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.Observability.LogLevel)
	}
	// Untouched fields keep their defaults.
	if cfg.WalrusBin != Defaults.WalrusBin {
		t.Errorf("WalrusBin = %q, want default", cfg.WalrusBin)
	}
}

func TestLoadIntoMissingExplicitFile(t *testing.T) {
	v := viper.New()
	if _, err := LoadInto(v, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestSystemObjectID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client_config.yaml")
	body := []byte("system_object: 0x3243c55a1077352fd19e52c3ed6b7b0799cf7553c6e32ffd448a6e8ba175c1c7\nwallet_config: ~/.sui/sui_config/client.yaml\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	id, err := SystemObjectID(path)
	if err != nil {
		t.Fatalf("SystemObjectID() error = %v", err)
	}
	if want := "0x3243c55a1077352fd19e52c3ed6b7b0799cf7553c6e32ffd448a6e8ba175c1c7"; id != want {
		t.Errorf("SystemObjectID() = %q, want %q", id, want)
	}
}

func TestSystemObjectIDMissingKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client_config.yaml")
	if err := os.WriteFile(path, []byte("wallet_config: /tmp/x\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := SystemObjectID(path); err == nil {
		t.Error("expected error when system_object is absent")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}

	if got := ExpandPath("~/x/y"); got != filepath.Join(home, "x", "y") {
		t.Errorf("ExpandPath(~/x/y) = %q", got)
	}
	if got := ExpandPath("/abs/./path"); got != "/abs/path" {
		t.Errorf("ExpandPath(/abs/./path) = %q", got)
	}
}
