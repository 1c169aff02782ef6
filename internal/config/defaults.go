package config

import (
	"os"
	"path/filepath"
)

// Defaults contains the default values for walrusctl.
var Defaults = struct {
	WalrusBin    string
	WalrusConfig string
	DaemonAddr   string
	FullNodeURL  string
	LogLevel     string
	LogFormat    string
	EventModule  string
}{
	WalrusBin:    "walrus",
	WalrusConfig: "~/.config/walrus/client_config.yaml",
	DaemonAddr:   "127.0.0.1:8899",
	FullNodeURL:  "https://fullnode.testnet.sui.io:443",
	LogLevel:     "info",
	LogFormat:    "auto",
	EventModule:  "blob",
}

// DefaultDataDir returns the default data directory (~/.walrusctl).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".walrusctl"
	}
	return filepath.Join(home, ".walrusctl")
}
