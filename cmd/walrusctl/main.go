package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/walrus-tools/walrusctl/internal/config"
	"github.com/walrus-tools/walrusctl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries state shared across subcommands: the viper instance, the
// loaded config, and the observability components built in the root
// PersistentPreRunE.
type app struct {
	v          *viper.Viper
	configFile string
	output     string

	cfg config.Config
	obs *observability.Observability
}

func run() error {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "walrusctl",
		Short: "Walrus decentralized blob storage client",
		Long: `walrusctl talks to the Walrus decentralized blob store through its three
public interfaces: the walrus binary's JSON mode, a local daemon's HTTP API,
and a Sui full node's JSON-RPC endpoint.

Blob commands:
  walrusctl store <file>     Upload a blob
  walrusctl read <blob-id>   Download a blob
  walrusctl verify <file>    Upload, download, and verify against the chain

Chain commands:
  walrusctl system           Show the Walrus system object
  walrusctl events           List or follow blob events`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadInto(a.v, a.configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg

			obs, err := observability.New(cmd.Context(), observability.Config{
				LogLevel:       cfg.Observability.LogLevel,
				LogFormat:      cfg.Observability.LogFormat,
				OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
				OTLPProtocol:   cfg.Tracing.OTLPProtocol,
				ServiceVersion: version,
			}, os.Stderr)
			if err != nil {
				return err
			}
			a.obs = obs
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.obs == nil {
				return nil
			}
			return a.obs.Close(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "output format (text, json)")
	config.BindCommonFlags(rootCmd, a.v)

	rootCmd.AddCommand(newStoreCmd(a))
	rootCmd.AddCommand(newReadCmd(a))
	rootCmd.AddCommand(newVerifyCmd(a))
	rootCmd.AddCommand(newSystemCmd(a))
	rootCmd.AddCommand(newEventsCmd(a))

	return rootCmd.ExecuteContext(context.Background())
}

const version = "0.3.0"
