package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/walrus-tools/walrusctl/internal/daemon"
	"github.com/walrus-tools/walrusctl/internal/walrus"
)

func newStoreCmd(a *app) *cobra.Command {
	var epochs int
	var via string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "store <file>",
		Short: "Upload a blob",
		Long: `Upload a file to the Walrus store.

With --via json (the default) the upload goes through the walrus binary's
JSON mode and the result includes the Sui object id of the blob certificate.
With --via daemon the file is PUT to a locally running walrus daemon.

Examples:
  walrusctl store myfile.bin
  walrusctl store myfile.bin --epochs 5
  walrusctl store myfile.bin --via daemon --daemon 127.0.0.1:8899`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd, timeout)
			defer cancel()

			result, err := storeBlob(ctx, a, via, args[0], epochs)
			if err != nil {
				return err
			}

			if a.output == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}

			status := "stored"
			if result.AlreadyCertified {
				status = "already certified"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Blob ID:   %s (%s)\n", result.BlobID, status)
			if result.ObjectID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Object ID: %s\n", result.ObjectID)
			}
			if result.Size > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Size:      %s\n", formatSize(uint64(result.Size)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&epochs, "epochs", 2, "number of epochs to store for")
	cmd.Flags().StringVar(&via, "via", "json", "interface to use (json, daemon)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "timeout")

	return cmd
}

func storeBlob(ctx context.Context, a *app, via, path string, epochs int) (*walrus.StoreResult, error) {
	switch via {
	case "json":
		c := walrus.New(a.cfg.WalrusBin, a.cfg.ResolvedWalrusConfig(), a.obs.Metrics)
		return c.Store(ctx, path, epochs)
	case "daemon":
		data, err := os.ReadFile(path) //nolint:gosec // G304: intentional CLI file read
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		c := daemon.New(a.cfg.DaemonAddr, a.obs.Metrics)
		return c.Store(ctx, data, epochs)
	default:
		return nil, fmt.Errorf("unknown interface %q (want json or daemon)", via)
	}
}
