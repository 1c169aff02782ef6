package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/walrus-tools/walrusctl/internal/blobcache"
	"github.com/walrus-tools/walrusctl/internal/daemon"
	"github.com/walrus-tools/walrusctl/internal/walrus"
)

func newReadCmd(a *app) *cobra.Command {
	var outputFile string
	var via string
	var useCache bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "read <blob-id>",
		Short: "Download a blob",
		Long: `Download a blob by its textual blob id.

With --cache, downloaded bytes are kept in a local cache and later reads of
the same blob id are served from disk. Walrus blobs are immutable, so cache
entries never expire.

Examples:
  walrusctl read iIWkkUTzPZx-d1E_A7LqUynnYFD-ztk39_tP8MLdS2Y
  walrusctl read <blob-id> -f myfile.bin
  walrusctl read <blob-id> --via daemon --cache
  walrusctl read <blob-id> > myfile.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blobID := args[0]

			ctx, cancel := commandContext(cmd, timeout)
			defer cancel()

			var cache *blobcache.Cache
			if useCache {
				var err error
				cache, err = blobcache.Open(a.cfg.Cache.Path)
				if err != nil {
					return err
				}
				defer func() { _ = cache.Close() }()

				if data, ok, err := cache.Get(blobID); err != nil {
					return err
				} else if ok {
					slog.Debug("cache hit", "blob_id", blobID, "size", len(data))
					return writeBlob(cmd, outputFile, data)
				}
			}

			data, err := readBlob(ctx, a, via, blobID)
			if err != nil {
				return err
			}

			if cache != nil {
				if err := cache.Put(blobID, data); err != nil {
					slog.Warn("cache write failed", "blob_id", blobID, "error", err)
				}
			}

			return writeBlob(cmd, outputFile, data)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "file", "f", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&via, "via", "json", "interface to use (json, daemon)")
	cmd.Flags().BoolVar(&useCache, "cache", false, "use the local blob cache")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "timeout")

	return cmd
}

func readBlob(ctx context.Context, a *app, via, blobID string) ([]byte, error) {
	switch via {
	case "json":
		c := walrus.New(a.cfg.WalrusBin, a.cfg.ResolvedWalrusConfig(), a.obs.Metrics)
		return c.Read(ctx, blobID)
	case "daemon":
		c := daemon.New(a.cfg.DaemonAddr, a.obs.Metrics)
		return c.Read(ctx, blobID)
	default:
		return nil, fmt.Errorf("unknown interface %q (want json or daemon)", via)
	}
}

func writeBlob(cmd *cobra.Command, outputFile string, data []byte) error {
	if outputFile != "" {
		if err := os.WriteFile(outputFile, data, 0o600); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s to %s\n", formatSize(uint64(len(data))), outputFile)
		return nil
	}
	// Raw data to stdout (no formatting for binary data)
	_, err := cmd.OutOrStdout().Write(data)
	return err
}
