package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/walrus-tools/walrusctl/internal/sui"
)

// commandContext derives a timeout context from the cobra command context.
// A zero timeout means no limit.
func commandContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

func formatSize(n uint64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.2f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatEventHeader(w io.Writer) {
	fmt.Fprintf(w, "%-19s %-16s %10s %-43s %s\n", "TIME", "EVENT", "SIZE", "BLOB ID", "TX")
}

func formatEventLine(w io.Writer, ev sui.BlobEvent) {
	size := ""
	if ev.Size > 0 {
		size = formatSize(ev.Size)
	}
	fmt.Fprintf(w, "%-19s %-16s %10s %-43s %s\n",
		ev.Time().Format("2006-01-02 15:04:05"), ev.Type, size, ev.BlobID, ev.TxDigest)
}
