package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/walrus-tools/walrusctl/internal/config"
	"github.com/walrus-tools/walrusctl/internal/eventfilter"
	"github.com/walrus-tools/walrusctl/internal/eventlog"
	"github.com/walrus-tools/walrusctl/internal/sui"
)

func newEventsCmd(a *app) *cobra.Command {
	var limit int
	var filterExpr string
	var archive bool
	var archived bool
	var follow bool
	var interval time.Duration
	var metricsAddr string
	var systemObject string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List or follow Walrus blob events",
		Long: `List recent blob lifecycle events (BlobRegistered, BlobCertified, …)
emitted by the Walrus package on Sui.

Filters are CEL expressions over event_type, blob_id, size, tx_digest, and
timestamp_ms. With --archive, observed events are also written to the local
event archive; --archived lists from the archive without touching the
network. --follow renders a live view that polls the full node.

Examples:
  walrusctl events
  walrusctl events --limit 20
  walrusctl events --filter 'event_type == "BlobRegistered" && size > 1048576'
  walrusctl events --archive
  walrusctl events --archived --limit 50
  walrusctl events --follow --interval 10s --metrics-addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *eventfilter.Filter
			if filterExpr != "" {
				var err error
				filter, err = eventfilter.Compile(filterExpr)
				if err != nil {
					return err
				}
			}

			if archived {
				ctx, cancel := commandContext(cmd, timeout)
				defer cancel()
				return listArchived(ctx, cmd, a, filter, limit)
			}

			var log *eventlog.Log
			if archive {
				var err error
				log, err = eventlog.Open(a.cfg.Archive.Path)
				if err != nil {
					return err
				}
				defer func() { _ = log.Close() }()
			}

			if follow {
				// The follow view runs until interrupted; no timeout.
				fetch, err := newEventFetcher(cmd.Context(), a, systemObject, filter, log, limit)
				if err != nil {
					return err
				}

				if addr := followMetricsAddr(metricsAddr, a.cfg); addr != "" {
					a.obs.ServeMetrics(addr)
				}

				model := newFollowModel(fetch, a.obs.Metrics, interval)
				_, err = tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
				return err
			}

			ctx, cancel := commandContext(cmd, timeout)
			defer cancel()

			fetch, err := newEventFetcher(ctx, a, systemObject, filter, log, limit)
			if err != nil {
				return err
			}
			events, err := fetch(ctx)
			if err != nil {
				return err
			}
			return printEvents(cmd, a, events)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "number of events to fetch")
	cmd.Flags().StringVar(&filterExpr, "filter", "", "CEL filter expression")
	cmd.Flags().BoolVar(&archive, "archive", false, "write observed events to the local archive")
	cmd.Flags().BoolVar(&archived, "archived", false, "list from the local archive instead of the network")
	cmd.Flags().BoolVar(&follow, "follow", false, "poll and render a live event view")
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "poll interval for --follow")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address in --follow mode")
	cmd.Flags().StringVar(&systemObject, "system-object", "", "system object id (default: from walrus config)")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "timeout (ignored with --follow)")

	return cmd
}

// eventFetcher pulls one window of decoded, filtered blob events.
type eventFetcher func(ctx context.Context) ([]sui.BlobEvent, error)

// newEventFetcher resolves the Walrus package from the system object once
// and returns a fetcher for the blob module's events. If log is non-nil
// every fetched window is archived; inserts are idempotent, so overlapping
// windows are fine.
func newEventFetcher(ctx context.Context, a *app, systemObject string, filter *eventfilter.Filter, log *eventlog.Log, limit int) (eventFetcher, error) {
	objectID, err := resolveSystemObject(a, systemObject)
	if err != nil {
		return nil, err
	}

	sc := sui.New(a.cfg.FullNodeURL, a.obs.Metrics)

	obj, err := sc.GetObject(ctx, objectID, sui.ObjectDataOptions{ShowType: true})
	if err != nil {
		return nil, err
	}
	pkg, err := sui.PackageFromType(obj.Type)
	if err != nil {
		return nil, err
	}
	slog.Debug("resolved walrus package", "package", pkg, "system_object", objectID)

	moveFilter := sui.EventFilter{
		MoveModule: &sui.MoveModuleFilter{Package: pkg, Module: config.Defaults.EventModule},
	}

	return func(ctx context.Context) ([]sui.BlobEvent, error) {
		raw, err := sc.QueryEvents(ctx, moveFilter, nil, limit, true)
		if err != nil {
			return nil, err
		}

		events := make([]sui.BlobEvent, 0, len(raw))
		for _, ev := range raw {
			decoded, err := sui.ParseBlobEvent(ev)
			if err != nil {
				slog.Warn("skipping undecodable event", "tx", ev.ID.TxDigest, "error", err)
				continue
			}
			if !filter.Match(decoded) {
				continue
			}
			events = append(events, decoded)
		}

		if log != nil && len(events) > 0 {
			if err := log.PutBatch(ctx, events); err != nil {
				slog.Warn("event archive write failed", "error", err)
			}
		}
		return events, nil
	}, nil
}

func listArchived(ctx context.Context, cmd *cobra.Command, a *app, filter *eventfilter.Filter, limit int) error {
	log, err := eventlog.Open(a.cfg.Archive.Path)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	events, err := log.Recent(ctx, limit)
	if err != nil {
		return err
	}

	kept := events[:0]
	for _, ev := range events {
		if filter.Match(ev) {
			kept = append(kept, ev)
		}
	}
	return printEvents(cmd, a, kept)
}

func printEvents(cmd *cobra.Command, a *app, events []sui.BlobEvent) error {
	if a.output == "json" {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(events)
	}

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(out, "no events")
		return nil
	}
	formatEventHeader(out)
	for _, ev := range events {
		formatEventLine(out, ev)
	}
	return nil
}

func followMetricsAddr(flagAddr string, cfg config.Config) string {
	if flagAddr != "" {
		return flagAddr
	}
	return cfg.Observability.MetricsAddr
}
