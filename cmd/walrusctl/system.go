package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/walrus-tools/walrusctl/internal/config"
	"github.com/walrus-tools/walrusctl/internal/sui"
)

func newSystemCmd(a *app) *cobra.Command {
	var systemObject string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "system",
		Short: "Show the Walrus system object",
		Long: `Fetch the Walrus system object from the Sui full node and print the
current epoch, committee, pricing, and capacity.

The system object id is read from the walrus client config unless given
explicitly with --system-object.

Examples:
  walrusctl system
  walrusctl system --system-object 0x3243c5…
  walrusctl system -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd, timeout)
			defer cancel()

			objectID, err := resolveSystemObject(a, systemObject)
			if err != nil {
				return err
			}

			sc := sui.New(a.cfg.FullNodeURL, a.obs.Metrics)
			obj, err := sc.GetObject(ctx, objectID, sui.ContentOptions())
			if err != nil {
				return err
			}
			if obj.Content == nil {
				return fmt.Errorf("system object %s has no content", objectID)
			}

			state, err := sui.ParseSystemState(obj.Content.Fields)
			if err != nil {
				return err
			}

			if a.output == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(state)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "System object:  %s\n", objectID)
			fmt.Fprintf(out, "Current epoch:  %d\n", state.Epoch)
			fmt.Fprintf(out, "Committee:      %d members, %d shards\n", state.CommitteeSize, state.Shards)
			fmt.Fprintf(out, "Price:          %d MIST per unit size\n", state.PricePerUnitSize)
			fmt.Fprintf(out, "Capacity:       %s used of %s\n",
				formatSize(state.UsedCapacity), formatSize(state.TotalCapacity))
			return nil
		},
	}

	cmd.Flags().StringVar(&systemObject, "system-object", "", "system object id (default: from walrus config)")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "timeout")

	return cmd
}

func resolveSystemObject(a *app, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return config.SystemObjectID(a.cfg.ResolvedWalrusConfig())
}
