package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/walrus-tools/walrusctl/internal/blobid"
	"github.com/walrus-tools/walrusctl/internal/sui"
	"github.com/walrus-tools/walrusctl/internal/walrus"
)

// verifyReport is the JSON output of the verify command.
type verifyReport struct {
	BlobID         string `json:"blobId"`
	ObjectID       string `json:"objectId"`
	Size           int    `json:"size"`
	UploadSeconds  float64 `json:"uploadSeconds"`
	ReadSeconds    float64 `json:"readSeconds"`
	BytesMatch     bool   `json:"bytesMatch"`
	OnChainBlobID  string `json:"onChainBlobId"`
	CertifiedMatch bool   `json:"certifiedMatch"`
}

func newVerifyCmd(a *app) *cobra.Command {
	var epochs int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Upload a blob, read it back, and verify it against the chain",
		Long: `Run the full round trip: upload the file through the walrus binary's JSON
mode, download it again by blob id, compare the bytes, then fetch the blob
certificate object from the Sui full node and check that its numeric blob_id
field converts to the same textual blob id.

Examples:
  walrusctl verify myfile.bin
  walrusctl verify myfile.bin --epochs 5 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			original, err := os.ReadFile(path) //nolint:gosec // G304: intentional CLI file read
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			ctx, cancel := commandContext(cmd, timeout)
			defer cancel()

			wc := walrus.New(a.cfg.WalrusBin, a.cfg.ResolvedWalrusConfig(), a.obs.Metrics)

			start := time.Now()
			stored, err := wc.Store(ctx, path, epochs)
			if err != nil {
				return err
			}
			uploadDone := time.Now()

			downloaded, err := wc.Read(ctx, stored.BlobID)
			if err != nil {
				return err
			}
			readDone := time.Now()

			report := verifyReport{
				BlobID:        stored.BlobID,
				ObjectID:      stored.ObjectID,
				Size:          len(original),
				UploadSeconds: uploadDone.Sub(start).Seconds(),
				ReadSeconds:   readDone.Sub(uploadDone).Seconds(),
				BytesMatch:    bytes.Equal(original, downloaded),
			}

			if stored.ObjectID != "" {
				sc := sui.New(a.cfg.FullNodeURL, a.obs.Metrics)
				obj, err := sc.GetObject(ctx, stored.ObjectID, sui.ContentOptions())
				if err != nil {
					return err
				}
				if obj.Content == nil {
					return fmt.Errorf("object %s has no content", stored.ObjectID)
				}
				report.OnChainBlobID, err = onChainBlobID(obj.Content.Fields)
				if err != nil {
					return err
				}
				report.CertifiedMatch = report.OnChainBlobID == stored.BlobID
			}

			if a.output == "json" {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(report); err != nil {
					return err
				}
			} else {
				printVerifyReport(cmd, report)
			}

			if !report.BytesMatch {
				return fmt.Errorf("downloaded bytes differ from the original")
			}
			if stored.ObjectID != "" && !report.CertifiedMatch {
				return fmt.Errorf("on-chain blob id %s does not match %s", report.OnChainBlobID, report.BlobID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&epochs, "epochs", 2, "number of epochs to store for")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "timeout")

	return cmd
}

// onChainBlobID converts the numeric blob_id field of a blob certificate
// object to its textual form.
func onChainBlobID(fields map[string]any) (string, error) {
	raw, ok := fields["blob_id"]
	if !ok {
		return "", fmt.Errorf("certificate object has no blob_id field")
	}
	dec, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("certificate blob_id has unexpected type %T", raw)
	}
	return blobid.EncodeDecimal(dec)
}

func printVerifyReport(cmd *cobra.Command, r verifyReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Blob ID:    %s\n", r.BlobID)
	if r.ObjectID != "" {
		fmt.Fprintf(out, "Object ID:  %s\n", r.ObjectID)
	}
	fmt.Fprintf(out, "Size:       %s\n", formatSize(uint64(r.Size)))
	fmt.Fprintf(out, "Upload:     %.2fs\n", r.UploadSeconds)
	fmt.Fprintf(out, "Download:   %.2fs\n", r.ReadSeconds)
	fmt.Fprintf(out, "Bytes:      %s\n", okOrMismatch(r.BytesMatch))
	if r.OnChainBlobID != "" {
		fmt.Fprintf(out, "Certificate: %s\n", okOrMismatch(r.CertifiedMatch))
	}
}

func okOrMismatch(ok bool) string {
	if ok {
		return "OK"
	}
	return "MISMATCH"
}
