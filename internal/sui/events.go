package sui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/walrus-tools/walrusctl/internal/blobid"
	"github.com/walrus-tools/walrusctl/internal/observability"
)

// EventFilter is the filter argument of suix_queryEvents. Only the
// MoveModule variant is needed here.
type EventFilter struct {
	MoveModule *MoveModuleFilter `json:"MoveModule,omitempty"`
}

// MoveModuleFilter selects events emitted by one module of one package.
type MoveModuleFilter struct {
	Package string `json:"package"`
	Module  string `json:"module"`
}

// EventID identifies an event by transaction digest and sequence.
type EventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

// Event is a raw Sui event.
type Event struct {
	ID          EventID        `json:"id"`
	Type        string         `json:"type"`
	ParsedJSON  map[string]any `json:"parsedJson"`
	TimestampMs Uint64         `json:"timestampMs"`
}

// Name returns the event name without its package and module prefix. The
// package id length varies, so the prefix is stripped structurally rather
// than by offset.
func (e Event) Name() string {
	if i := strings.LastIndex(e.Type, "::"); i >= 0 {
		return e.Type[i+2:]
	}
	return e.Type
}

// Time returns the event timestamp.
func (e Event) Time() time.Time {
	return time.UnixMilli(int64(e.TimestampMs))
}

type queryEventsResult struct {
	Data        []Event  `json:"data"`
	NextCursor  *EventID `json:"nextCursor"`
	HasNextPage bool     `json:"hasNextPage"`
}

// QueryEvents fetches up to limit events matching the filter. A nil cursor
// starts from the newest (descending) or oldest (ascending) event.
func (c *Client) QueryEvents(ctx context.Context, filter EventFilter, cursor *EventID, limit int, descending bool) (events []Event, err error) {
	op, ctx := observability.StartOperation(ctx, c.metrics, "sui.query_events",
		attribute.Int("limit", limit))
	defer func() { op.End(err) }()

	var result queryEventsResult
	params := []any{filter, cursor, limit, descending}
	if err := c.call(ctx, "suix_queryEvents", params, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// BlobEvent is a decoded Walrus blob lifecycle event.
type BlobEvent struct {
	TxDigest    string `json:"txDigest"`
	EventSeq    string `json:"eventSeq"`
	Type        string `json:"type"`
	BlobID      string `json:"blobId"`
	Size        uint64 `json:"size,omitempty"`
	TimestampMs int64  `json:"timestampMs"`
}

// Time returns the event timestamp.
func (e BlobEvent) Time() time.Time {
	return time.UnixMilli(e.TimestampMs)
}

// ParseBlobEvent decodes a raw event from the Walrus blob module. The
// numeric blob_id in the payload converts to its textual form; size is only
// populated for BlobRegistered events.
func ParseBlobEvent(ev Event) (BlobEvent, error) {
	out := BlobEvent{
		TxDigest:    ev.ID.TxDigest,
		EventSeq:    ev.ID.EventSeq,
		Type:        ev.Name(),
		TimestampMs: int64(ev.TimestampMs),
	}

	raw, ok := ev.ParsedJSON["blob_id"]
	if !ok {
		return BlobEvent{}, fmt.Errorf("event %s has no blob_id", ev.ID.TxDigest)
	}
	dec, err := anyToDecimal(raw)
	if err != nil {
		return BlobEvent{}, fmt.Errorf("event %s: %w", ev.ID.TxDigest, err)
	}
	out.BlobID, err = blobid.EncodeDecimal(dec)
	if err != nil {
		return BlobEvent{}, fmt.Errorf("event %s: %w", ev.ID.TxDigest, err)
	}

	if sz, ok := ev.ParsedJSON["size"]; ok {
		if dec, err := anyToDecimal(sz); err == nil {
			if n, err := strconv.ParseUint(dec, 10, 64); err == nil {
				out.Size = n
			}
		}
	}

	return out, nil
}

func anyToDecimal(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unexpected numeric type %T", v)
	}
}
