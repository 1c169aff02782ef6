package sui

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/walrus-tools/walrusctl/internal/observability"
)

// ObjectDataOptions selects which parts of an object sui_getObject returns.
type ObjectDataOptions struct {
	ShowType                bool `json:"showType"`
	ShowOwner               bool `json:"showOwner"`
	ShowPreviousTransaction bool `json:"showPreviousTransaction"`
	ShowDisplay             bool `json:"showDisplay"`
	ShowContent             bool `json:"showContent"`
	ShowBcs                 bool `json:"showBcs"`
	ShowStorageRebate       bool `json:"showStorageRebate"`
}

// ContentOptions asks for the object type and its Move field contents, the
// subset every walrusctl command needs.
func ContentOptions() ObjectDataOptions {
	return ObjectDataOptions{ShowType: true, ShowPreviousTransaction: true, ShowContent: true}
}

// ObjectData is the object payload of a sui_getObject reply.
type ObjectData struct {
	ObjectID string         `json:"objectId"`
	Version  string         `json:"version"`
	Digest   string         `json:"digest"`
	Type     string         `json:"type"`
	Content  *ObjectContent `json:"content"`
}

// ObjectContent carries the Move struct contents of an object.
type ObjectContent struct {
	DataType string         `json:"dataType"`
	Type     string         `json:"type"`
	Fields   map[string]any `json:"fields"`
}

type getObjectResult struct {
	Data  *ObjectData    `json:"data"`
	Error map[string]any `json:"error"`
}

// GetObject fetches an on-chain object by id.
func (c *Client) GetObject(ctx context.Context, objectID string, opts ObjectDataOptions) (data *ObjectData, err error) {
	op, ctx := observability.StartOperation(ctx, c.metrics, "sui.get_object",
		attribute.String("object_id", objectID))
	defer func() { op.End(err) }()

	var result getObjectResult
	if err := c.call(ctx, "sui_getObject", []any{objectID, opts}, &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, fmt.Errorf("sui_getObject %s: %v", objectID, result.Error)
	}
	if result.Data == nil {
		return nil, fmt.Errorf("sui_getObject %s: empty result", objectID)
	}
	return result.Data, nil
}

// SystemState is the summary of the Walrus system object.
type SystemState struct {
	Epoch            uint64
	CommitteeSize    int
	Shards           uint64
	PricePerUnitSize uint64
	TotalCapacity    uint64
	UsedCapacity     uint64
}

// ParseSystemState extracts the system summary from the system object's Move
// fields.
func ParseSystemState(fields map[string]any) (*SystemState, error) {
	committee, err := dig(fields, "current_committee", "fields")
	if err != nil {
		return nil, fmt.Errorf("system object: %w", err)
	}

	epoch, err := fieldUint(committee, "epoch")
	if err != nil {
		return nil, fmt.Errorf("system object: %w", err)
	}

	bls, err := dig(committee, "bls_committee", "fields")
	if err != nil {
		return nil, fmt.Errorf("system object: %w", err)
	}
	members, _ := bls["members"].([]any)
	shards, err := fieldUint(bls, "n_shards")
	if err != nil {
		return nil, fmt.Errorf("system object: %w", err)
	}

	price, err := fieldUint(fields, "price_per_unit_size")
	if err != nil {
		return nil, fmt.Errorf("system object: %w", err)
	}
	total, err := fieldUint(fields, "total_capacity_size")
	if err != nil {
		return nil, fmt.Errorf("system object: %w", err)
	}
	used, err := fieldUint(fields, "used_capacity_size")
	if err != nil {
		return nil, fmt.Errorf("system object: %w", err)
	}

	return &SystemState{
		Epoch:            epoch,
		CommitteeSize:    len(members),
		Shards:           shards,
		PricePerUnitSize: price,
		TotalCapacity:    total,
		UsedCapacity:     used,
	}, nil
}

var systemTypePattern = regexp.MustCompile(`(0x[0-9a-f]+)::system`)

// PackageFromType extracts the Walrus package id from the system object's
// type tag (e.g. "0xabc…::system::System" yields "0xabc…").
func PackageFromType(typeTag string) (string, error) {
	m := systemTypePattern.FindStringSubmatch(typeTag)
	if m == nil {
		return "", fmt.Errorf("type tag %q does not name a system module", typeTag)
	}
	return m[1], nil
}

// dig walks nested map[string]any values by key.
func dig(m map[string]any, keys ...string) (map[string]any, error) {
	cur := m
	for _, k := range keys {
		next, ok := cur[k].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("missing field %q", k)
		}
		cur = next
	}
	return cur, nil
}

// fieldUint reads a numeric field that may arrive as a JSON number or as a
// decimal string.
func fieldUint(m map[string]any, key string) (uint64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return n, nil
	case float64:
		return uint64(t), nil
	case json.Number:
		n, err := strconv.ParseUint(t.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("field %q has unexpected type %T", key, v)
	}
}
