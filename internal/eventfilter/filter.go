// Package eventfilter compiles CEL expressions for selecting blob events,
// e.g. `event_type == "BlobRegistered" && size > 1048576`.
package eventfilter

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/walrus-tools/walrusctl/internal/sui"
)

// Attributes visible to filter expressions.
var eventKeys = []string{"event_type", "blob_id", "size", "tx_digest", "timestamp_ms"}

// Filter is a compiled CEL expression matched against blob events.
type Filter struct {
	program cel.Program
}

// Compile parses and compiles a CEL expression over the event attributes.
func Compile(expr string) (*Filter, error) {
	opts := make([]cel.EnvOption, 0, len(eventKeys))
	for _, k := range eventKeys {
		opts = append(opts, cel.Variable(k, cel.DynType))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("cel compile: %w", issues.Err())
	}

	prog, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("cel program: %w", err)
	}

	return &Filter{program: prog}, nil
}

// Match evaluates the filter against an event. Evaluation errors and
// non-boolean results mean no match, never a hard failure.
func (f *Filter) Match(ev sui.BlobEvent) bool {
	if f == nil {
		return true
	}
	out, _, err := f.program.Eval(map[string]any{
		"event_type":   ev.Type,
		"blob_id":      ev.BlobID,
		"size":         int64(ev.Size),
		"tx_digest":    ev.TxDigest,
		"timestamp_ms": ev.TimestampMs,
	})
	if err != nil {
		return false
	}
	if out.Type() != types.BoolType {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
