package sui

import (
	"encoding/json"
	"testing"
)

const systemFieldsJSON = `{
	"current_committee": {
		"fields": {
			"epoch": 2,
			"bls_committee": {
				"fields": {
					"members": [{}, {}, {}, {}],
					"n_shards": 1000
				}
			}
		}
	},
	"price_per_unit_size": "10",
	"total_capacity_size": "1000000000000",
	"used_capacity_size": "305924"
}`

func systemFields(t *testing.T) map[string]any {
	t.Helper()
	var fields map[string]any
	if err := json.Unmarshal([]byte(systemFieldsJSON), &fields); err != nil {
		t.Fatal(err)
	}
	return fields
}

func TestParseSystemState(t *testing.T) {
	got, err := ParseSystemState(systemFields(t))
	if err != nil {
		t.Fatalf("ParseSystemState() error = %v", err)
	}

	want := SystemState{
		Epoch:            2,
		CommitteeSize:    4,
		Shards:           1000,
		PricePerUnitSize: 10,
		TotalCapacity:    1000000000000,
		UsedCapacity:     305924,
	}
	if *got != want {
		t.Errorf("ParseSystemState() = %+v, want %+v", *got, want)
	}
}

func TestParseSystemStateMissingField(t *testing.T) {
	fields := systemFields(t)
	delete(fields, "price_per_unit_size")

	if _, err := ParseSystemState(fields); err == nil {
		t.Error("expected error for missing price field")
	}
}

func TestParseSystemStateMissingCommittee(t *testing.T) {
	if _, err := ParseSystemState(map[string]any{}); err == nil {
		t.Error("expected error for missing committee")
	}
}

func TestPackageFromType(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0x1a2b3c::system::System", "0x1a2b3c", false},
		{"0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef::system::System", "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef", false},
		{"0x2::coin::Coin", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := PackageFromType(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("PackageFromType(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("PackageFromType(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PackageFromType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
