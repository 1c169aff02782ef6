package blobid

import (
	"errors"
	"math/big"
	"math/rand"
	"regexp"
	"strings"
	"testing"
)

// Worked example from the Walrus documentation: a real certified blob.
const (
	knownNum = "46269954626831698189342469164469112511517843773769981308926739591706762839432"
	knownID  = "iIWkkUTzPZx-d1E_A7LqUynnYFD-ztk39_tP8MLdS2Y"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad test number %q", s)
	}
	return n
}

func TestEncodeNumKnownVector(t *testing.T) {
	got, err := EncodeNum(mustBig(t, knownNum))
	if err != nil {
		t.Fatalf("EncodeNum() error = %v", err)
	}
	if got != knownID {
		t.Errorf("EncodeNum() = %q, want %q", got, knownID)
	}
}

func TestEncodeNumZero(t *testing.T) {
	// 32 zero bytes encode to 43 'A' characters once padding is stripped.
	got, err := EncodeNum(big.NewInt(0))
	if err != nil {
		t.Fatalf("EncodeNum(0) error = %v", err)
	}
	if want := strings.Repeat("A", EncodedLen); got != want {
		t.Errorf("EncodeNum(0) = %q, want %q", got, want)
	}
}

func TestEncodeNumFixedWidth(t *testing.T) {
	alphabet := regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)

	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(255),
		big.NewInt(256),
		mustBig(t, knownNum),
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)),
	}
	for _, v := range values {
		got, err := EncodeNum(v)
		if err != nil {
			t.Fatalf("EncodeNum(%s) error = %v", v, err)
		}
		if len(got) != EncodedLen {
			t.Errorf("EncodeNum(%s) length = %d, want %d", v, len(got), EncodedLen)
		}
		if !alphabet.MatchString(got) {
			t.Errorf("EncodeNum(%s) = %q, not URL-safe base64 without padding", v, got)
		}
	}
}

func TestEncodeNumOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		n    *big.Int
	}{
		{"2^256", new(big.Int).Lsh(big.NewInt(1), 256)},
		{"negative", big.NewInt(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeNum(tt.n); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("EncodeNum(%s) error = %v, want ErrOutOfRange", tt.n, err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	max := new(big.Int).Lsh(big.NewInt(1), 256)

	for i := 0; i < 200; i++ {
		v := new(big.Int).Rand(rng, max)
		enc, err := EncodeNum(v)
		if err != nil {
			t.Fatalf("EncodeNum(%s) error = %v", v, err)
		}
		dec, err := DecodeNum(enc)
		if err != nil {
			t.Fatalf("DecodeNum(%q) error = %v", enc, err)
		}
		if dec.Cmp(v) != 0 {
			t.Fatalf("round trip: got %s, want %s", dec, v)
		}
	}
}

func TestDecodeNumKnownVector(t *testing.T) {
	got, err := DecodeNum(knownID)
	if err != nil {
		t.Fatalf("DecodeNum() error = %v", err)
	}
	if want := mustBig(t, knownNum); got.Cmp(want) != 0 {
		t.Errorf("DecodeNum() = %s, want %s", got, want)
	}
}

func TestDecodeNumRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"short", "iIWkkUTz"},
		{"bad chars", strings.Repeat("+", EncodedLen)},
		{"too long", knownID + "AAAA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeNum(tt.in); err == nil {
				t.Errorf("DecodeNum(%q) = nil error, want failure", tt.in)
			}
		})
	}
}

func TestEncodeDecimal(t *testing.T) {
	got, err := EncodeDecimal(knownNum)
	if err != nil {
		t.Fatalf("EncodeDecimal() error = %v", err)
	}
	if got != knownID {
		t.Errorf("EncodeDecimal() = %q, want %q", got, knownID)
	}

	if _, err := EncodeDecimal("not-a-number"); err == nil {
		t.Error("EncodeDecimal(garbage) = nil error, want failure")
	}
}

func TestEncodeNumPure(t *testing.T) {
	n := mustBig(t, knownNum)
	first, err := EncodeNum(n)
	if err != nil {
		t.Fatalf("EncodeNum() error = %v", err)
	}
	second, err := EncodeNum(n)
	if err != nil {
		t.Fatalf("EncodeNum() error = %v", err)
	}
	if first != second {
		t.Errorf("EncodeNum not deterministic: %q then %q", first, second)
	}
	// The input must not be mutated.
	if n.String() != knownNum {
		t.Errorf("EncodeNum mutated its input: %s", n)
	}
}
