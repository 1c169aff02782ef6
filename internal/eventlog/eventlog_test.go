package eventlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/walrus-tools/walrusctl/internal/sui"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func ev(digest, seq, typ string, ts int64) sui.BlobEvent {
	return sui.BlobEvent{
		TxDigest:    digest,
		EventSeq:    seq,
		Type:        typ,
		BlobID:      "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		Size:        1024,
		TimestampMs: ts,
	}
}

func TestPutAndRecent(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	if err := l.Put(ctx, ev("D1", "0", "BlobRegistered", 100)); err != nil {
		t.Fatal(err)
	}
	if err := l.Put(ctx, ev("D2", "0", "BlobCertified", 200)); err != nil {
		t.Fatal(err)
	}

	got, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	// Newest first.
	if got[0].TxDigest != "D2" || got[1].TxDigest != "D1" {
		t.Errorf("order = [%s, %s], want [D2, D1]", got[0].TxDigest, got[1].TxDigest)
	}
	if got[1].Type != "BlobRegistered" || got[1].Size != 1024 {
		t.Errorf("round-tripped event = %+v", got[1])
	}
}

func TestPutIdempotent(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	e := ev("D1", "0", "BlobRegistered", 100)
	for i := 0; i < 3; i++ {
		if err := l.Put(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	n, err := l.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1 after duplicate inserts", n)
	}
}

func TestPutBatch(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	batch := []sui.BlobEvent{
		ev("D1", "0", "BlobRegistered", 100),
		ev("D1", "1", "BlobCertified", 100),
		ev("D2", "0", "BlobRegistered", 300),
		ev("D1", "0", "BlobRegistered", 100), // duplicate
	}
	if err := l.PutBatch(ctx, batch); err != nil {
		t.Fatalf("PutBatch() error = %v", err)
	}

	n, err := l.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}

func TestRecentLimit(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		if err := l.Put(ctx, ev("D", string(rune('0'+i)), "BlobRegistered", i)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := l.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d events, want 2", len(got))
	}
}

func TestClosedLogRejectsWrites(t *testing.T) {
	l := openTestLog(t)
	_ = l.Close()

	if err := l.Put(context.Background(), ev("D1", "0", "BlobRegistered", 1)); err == nil {
		t.Error("expected error writing to closed archive")
	}
	if _, err := l.Recent(context.Background(), 1); err == nil {
		t.Error("expected error reading closed archive")
	}
}
