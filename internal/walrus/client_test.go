package walrus

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestParseStoreResponseNewlyCreated(t *testing.T) {
	raw := []byte(`{
		"newlyCreated": {
			"blobObject": {
				"id": "0xabc123",
				"blobId": "iIWkkUTzPZx-d1E_A7LqUynnYFD-ztk39_tP8MLdS2Y",
				"size": 66034000,
				"unencodedSize": 1048576
			}
		}
	}`)

	got, err := ParseStoreResponse(raw)
	if err != nil {
		t.Fatalf("ParseStoreResponse() error = %v", err)
	}
	if got.BlobID != "iIWkkUTzPZx-d1E_A7LqUynnYFD-ztk39_tP8MLdS2Y" {
		t.Errorf("BlobID = %q", got.BlobID)
	}
	if got.ObjectID != "0xabc123" {
		t.Errorf("ObjectID = %q", got.ObjectID)
	}
	if got.Size != 1048576 {
		t.Errorf("Size = %d, want unencoded size", got.Size)
	}
	if got.AlreadyCertified {
		t.Error("AlreadyCertified = true for a newly created blob")
	}
}

func TestParseStoreResponseAlreadyCertified(t *testing.T) {
	raw := []byte(`{
		"alreadyCertified": {
			"blobObject": {
				"id": "0xdef456",
				"blobId": "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
			}
		}
	}`)

	got, err := ParseStoreResponse(raw)
	if err != nil {
		t.Fatalf("ParseStoreResponse() error = %v", err)
	}
	if !got.AlreadyCertified {
		t.Error("AlreadyCertified = false")
	}
	if got.ObjectID != "0xdef456" {
		t.Errorf("ObjectID = %q", got.ObjectID)
	}
}

func TestParseStoreResponseLegacyFlat(t *testing.T) {
	raw := []byte(`{"blob_id": "legacyBlobId", "sui_object_id": "0x999"}`)

	got, err := ParseStoreResponse(raw)
	if err != nil {
		t.Fatalf("ParseStoreResponse() error = %v", err)
	}
	if got.BlobID != "legacyBlobId" || got.ObjectID != "0x999" {
		t.Errorf("got %+v, want legacy fields mapped", got)
	}
}

func TestParseStoreResponseError(t *testing.T) {
	if _, err := ParseStoreResponse([]byte(`{"error": "insufficient balance"}`)); err == nil {
		t.Error("expected error from error response")
	}
	if _, err := ParseStoreResponse([]byte(`{"something": "else"}`)); err == nil {
		t.Error("expected error from unknown shape")
	}
	if _, err := ParseStoreResponse([]byte(`not json`)); err == nil {
		t.Error("expected error from invalid JSON")
	}
}

// stubBinary writes a shell script that records stdin and prints a canned
// reply, standing in for the walrus binary.
func stubBinary(t *testing.T, reply string) (bin, stdinFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires unix")
	}

	dir := t.TempDir()
	stdinFile = filepath.Join(dir, "stdin.json")
	bin = filepath.Join(dir, "walrus")

	script := "#!/bin/sh\ncat > " + stdinFile + "\nprintf '%s' '" + reply + "'\n"
	if err := os.WriteFile(bin, []byte(script), 0o700); err != nil {
		t.Fatal(err)
	}
	return bin, stdinFile
}

func TestClientStore(t *testing.T) {
	reply := `{"newlyCreated":{"blobObject":{"id":"0x1","blobId":"bid","unencodedSize":3}}}`
	bin, stdinFile := stubBinary(t, reply)

	c := New(bin, "/etc/walrus/client_config.yaml", nil)
	got, err := c.Store(context.Background(), "/tmp/data.bin", 2)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if got.BlobID != "bid" || got.ObjectID != "0x1" || got.Size != 3 {
		t.Errorf("Store() = %+v", got)
	}

	// The command document must name the config, the file, and the epochs.
	sent, err := os.ReadFile(stdinFile)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Config  string `json:"config"`
		Command struct {
			Store struct {
				File   string `json:"file"`
				Epochs int    `json:"epochs"`
			} `json:"store"`
		} `json:"command"`
	}
	if err := json.Unmarshal(sent, &doc); err != nil {
		t.Fatalf("stdin was not JSON: %v\n%s", err, sent)
	}
	if doc.Config != "/etc/walrus/client_config.yaml" {
		t.Errorf("config = %q", doc.Config)
	}
	if doc.Command.Store.File != "/tmp/data.bin" || doc.Command.Store.Epochs != 2 {
		t.Errorf("store command = %+v", doc.Command.Store)
	}
}

func TestClientRead(t *testing.T) {
	payload := []byte("hello walrus")
	reply := `{"blobId":"bid","blob":"` + base64.StdEncoding.EncodeToString(payload) + `"}`
	bin, stdinFile := stubBinary(t, reply)

	c := New(bin, "", nil)
	got, err := c.Read(context.Background(), "bid")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Read() = %q, want %q", got, payload)
	}

	sent, err := os.ReadFile(stdinFile)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Command struct {
			Read struct {
				BlobID string `json:"blobId"`
			} `json:"read"`
		} `json:"command"`
	}
	if err := json.Unmarshal(sent, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Command.Read.BlobID != "bid" {
		t.Errorf("read command blobId = %q", doc.Command.Read.BlobID)
	}
}

func TestClientBinaryFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires unix")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "walrus")
	script := "#!/bin/sh\necho 'no wallet configured' >&2\nexit 1\n"
	if err := os.WriteFile(bin, []byte(script), 0o700); err != nil {
		t.Fatal(err)
	}

	c := New(bin, "", nil)
	_, err := c.Read(context.Background(), "bid")
	if err == nil {
		t.Fatal("expected error from failing binary")
	}
	if want := "no wallet configured"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should carry stderr excerpt %q", err, want)
	}
}
