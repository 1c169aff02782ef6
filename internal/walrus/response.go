package walrus

import (
	"encoding/json"
	"fmt"
)

// StoreResult is the outcome of a store command, normalized across the
// response schema variants the walrus client has shipped.
type StoreResult struct {
	BlobID           string
	ObjectID         string
	Size             int64
	AlreadyCertified bool
}

// BlobObject is the on-chain blob certificate as reported by the client.
type BlobObject struct {
	ID            string `json:"id"`
	BlobID        string `json:"blobId"`
	Size          int64  `json:"size"`
	UnencodedSize int64  `json:"unencodedSize"`
}

// storeOutcome covers both the current nested shape
// ({"blobObject": {"blobId": ..., "id": ...}}) and the legacy flat one
// ({"blobId": ..., "sui_object_id": ...}).
type storeOutcome struct {
	BlobObject BlobObject `json:"blobObject"`

	BlobID      string `json:"blobId"`
	SuiObjectID string `json:"sui_object_id"`
}

func (o *storeOutcome) result() (*StoreResult, bool) {
	if o.BlobObject.BlobID != "" {
		size := o.BlobObject.UnencodedSize
		if size == 0 {
			size = o.BlobObject.Size
		}
		return &StoreResult{
			BlobID:   o.BlobObject.BlobID,
			ObjectID: o.BlobObject.ID,
			Size:     size,
		}, true
	}
	if o.BlobID != "" {
		return &StoreResult{BlobID: o.BlobID, ObjectID: o.SuiObjectID}, true
	}
	return nil, false
}

type storeResponse struct {
	NewlyCreated     *storeOutcome `json:"newlyCreated"`
	AlreadyCertified *storeOutcome `json:"alreadyCertified"`

	// Legacy flat schema, predating the newlyCreated/alreadyCertified split.
	BlobID      string `json:"blob_id"`
	SuiObjectID string `json:"sui_object_id"`

	Error string `json:"error"`
}

// ParseStoreResponse decodes a store reply from either the JSON-mode binary
// or the daemon HTTP API, which share the same document shape.
func ParseStoreResponse(raw []byte) (*StoreResult, error) {
	var resp storeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode store response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("walrus store failed: %s", resp.Error)
	}

	if resp.NewlyCreated != nil {
		if r, ok := resp.NewlyCreated.result(); ok {
			return r, nil
		}
	}
	if resp.AlreadyCertified != nil {
		if r, ok := resp.AlreadyCertified.result(); ok {
			r.AlreadyCertified = true
			return r, nil
		}
	}
	if resp.BlobID != "" {
		return &StoreResult{BlobID: resp.BlobID, ObjectID: resp.SuiObjectID}, nil
	}

	return nil, fmt.Errorf("unexpected store response shape")
}
