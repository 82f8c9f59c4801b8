package payments

import (
	"bytes"
	"context"

	"github.com/swarupnama50/cf-py/internal/storage"
)

// PayloadArchive stores raw gateway payload snapshots through the configured
// storage driver (local dir or S3).
type PayloadArchive struct {
	store storage.Storage
}

func NewPayloadArchive(st storage.Storage) *PayloadArchive {
	return &PayloadArchive{store: st}
}

func (a *PayloadArchive) Archive(ctx context.Context, key string, payload []byte) error {
	_, err := a.store.Put(ctx, bytes.NewReader(payload), storage.PutInput{
		Filename:    key + ".json",
		ContentType: "application/json",
		Size:        int64(len(payload)),
	})
	return err
}
