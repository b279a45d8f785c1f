package meeting

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/meeting-rooms/internal/infra/storage"
)

// FileStore is where attachment bytes live.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (*storage.Object, error)
	Delete(ctx context.Context, key string) error
}

// Locker serializes work on one key across every API instance.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

type clock func() time.Time

// removeFiles deletes stored objects after their rows are gone. Failures
// only leave orphaned bytes behind, so they are logged and not returned.
func removeFiles(ctx context.Context, store FileStore, log *zap.Logger, keys []string) {
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			log.Warn("failed to delete stored file", zap.String("key", key), zap.Error(err))
		}
	}
}
