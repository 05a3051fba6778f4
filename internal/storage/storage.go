package storage

import (
	"context"
	"io"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Service stores exported snippet archives in remote object storage.
type Service interface {
	UploadArchive(ctx context.Context, key string, body io.Reader) (string, error)
	GetObjectURL(ctx context.Context, key string, expires time.Duration) (string, error)
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
