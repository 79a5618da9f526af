package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	MODE_LOCAL        = "local"
	MODE_GCS          = "gcs"
	MODE_GCS_EMULATOR = "gcs-emulator"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the bucket collaborator of the pipeline: ingest, emit,
// delete and listing of objects.
type ObjectStore interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Put(ctx context.Context, bucket, key string, data io.Reader) error
	Delete(ctx context.Context, bucket, key string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
	// List returns the keys of bucket starting with prefix, sorted.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Close() error
}

type Config struct {
	Mode         string
	Root         string
	EmulatorHost string
}

func New(ctx context.Context, conf Config) (ObjectStore, error) {
	var store ObjectStore
	var err error

	switch conf.Mode {
	case MODE_LOCAL, "":
		store, err = NewLocalStore(conf.Root)
	case MODE_GCS:
		store, err = NewGCSStore(ctx, "")
	case MODE_GCS_EMULATOR:
		if conf.EmulatorHost == "" {
			return nil, fmt.Errorf("storage mode %s requires an emulator host", conf.Mode)
		}
		store, err = NewGCSStore(ctx, conf.EmulatorHost)
	default:
		return nil, fmt.Errorf("unknown storage mode: %s", conf.Mode)
	}

	if err != nil {
		return nil, err
	}
	return store, nil
}
