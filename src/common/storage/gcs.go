package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/op/go-logging"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"sales-analysis/src/common/logger"
)

const (
	EMULATOR_API_PATH = "/storage/v1/"

	READ_TIMEOUT  = 2 * time.Minute
	WRITE_TIMEOUT = 2 * time.Minute
	META_TIMEOUT  = 30 * time.Second
)

// EmulatorEndpoint is the JSON API endpoint of an emulator reachable at
// host, e.g. "fake-gcs:4443" or "http://fake-gcs:4443/".
func EmulatorEndpoint(host string) string {
	endpoint := strings.TrimRight(strings.TrimSpace(host), "/")
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	return endpoint + EMULATOR_API_PATH
}

type GCSStore struct {
	log    *logging.Logger
	client *gcs.Client
}

// NewGCSStore connects to Google Cloud Storage. With a non-empty emulatorHost
// the client talks to that emulator without authentication.
func NewGCSStore(ctx context.Context, emulatorHost string) (*GCSStore, error) {
	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	if emulatorHost != "" {
		opts = []option.ClientOption{
			option.WithEndpoint(EmulatorEndpoint(emulatorHost)),
			option.WithoutAuthentication(),
		}
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{
		log:    logger.GetLoggerWithPrefix("[GCS-STORE]"),
		client: client,
	}, nil
}

type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	r.cancel()
	return err
}

// Open keeps its timeout context alive until the returned reader is closed.
func (s *GCSStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	readCtx, cancel := context.WithTimeout(ctx, READ_TIMEOUT)

	reader, err := s.client.Bucket(bucket).Object(key).NewReader(readCtx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		cancel()
		return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
	}
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open GCS reader for %s/%s: %w", bucket, key, err)
	}

	return &readCloserWithCancel{ReadCloser: reader, cancel: cancel}, nil
}

// Put relies on GCS replacing objects atomically on writer close.
func (s *GCSStore) Put(ctx context.Context, bucket, key string, data io.Reader) error {
	writeCtx, cancel := context.WithTimeout(ctx, WRITE_TIMEOUT)
	defer cancel()

	writer := s.client.Bucket(bucket).Object(key).NewWriter(writeCtx)
	writer.ContentType = "text/csv"
	if _, err := io.Copy(writer, data); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}

	s.log.Debugf("Stored gs://%s/%s", bucket, key)
	return nil
}

func (s *GCSStore) Delete(ctx context.Context, bucket, key string) error {
	deleteCtx, cancel := context.WithTimeout(ctx, META_TIMEOUT)
	defer cancel()

	err := s.client.Bucket(bucket).Object(key).Delete(deleteCtx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
	}
	if err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, bucket, err)
	}
	return nil
}

func (s *GCSStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	attrsCtx, cancel := context.WithTimeout(ctx, META_TIMEOUT)
	defer cancel()

	_, err := s.client.Bucket(bucket).Object(key).Attrs(attrsCtx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat GCS object %q in bucket %q: %w", key, bucket, err)
	}
	return true, nil
}

func (s *GCSStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	listCtx, cancel := context.WithTimeout(ctx, META_TIMEOUT)
	defer cancel()

	it := s.client.Bucket(bucket).Objects(listCtx, &gcs.Query{Prefix: prefix})
	keys := []string{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", bucket, err)
		}
		keys = append(keys, attrs.Name)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
