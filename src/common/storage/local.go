package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/op/go-logging"

	"sales-analysis/src/common/logger"
)

const (
	TEMP_FILE_PATTERN = ".upload-*"

	DIR_PERMISSIONS = 0o755
)

// LocalStore keeps one directory per bucket under root.
type LocalStore struct {
	log  *logging.Logger
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, errors.New("local storage root is not set")
	}
	if err := os.MkdirAll(root, DIR_PERMISSIONS); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}

	return &LocalStore{
		log:  logger.GetLoggerWithPrefix("[LOCAL-STORE]"),
		root: root,
	}, nil
}

// validName rejects names that would leave their parent directory.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

func (s *LocalStore) bucketPath(bucket string) (string, error) {
	if !validName(bucket) {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	return filepath.Join(s.root, bucket), nil
}

func (s *LocalStore) path(bucket, key string) (string, error) {
	dir, err := s.bucketPath(bucket)
	if err != nil {
		return "", err
	}
	if !validName(key) {
		return "", fmt.Errorf("invalid object %q in bucket %q", key, bucket)
	}
	return filepath.Join(dir, key), nil
}

func (s *LocalStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	path, err := s.path(bucket, key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s/%s: %w", bucket, key, err)
	}
	return file, nil
}

// Put writes to a temporary file and renames it into place, so readers never
// observe a partial object and rewriting a key replaces it whole.
func (s *LocalStore) Put(ctx context.Context, bucket, key string, data io.Reader) error {
	path, err := s.path(bucket, key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DIR_PERMISSIONS); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}

	tmp, err := os.CreateTemp(dir, TEMP_FILE_PATTERN)
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", bucket, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s/%s: %w", bucket, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s/%s: %w", bucket, key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to publish %s/%s: %w", bucket, key, err)
	}

	s.log.Debugf("Stored %s/%s", bucket, key)
	return nil
}

func (s *LocalStore) Delete(ctx context.Context, bucket, key string) error {
	path, err := s.path(bucket, key)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *LocalStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	path, err := s.path(bucket, key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

func (s *LocalStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	dir, err := s.bucketPath(bucket)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket %s: %w", bucket, err)
	}

	keys := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasPrefix(name, prefix) {
			continue
		}
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *LocalStore) Close() error {
	return nil
}
