package pipeline_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"sales-analysis/src/common/pipeline"
	"sales-analysis/src/common/storage"
	"sales-analysis/src/sales"
)

const (
	inputBucket  = "sales-input"
	outputBucket = "sales-output"
	fileName     = "01-10-2022-store1.csv"
)

const rawSales = "index;store;product;quantity;unitPrice;discount;unitProfit\n" +
	"1;storeA;widgetX;2;10.00;x;1.50\n" +
	"2;storeA;widgetX;3;10.00;x;1.50\n" +
	"broken row\n"

// faultyStore wraps a real store and fails selected operations.
type faultyStore struct {
	storage.ObjectStore
	putErr    error
	deleteErr error
	readErr   error
}

func (f *faultyStore) Put(ctx context.Context, bucket, key string, data io.Reader) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.ObjectStore.Put(ctx, bucket, key, data)
}

func (f *faultyStore) Delete(ctx context.Context, bucket, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.ObjectStore.Delete(ctx, bucket, key)
}

func (f *faultyStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	reader, err := f.ObjectStore.Open(ctx, bucket, key)
	if err != nil || f.readErr == nil {
		return reader, err
	}
	return struct {
		io.Reader
		io.Closer
	}{io.MultiReader(io.LimitReader(reader, 20), iotest.ErrReader(f.readErr)), reader}, nil
}

func newStore(t *testing.T) storage.ObjectStore {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), inputBucket, fileName, strings.NewReader(rawSales)))
	return store
}

func exists(t *testing.T, store storage.ObjectStore, bucket, key string) bool {
	t.Helper()
	found, err := store.Exists(context.Background(), bucket, key)
	require.NoError(t, err)
	return found
}

func TestProcessEmitsArtifactAndDeletesInput(t *testing.T) {
	store := newStore(t)

	result, err := pipeline.NewFileProcessor(store, outputBucket).Process(context.Background(), inputBucket, fileName)
	require.NoError(t, err)
	require.Equal(t, "Summary-01-10-2022-store1.csv", result.Artifact)
	require.Equal(t, 2, result.Stats.Rows)
	require.Equal(t, 1, result.Stats.Skipped)
	require.Equal(t, 1, result.Stores)

	require.False(t, exists(t, store, inputBucket, fileName))

	reader, err := store.Open(context.Background(), outputBucket, result.Artifact)
	require.NoError(t, err)
	defer reader.Close()
	rollup, _, err := sales.NewRollupCodec().Decode(reader)
	require.NoError(t, err)
	require.Equal(t, "7.50", rollup.Stores["storeA"].StringFixed(2))
	require.EqualValues(t, 5, rollup.Products["widgetX"].Quantity)
}

func TestProcessMissingInput(t *testing.T) {
	store := newStore(t)

	_, err := pipeline.NewFileProcessor(store, outputBucket).Process(context.Background(), inputBucket, "missing.csv")
	require.ErrorIs(t, err, sales.ErrArtifactUnavailable)
	require.ErrorIs(t, err, storage.ErrObjectNotFound)
	require.False(t, exists(t, store, outputBucket, pipeline.ArtifactName("missing.csv")))
}

func TestProcessReadFailureEmitsNothing(t *testing.T) {
	store := &faultyStore{ObjectStore: newStore(t), readErr: errors.New("connection reset")}

	_, err := pipeline.NewFileProcessor(store, outputBucket).Process(context.Background(), inputBucket, fileName)
	require.ErrorIs(t, err, sales.ErrArtifactUnavailable)
	require.False(t, exists(t, store, outputBucket, pipeline.ArtifactName(fileName)))
	require.True(t, exists(t, store, inputBucket, fileName))
}

func TestProcessEmitFailureKeepsInput(t *testing.T) {
	store := &faultyStore{ObjectStore: newStore(t), putErr: errors.New("quota exceeded")}

	_, err := pipeline.NewFileProcessor(store, outputBucket).Process(context.Background(), inputBucket, fileName)
	require.Error(t, err)
	require.True(t, exists(t, store, inputBucket, fileName))
}

func TestProcessDeleteFailureIsNotFatal(t *testing.T) {
	store := &faultyStore{ObjectStore: newStore(t), deleteErr: errors.New("permission denied")}

	result, err := pipeline.NewFileProcessor(store, outputBucket).Process(context.Background(), inputBucket, fileName)
	require.NoError(t, err)
	require.True(t, exists(t, store, outputBucket, result.Artifact))
	require.True(t, exists(t, store, inputBucket, fileName))
}

func TestProcessTwiceOverwritesArtifact(t *testing.T) {
	store := newStore(t)
	processor := pipeline.NewFileProcessor(store, outputBucket)

	_, err := processor.Process(context.Background(), inputBucket, fileName)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), inputBucket, fileName, strings.NewReader(rawSales)))
	_, err = processor.Process(context.Background(), inputBucket, fileName)
	require.NoError(t, err)

	keys, err := store.List(context.Background(), outputBucket, pipeline.SUMMARY_PREFIX)
	require.NoError(t, err)
	require.Equal(t, []string{pipeline.ArtifactName(fileName)}, keys)
}

func TestIsArtifactForDate(t *testing.T) {
	require.True(t, pipeline.IsArtifactForDate("Summary-01-10-2022-store3.csv", "01-10-2022"))
	require.False(t, pipeline.IsArtifactForDate("Summary-02-10-2022-store3.csv", "01-10-2022"))
	require.False(t, pipeline.IsArtifactForDate("01-10-2022-store3.csv", "01-10-2022"))
}
