package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/op/go-logging"

	"sales-analysis/src/common/logger"
	"sales-analysis/src/common/storage"
	"sales-analysis/src/sales"
)

const (
	SUMMARY_PREFIX = "Summary-"
)

// ArtifactName is the key of the rollup artifact emitted for fileName.
func ArtifactName(fileName string) string {
	return SUMMARY_PREFIX + fileName
}

// IsArtifactForDate reports whether key is a rollup artifact of a file
// whose name carries date.
func IsArtifactForDate(key, date string) bool {
	return strings.Contains(key, SUMMARY_PREFIX+date)
}

type Result struct {
	Input    string
	Artifact string
	Stats    sales.FoldStats
	Stores   int
	Products int
}

// FileProcessor runs ingest, aggregate, encode, emit and delete for one raw
// sales file.
type FileProcessor struct {
	log          *logging.Logger
	store        storage.ObjectStore
	outputBucket string
	aggregator   *sales.Aggregator
	codec        *sales.RollupCodec
}

func NewFileProcessor(store storage.ObjectStore, outputBucket string) *FileProcessor {
	return &FileProcessor{
		log:          logger.GetLoggerWithPrefix("[PIPELINE]"),
		store:        store,
		outputBucket: outputBucket,
		aggregator:   sales.NewAggregator(),
		codec:        sales.NewRollupCodec(),
	}
}

// Process fails with sales.ErrArtifactUnavailable when the input cannot be
// read to the end and with sales.ErrEncodingFailure when no artifact could be
// produced. Nothing is emitted in either case. Deleting the input is best
// effort and never fails the run.
func (p *FileProcessor) Process(ctx context.Context, bucket, fileName string) (Result, error) {
	input := bucket + "/" + fileName
	result := Result{Input: input, Artifact: ArtifactName(fileName)}

	rollup, stats, err := p.ingest(ctx, bucket, fileName)
	if err != nil {
		return result, &sales.ArtifactError{ID: input, Err: err}
	}
	result.Stats = stats
	result.Stores = len(rollup.Stores)
	result.Products = len(rollup.Products)

	var encoded bytes.Buffer
	if err := p.codec.Encode(&encoded, rollup); err != nil {
		return result, err
	}

	if err := p.store.Put(ctx, p.outputBucket, result.Artifact, &encoded); err != nil {
		return result, fmt.Errorf("failed to emit artifact %s: %w", result.Artifact, err)
	}
	p.log.Infof("Emitted %s/%s from %s: %d rows, %d skipped, %d warnings",
		p.outputBucket, result.Artifact, input, stats.Rows, stats.Skipped, stats.Warnings)

	if err := p.store.Delete(ctx, bucket, fileName); err != nil {
		p.log.Warningf("Failed to delete processed input %s: %v", input, err)
	}

	return result, nil
}

func (p *FileProcessor) ingest(ctx context.Context, bucket, fileName string) (*sales.Rollup, sales.FoldStats, error) {
	reader, err := p.store.Open(ctx, bucket, fileName)
	if err != nil {
		return nil, sales.FoldStats{}, err
	}
	defer reader.Close()

	return p.aggregator.Aggregate(reader)
}
