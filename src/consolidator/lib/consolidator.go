package consolidator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/op/go-logging"

	"sales-analysis/src/common/logger"
	"sales-analysis/src/common/pipeline"
	"sales-analysis/src/common/storage"
	"sales-analysis/src/sales"
)

const (
	DATE_PROMPT = "Enter the date (format: DD-MM-YYYY): "
)

var ErrEmptyDate = errors.New("a date is required")

// ReadDate prompts on out and reads a single line from in.
func ReadDate(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, DATE_PROMPT)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	date := strings.TrimSpace(line)
	if date == "" {
		return "", ErrEmptyDate
	}
	return date, nil
}

// StoreArtifact is a rollup artifact held in an object store bucket.
type StoreArtifact struct {
	store  storage.ObjectStore
	bucket string
	key    string
}

func NewStoreArtifact(store storage.ObjectStore, bucket, key string) StoreArtifact {
	return StoreArtifact{store: store, bucket: bucket, key: key}
}

func (a StoreArtifact) ID() string {
	return a.key
}

func (a StoreArtifact) Open(ctx context.Context) (io.ReadCloser, error) {
	return a.store.Open(ctx, a.bucket, a.key)
}

// SelectArtifacts lists the artifacts in bucket produced for date.
func SelectArtifacts(ctx context.Context, store storage.ObjectStore, bucket, date string) ([]string, error) {
	keys, err := store.List(ctx, bucket, pipeline.SUMMARY_PREFIX)
	if err != nil {
		return nil, err
	}

	selected := []string{}
	for _, key := range keys {
		if pipeline.IsArtifactForDate(key, date) {
			selected = append(selected, key)
		}
	}
	return selected, nil
}

// Archiver persists consolidated reports.
type Archiver interface {
	Save(ctx context.Context, runID, date string, report *sales.GlobalReport) error
}

type RunConfig struct {
	Bucket  string
	Date    string
	Top     int
	Workers int
}

type Runner struct {
	log      *logging.Logger
	store    storage.ObjectStore
	archiver Archiver
	conf     RunConfig
}

// NewRunner builds a Runner. archiver may be nil.
func NewRunner(conf RunConfig, store storage.ObjectStore, archiver Archiver) *Runner {
	return &Runner{
		log:      logger.GetLoggerWithPrefix("[CONSOLIDATOR]"),
		store:    store,
		archiver: archiver,
		conf:     conf,
	}
}

// Run consolidates every artifact for the configured date and writes the
// report to out. It returns a nil report when no artifact matches the date.
func (r *Runner) Run(ctx context.Context, out io.Writer) (*sales.GlobalReport, error) {
	keys, err := SelectArtifacts(ctx, r.store, r.conf.Bucket, r.conf.Date)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts in %s: %w", r.conf.Bucket, err)
	}

	if len(keys) == 0 {
		_, err := fmt.Fprintf(out, "No files found for the given date: %s\n", r.conf.Date)
		return nil, err
	}
	r.log.Infof("Found %d artifacts for %s", len(keys), r.conf.Date)

	artifacts := make([]sales.ArtifactSource, 0, len(keys))
	for _, key := range keys {
		artifacts = append(artifacts, NewStoreArtifact(r.store, r.conf.Bucket, key))
	}

	report, err := sales.NewConsolidator(r.conf.Workers).Consolidate(ctx, artifacts)
	if err != nil {
		return nil, err
	}

	if err := sales.WriteReport(out, report, sales.RenderOptions{TopStores: r.conf.Top}); err != nil {
		return report, err
	}

	if r.archiver != nil {
		runID := uuid.NewString()
		if err := r.archiver.Save(ctx, runID, r.conf.Date, report); err != nil {
			return report, fmt.Errorf("archiving run %s: %w", runID, err)
		}
		r.log.Infof("Archived consolidation run %s", runID)
	}

	return report, nil
}
