package sales

import (
	"bytes"
	"context"
	"io"
	"sort"

	"github.com/op/go-logging"
	"golang.org/x/sync/errgroup"

	"sales-analysis/src/common/logger"
)

const (
	DEFAULT_CONSOLIDATION_WORKERS = 4
)

// ArtifactSource is one rollup artifact that can be read on demand.
type ArtifactSource interface {
	ID() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

type partialReport struct {
	rollup      *Rollup
	merged      int
	unavailable []string
	rows        FoldStats
}

func newPartialReport() *partialReport {
	return &partialReport{rollup: NewRollup()}
}

func (p *partialReport) merge(other *partialReport) {
	p.rollup.Merge(other.rollup)
	p.merged += other.merged
	p.unavailable = append(p.unavailable, other.unavailable...)
	p.rows.Add(other.rows)
}

// Consolidator merges rollup artifacts into a GlobalReport. Artifacts are
// partitioned over workers; each worker owns its partial result and partials
// are combined once every worker is done.
type Consolidator struct {
	log     *logging.Logger
	codec   *RollupCodec
	workers int
}

func NewConsolidator(workers int) *Consolidator {
	if workers <= 0 {
		workers = DEFAULT_CONSOLIDATION_WORKERS
	}

	return &Consolidator{
		log:     logger.GetLoggerWithPrefix("[CONSOLIDATOR]"),
		codec:   NewRollupCodec(),
		workers: workers,
	}
}

func (c *Consolidator) Consolidate(ctx context.Context, artifacts []ArtifactSource) (*GlobalReport, error) {
	workers := min(c.workers, len(artifacts))
	partials := make([]*partialReport, max(workers, 1))
	for i := range partials {
		partials[i] = newPartialReport()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		partition := i
		group.Go(func() error {
			for j := partition; j < len(artifacts); j += workers {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				c.mergeArtifact(groupCtx, partials[partition], artifacts[j])
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := partials[0]
	for _, partial := range partials[1:] {
		total.merge(partial)
	}
	sort.Strings(total.unavailable)

	report := NewGlobalReport(total.rollup)
	report.ArtifactsMerged = total.merged
	report.ArtifactsUnavailable = total.unavailable
	report.Rows = total.rows

	if len(artifacts) > 0 && total.merged == 0 {
		c.log.Warningf("None of the %d artifacts could be read", len(artifacts))
	}
	c.log.Infof("Consolidated %d of %d artifacts: %d stores, %d products",
		total.merged, len(artifacts), len(report.Stores), len(report.Products))

	return report, nil
}

// mergeArtifact decodes one artifact completely before touching the partial,
// so an artifact failing midway contributes nothing.
func (c *Consolidator) mergeArtifact(ctx context.Context, partial *partialReport, artifact ArtifactSource) {
	rollup, stats, err := c.readArtifact(ctx, artifact)
	if err != nil {
		c.log.Warningf("Skipping artifact: %v", err)
		partial.unavailable = append(partial.unavailable, artifact.ID())
		return
	}

	partial.rollup.Merge(rollup)
	partial.merged++
	partial.rows.Add(stats)
	c.log.Debugf("Merged artifact %s (%d rows, %d skipped)", artifact.ID(), stats.Rows, stats.Skipped)
}

func (c *Consolidator) readArtifact(ctx context.Context, artifact ArtifactSource) (*Rollup, FoldStats, error) {
	reader, err := artifact.Open(ctx)
	if err != nil {
		return nil, FoldStats{}, &ArtifactError{ID: artifact.ID(), Err: err}
	}
	defer reader.Close()

	rollup, stats, err := c.codec.Decode(reader)
	if err != nil {
		return nil, stats, &ArtifactError{ID: artifact.ID(), Err: err}
	}
	return rollup, stats, nil
}

// BytesArtifact serves an artifact already held in memory.
type BytesArtifact struct {
	Name string
	Data []byte
}

func (b BytesArtifact) ID() string {
	return b.Name
}

func (b BytesArtifact) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}
