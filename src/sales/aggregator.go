package sales

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/op/go-logging"

	"sales-analysis/src/common/logger"
)

const (
	MAX_LINE_SIZE = 1024 * 1024
)

// FoldStats counts what happened to the lines of one input.
type FoldStats struct {
	Rows     int
	Skipped  int
	Warnings int
}

func (s *FoldStats) Add(other FoldStats) {
	s.Rows += other.Rows
	s.Skipped += other.Skipped
	s.Warnings += other.Warnings
}

type lineHandler func(line string) ([]FieldWarning, error)

// foldLines feeds every line but the header to handle. Row level errors are
// logged and counted; only read errors stop the fold.
func foldLines(log *logging.Logger, r io.Reader, handle lineHandler) (FoldStats, error) {
	stats := FoldStats{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MAX_LINE_SIZE)

	isHeader := true
	for scanner.Scan() {
		if isHeader {
			isHeader = false
			continue
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		warnings, err := handle(line)
		if err != nil {
			var skipped *RowSkippedError
			if !errors.As(err, &skipped) {
				return stats, err
			}
			log.Warningf("Skipping row: %v", skipped)
			stats.Skipped++
			continue
		}

		for _, warning := range warnings {
			log.Warningf("Row %q: %s", line, warning)
		}
		stats.Warnings += len(warnings)
		stats.Rows++
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed reading input: %w", err)
	}
	return stats, nil
}

// Aggregator builds the rollup of one raw sales file.
type Aggregator struct {
	log *logging.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		log: logger.GetLoggerWithPrefix("[AGGREGATOR]"),
	}
}

// Aggregate folds every sales row of r into a fresh rollup. When reading
// fails no rollup is returned.
func (a *Aggregator) Aggregate(r io.Reader) (*Rollup, FoldStats, error) {
	rollup := NewRollup()

	stats, err := foldLines(a.log, r, func(line string) ([]FieldWarning, error) {
		record, warnings, err := ParseSalesRecord(line)
		if err != nil {
			return nil, err
		}
		rollup.Apply(record)
		return warnings, nil
	})
	if err != nil {
		return nil, stats, err
	}

	return rollup, stats, nil
}
