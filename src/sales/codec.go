package sales

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/op/go-logging"

	"sales-analysis/src/common/logger"
)

var SummaryHeader = []string{"Type", "Name", "Total Quantity", "Total Sold", "Total Profit"}

// Records lists the rows of a rollup artifact: stores first, then products.
func Records(r *Rollup) []SummaryRecord {
	records := make([]SummaryRecord, 0, len(r.Stores)+len(r.Products))

	for _, store := range r.Stores.Names() {
		records = append(records, SummaryRecord{
			Kind:   KindStore,
			Name:   store,
			Profit: r.Stores[store],
		})
	}

	for _, product := range r.Products.Names() {
		stats := r.Products[product]
		records = append(records, SummaryRecord{
			Kind:     KindProduct,
			Name:     product,
			Quantity: stats.Quantity,
			Sold:     stats.Sold,
			Profit:   stats.Profit,
		})
	}

	return records
}

func (s SummaryRecord) Fields() []string {
	if s.Kind == KindStore {
		return []string{s.Kind.String(), s.Name, "", "", s.Profit.String()}
	}
	return []string{
		s.Kind.String(),
		s.Name,
		strconv.FormatInt(s.Quantity, 10),
		s.Sold.String(),
		s.Profit.String(),
	}
}

type RollupCodec struct {
	log *logging.Logger
}

func NewRollupCodec() *RollupCodec {
	return &RollupCodec{
		log: logger.GetLoggerWithPrefix("[CODEC]"),
	}
}

// Encode writes the artifact representation of r. Any failure is reported as
// an *EncodingError.
func (c *RollupCodec) Encode(w io.Writer, r *Rollup) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(SummaryHeader); err != nil {
		return &EncodingError{Err: err}
	}
	for _, record := range Records(r) {
		if err := writer.Write(record.Fields()); err != nil {
			return &EncodingError{Err: err}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &EncodingError{Err: err}
	}
	return nil
}

// Decode reads one artifact into a fresh rollup.
func (c *RollupCodec) Decode(r io.Reader) (*Rollup, FoldStats, error) {
	rollup := NewRollup()
	stats, err := c.DecodeInto(rollup, r)
	if err != nil {
		return nil, stats, err
	}
	return rollup, stats, nil
}

// DecodeInto accumulates the rows of one artifact into dst. On a read error
// dst may already hold part of the artifact; callers that need all or nothing
// should decode into a fresh rollup and Merge it.
func (c *RollupCodec) DecodeInto(dst *Rollup, r io.Reader) (FoldStats, error) {
	return foldLines(c.log, r, func(line string) ([]FieldWarning, error) {
		record, warnings, err := ParseSummaryRecord(line)
		if err != nil {
			return nil, err
		}
		dst.AddSummary(record)
		return warnings, nil
	})
}
