package sales

import (
	"encoding/csv"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DECIMAL_PLACES = 2

	KIND_STORE   = "store"
	KIND_PRODUCT = "product"
)

// Scheme describes how one input line is split into columns. Quoted schemes
// follow CSV quoting; the others split on every delimiter.
type Scheme struct {
	Name       string
	Delimiter  rune
	MinColumns int
	Quoted     bool
}

// SalesScheme is the raw per-store export:
// index;store;product;quantity;unitPrice;<unused>;unitProfit
var SalesScheme = Scheme{
	Name:       "sales",
	Delimiter:  ';',
	MinColumns: 7,
}

// SummaryScheme is the rollup artifact: type,name,quantity,sold,profit
var SummaryScheme = Scheme{
	Name:       "summary",
	Delimiter:  ',',
	MinColumns: 5,
	Quoted:     true,
}

const (
	salesStoreCol      = 1
	salesProductCol    = 2
	salesQuantityCol   = 3
	salesUnitPriceCol  = 4
	salesUnitProfitCol = 6

	summaryTypeCol     = 0
	summaryNameCol     = 1
	summaryQuantityCol = 2
	summarySoldCol     = 3
	summaryProfitCol   = 4
)

type SalesRecord struct {
	Store      string
	Product    string
	Quantity   int64
	UnitPrice  decimal.Decimal
	UnitProfit decimal.Decimal
}

type RecordKind int

const (
	KindStore RecordKind = iota
	KindProduct
)

func (k RecordKind) String() string {
	if k == KindProduct {
		return "Product"
	}
	return "Store"
}

// SummaryRecord is one row of a rollup artifact. Quantity and Sold are only
// meaningful for KindProduct.
type SummaryRecord struct {
	Kind     RecordKind
	Name     string
	Quantity int64
	Sold     decimal.Decimal
	Profit   decimal.Decimal
}

// SplitRow splits a line according to the scheme. Rows with fewer columns
// than the scheme requires are rejected.
func SplitRow(line string, scheme Scheme) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, &RowSkippedError{Line: line, Reason: REASON_MALFORMED_ROW}
	}

	fields, err := splitFields(line, scheme)
	if err != nil || len(fields) < scheme.MinColumns {
		return nil, &RowSkippedError{Line: line, Reason: REASON_MALFORMED_ROW}
	}
	return fields, nil
}

func splitFields(line string, scheme Scheme) ([]string, error) {
	if !scheme.Quoted {
		return strings.Split(line, string(scheme.Delimiter)), nil
	}

	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = scheme.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.Read()
}

// ParseSalesRecord turns one raw sales line into a record. Numeric fields that
// cannot be coerced are accepted as zero and reported as warnings.
func ParseSalesRecord(line string) (SalesRecord, []FieldWarning, error) {
	fields, err := SplitRow(line, SalesScheme)
	if err != nil {
		return SalesRecord{}, nil, err
	}

	var warnings []FieldWarning
	quantity, warning := parseQuantity("quantity", fields[salesQuantityCol])
	warnings = appendWarning(warnings, warning)
	unitPrice, warning := parseAmount("unitPrice", fields[salesUnitPriceCol], true)
	warnings = appendWarning(warnings, warning)
	unitProfit, warning := parseAmount("unitProfit", fields[salesUnitProfitCol], false)
	warnings = appendWarning(warnings, warning)

	return SalesRecord{
		Store:      strings.TrimSpace(fields[salesStoreCol]),
		Product:    strings.TrimSpace(fields[salesProductCol]),
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		UnitProfit: unitProfit,
	}, warnings, nil
}

// ParseSummaryRecord turns one artifact line into a summary record. Rows whose
// type is neither store nor product are skipped entirely.
func ParseSummaryRecord(line string) (SummaryRecord, []FieldWarning, error) {
	fields, err := SplitRow(line, SummaryScheme)
	if err != nil {
		return SummaryRecord{}, nil, err
	}

	record := SummaryRecord{Name: strings.TrimSpace(fields[summaryNameCol])}
	switch strings.ToLower(strings.TrimSpace(fields[summaryTypeCol])) {
	case KIND_STORE:
		record.Kind = KindStore
	case KIND_PRODUCT:
		record.Kind = KindProduct
	default:
		return SummaryRecord{}, nil, &RowSkippedError{Line: line, Reason: REASON_UNKNOWN_TYPE}
	}

	var warnings []FieldWarning
	var warning *FieldWarning
	if record.Kind == KindProduct {
		record.Quantity, warning = parseQuantity("quantity", fields[summaryQuantityCol])
		warnings = appendWarning(warnings, warning)
		record.Sold, warning = parseAmount("sold", fields[summarySoldCol], false)
		warnings = appendWarning(warnings, warning)
	}
	record.Profit, warning = parseAmount("profit", fields[summaryProfitCol], false)
	warnings = appendWarning(warnings, warning)

	return record, warnings, nil
}

// NormalizeAmount rounds half away from zero to two decimal places.
func NormalizeAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(DECIMAL_PLACES)
}

func parseAmount(field, raw string, nonNegative bool) (decimal.Decimal, *FieldWarning) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil || (nonNegative && d.IsNegative()) {
		return decimal.Zero, &FieldWarning{Field: field, Value: raw}
	}
	return NormalizeAmount(d), nil
}

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

func parseQuantity(field, raw string) (int64, *FieldWarning) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, nil
	}

	// Quantities written by older tooling may carry a ".0" suffix.
	d, err := decimal.NewFromString(value)
	if err != nil || d.IsNegative() || !d.Equal(d.Truncate(0)) || d.GreaterThan(maxQuantity) {
		return 0, &FieldWarning{Field: field, Value: raw}
	}
	return d.IntPart(), nil
}

func appendWarning(warnings []FieldWarning, warning *FieldWarning) []FieldWarning {
	if warning == nil {
		return warnings
	}
	return append(warnings, *warning)
}
