package sales

import (
	"sort"

	"github.com/shopspring/decimal"
)

type StoreProfits map[string]decimal.Decimal
type ProductSummary map[string]ProductStats

type ProductStats struct {
	Quantity int64
	Sold     decimal.Decimal
	Profit   decimal.Decimal
}

func sumStats(a, b ProductStats) ProductStats {
	return ProductStats{
		Quantity: a.Quantity + b.Quantity,
		Sold:     a.Sold.Add(b.Sold),
		Profit:   a.Profit.Add(b.Profit),
	}
}

// Rollup accumulates store and product totals. An empty rollup is the
// identity element of Merge.
type Rollup struct {
	Stores   StoreProfits
	Products ProductSummary
}

func NewRollup() *Rollup {
	return &Rollup{
		Stores:   make(StoreProfits),
		Products: make(ProductSummary),
	}
}

func (s StoreProfits) Add(store string, profit decimal.Decimal) {
	s[store] = s[store].Add(profit)
}

func (s StoreProfits) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s StoreProfits) Total() decimal.Decimal {
	total := decimal.Zero
	for _, profit := range s {
		total = total.Add(profit)
	}
	return total
}

func (p ProductSummary) Add(product string, stats ProductStats) {
	p[product] = sumStats(p[product], stats)
}

func (p ProductSummary) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply folds one sales record into the rollup.
func (r *Rollup) Apply(record SalesRecord) {
	quantity := decimal.NewFromInt(record.Quantity)
	profit := record.UnitProfit.Mul(quantity)

	r.Stores.Add(record.Store, profit)
	r.Products.Add(record.Product, ProductStats{
		Quantity: record.Quantity,
		Sold:     record.UnitPrice.Mul(quantity),
		Profit:   profit,
	})
}

// AddSummary folds one artifact row into the rollup, taking its totals as-is.
func (r *Rollup) AddSummary(record SummaryRecord) {
	switch record.Kind {
	case KindStore:
		r.Stores.Add(record.Name, record.Profit)
	case KindProduct:
		r.Products.Add(record.Name, ProductStats{
			Quantity: record.Quantity,
			Sold:     record.Sold,
			Profit:   record.Profit,
		})
	}
}

// Merge adds every entry of other into r. Absent keys count as zero.
func (r *Rollup) Merge(other *Rollup) {
	if other == nil {
		return
	}
	for store, profit := range other.Stores {
		r.Stores.Add(store, profit)
	}
	for product, stats := range other.Products {
		r.Products.Add(product, stats)
	}
}

func (r *Rollup) IsEmpty() bool {
	return len(r.Stores) == 0 && len(r.Products) == 0
}

// Equal compares two rollups at two-decimal resolution.
func (r *Rollup) Equal(other *Rollup) bool {
	if len(r.Stores) != len(other.Stores) || len(r.Products) != len(other.Products) {
		return false
	}
	for store, profit := range r.Stores {
		otherProfit, exists := other.Stores[store]
		if !exists || !NormalizeAmount(profit).Equal(NormalizeAmount(otherProfit)) {
			return false
		}
	}
	for product, stats := range r.Products {
		otherStats, exists := other.Products[product]
		if !exists || stats.Quantity != otherStats.Quantity {
			return false
		}
		if !NormalizeAmount(stats.Sold).Equal(NormalizeAmount(otherStats.Sold)) ||
			!NormalizeAmount(stats.Profit).Equal(NormalizeAmount(otherStats.Profit)) {
			return false
		}
	}
	return true
}
