package sales

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"sales-analysis/src/common/ranking"
)

const (
	NO_DATA_MESSAGE = "No data available for profit calculation."
)

type StoreResult struct {
	Name   string
	Profit decimal.Decimal
}

// GlobalReport is the consolidation of many rollups. It is read-only once
// returned by the Consolidator.
type GlobalReport struct {
	TotalProfit     decimal.Decimal
	Stores          StoreProfits
	Products        ProductSummary
	MostProfitable  *StoreResult
	LeastProfitable *StoreResult

	ArtifactsMerged      int
	ArtifactsUnavailable []string
	Rows                 FoldStats
}

// NewGlobalReport derives totals and extremes from a fully merged rollup.
func NewGlobalReport(rollup *Rollup) *GlobalReport {
	report := &GlobalReport{
		TotalProfit: rollup.Stores.Total(),
		Stores:      rollup.Stores,
		Products:    rollup.Products,
	}

	stores := report.storeResults()
	if most, found := ranking.Best(stores, mostProfitableFirst); found {
		report.MostProfitable = &most
	}
	if least, found := ranking.Best(stores, leastProfitableFirst); found {
		report.LeastProfitable = &least
	}
	return report
}

// NoData reports whether no store entry was consolidated at all.
func (g *GlobalReport) NoData() bool {
	return len(g.Stores) == 0
}

func (g *GlobalReport) storeResults() []StoreResult {
	results := make([]StoreResult, 0, len(g.Stores))
	for _, name := range g.Stores.Names() {
		results = append(results, StoreResult{Name: name, Profit: g.Stores[name]})
	}
	return results
}

// Ties on profit go to the lexicographically smallest store name.
func mostProfitableFirst(a, b StoreResult) int {
	if cmp := b.Profit.Cmp(a.Profit); cmp != 0 {
		return cmp
	}
	return strings.Compare(a.Name, b.Name)
}

func leastProfitableFirst(a, b StoreResult) int {
	if cmp := a.Profit.Cmp(b.Profit); cmp != 0 {
		return cmp
	}
	return strings.Compare(a.Name, b.Name)
}

// TopStores returns up to k stores, most profitable first.
func (g *GlobalReport) TopStores(k int) []StoreResult {
	return g.rankStores(k, mostProfitableFirst)
}

// BottomStores returns up to k stores, least profitable first.
func (g *GlobalReport) BottomStores(k int) []StoreResult {
	return g.rankStores(k, leastProfitableFirst)
}

func (g *GlobalReport) rankStores(k int, rank func(a, b StoreResult) int) []StoreResult {
	top := ranking.NewTopK(k, rank)
	if top == nil {
		return nil
	}
	for _, store := range g.storeResults() {
		top.Add(store)
	}
	return top.Result()
}

type RenderOptions struct {
	TopStores int
}

// Render formats the report as plain text.
func Render(report *GlobalReport) string {
	return RenderWithOptions(report, RenderOptions{})
}

func RenderWithOptions(report *GlobalReport, options RenderOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Total retailer's profit: %s\n", money(report.TotalProfit))

	if report.NoData() || report.MostProfitable == nil || report.LeastProfitable == nil {
		fmt.Fprintln(&b, NO_DATA_MESSAGE)
	} else {
		fmt.Fprintf(&b, "Most profitable store: %s - Profit: %s\n", report.MostProfitable.Name, money(report.MostProfitable.Profit))
		fmt.Fprintf(&b, "Least profitable store: %s - Profit: %s\n", report.LeastProfitable.Name, money(report.LeastProfitable.Profit))
	}

	fmt.Fprintln(&b, "Profit of each store:")
	for _, store := range report.Stores.Names() {
		fmt.Fprintf(&b, "%s: %s\n", store, money(report.Stores[store]))
	}

	products := report.Products.Names()
	fmt.Fprintln(&b, "Total quantity sold per product:")
	for _, product := range products {
		fmt.Fprintf(&b, "%s: %d\n", product, report.Products[product].Quantity)
	}

	fmt.Fprintln(&b, "Total profit per product:")
	for _, product := range products {
		fmt.Fprintf(&b, "%s: %s\n", product, money(report.Products[product].Profit))
	}

	fmt.Fprintln(&b, "Total sold per product:")
	for _, product := range products {
		fmt.Fprintf(&b, "%s: %s\n", product, money(report.Products[product].Sold))
	}

	if options.TopStores > 0 && !report.NoData() {
		fmt.Fprintf(&b, "Top %d stores by profit:\n", options.TopStores)
		for i, store := range report.TopStores(options.TopStores) {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, store.Name, money(store.Profit))
		}
	}

	if len(report.ArtifactsUnavailable) > 0 {
		fmt.Fprintf(&b, "Warning: %d artifact(s) could not be read: %s\n",
			len(report.ArtifactsUnavailable), strings.Join(report.ArtifactsUnavailable, ", "))
	}

	return b.String()
}

func WriteReport(w io.Writer, report *GlobalReport, options RenderOptions) error {
	_, err := io.WriteString(w, RenderWithOptions(report, options))
	return err
}

func money(d decimal.Decimal) string {
	return d.StringFixed(DECIMAL_PLACES)
}
