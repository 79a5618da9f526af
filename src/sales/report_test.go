package sales_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"sales-analysis/src/sales"
)

func sampleReport(t *testing.T) *sales.GlobalReport {
	return consolidate(t, 1, sales.BytesArtifact{
		Name: "sample",
		Data: []byte(strings.Join([]string{
			"Type,Name,Total Quantity,Total Sold,Total Profit",
			"Store,storeB,,,10.005",
			"Store,storeA,,,2.5",
			"Store,storeC,,,-1",
			"Product,widgetX,5,50,7.5",
			"Product,gadget,2,1.98,0.66",
		}, "\n")),
	})
}

func TestRender(t *testing.T) {
	expected := strings.Join([]string{
		"Total retailer's profit: 11.51",
		"Most profitable store: storeB - Profit: 10.01",
		"Least profitable store: storeC - Profit: -1.00",
		"Profit of each store:",
		"storeA: 2.50",
		"storeB: 10.01",
		"storeC: -1.00",
		"Total quantity sold per product:",
		"gadget: 2",
		"widgetX: 5",
		"Total profit per product:",
		"gadget: 0.66",
		"widgetX: 7.50",
		"Total sold per product:",
		"gadget: 1.98",
		"widgetX: 50.00",
		"",
	}, "\n")

	require.Equal(t, expected, sales.Render(sampleReport(t)))
}

func TestRenderNoData(t *testing.T) {
	output := sales.Render(sales.NewGlobalReport(sales.NewRollup()))

	require.True(t, strings.HasPrefix(output, "Total retailer's profit: 0.00\n"+sales.NO_DATA_MESSAGE+"\n"))
	require.NotContains(t, output, "Most profitable store")
	require.Contains(t, output, "Profit of each store:")
}

func TestRenderTopStoresAndWarnings(t *testing.T) {
	report := sampleReport(t)
	report.ArtifactsUnavailable = []string{"Summary-x", "Summary-y"}

	output := sales.RenderWithOptions(report, sales.RenderOptions{TopStores: 2})

	require.Contains(t, output, "Top 2 stores by profit:\n1. storeB: 10.01\n2. storeA: 2.50\n")
	require.Contains(t, output, "Warning: 2 artifact(s) could not be read: Summary-x, Summary-y\n")
}

func TestTopAndBottomStores(t *testing.T) {
	report := sampleReport(t)

	top := report.TopStores(5)
	require.Len(t, top, 3)
	require.Equal(t, []string{"storeB", "storeA", "storeC"}, []string{top[0].Name, top[1].Name, top[2].Name})

	bottom := report.BottomStores(1)
	require.Len(t, bottom, 1)
	require.Equal(t, "storeC", bottom[0].Name)

	require.Empty(t, report.TopStores(0))
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	report := sampleReport(t)

	require.NoError(t, sales.WriteReport(&buf, report, sales.RenderOptions{}))
	require.Equal(t, sales.Render(report), buf.String())
}
