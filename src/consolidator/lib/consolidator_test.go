package consolidator_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	consolidator "sales-analysis/src/consolidator/lib"
	"sales-analysis/src/common/pipeline"
	"sales-analysis/src/common/storage"
	"sales-analysis/src/sales"
)

const outputBucket = "sales-output"

func putArtifact(t *testing.T, store storage.ObjectStore, file string, body string) {
	t.Helper()
	err := store.Put(context.Background(), outputBucket, pipeline.ArtifactName(file), strings.NewReader(body))
	require.NoError(t, err)
}

func sampleStore(t *testing.T) (*storage.LocalStore, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewLocalStore(root)
	require.NoError(t, err)

	putArtifact(t, store, "01-10-2022-store1.csv",
		"Type,Name,Total Quantity,Total Sold,Total Profit\nStore,storeA,,,3\nProduct,widgetX,2,20,3\n")
	putArtifact(t, store, "01-10-2022-store2.csv",
		"Type,Name,Total Quantity,Total Sold,Total Profit\nStore,storeB,,,4.5\nProduct,widgetX,3,30,4.5\n")
	putArtifact(t, store, "02-10-2022-store1.csv",
		"Type,Name,Total Quantity,Total Sold,Total Profit\nStore,storeA,,,100\n")
	return store, root
}

type recordingArchiver struct {
	runIDs []string
	dates  []string
	err    error
}

func (r *recordingArchiver) Save(ctx context.Context, runID, date string, report *sales.GlobalReport) error {
	r.runIDs = append(r.runIDs, runID)
	r.dates = append(r.dates, date)
	return r.err
}

func TestReadDate(t *testing.T) {
	var prompt bytes.Buffer
	date, err := consolidator.ReadDate(strings.NewReader("  01-10-2022 \n"), &prompt)
	require.NoError(t, err)
	require.Equal(t, "01-10-2022", date)
	require.Equal(t, consolidator.DATE_PROMPT, prompt.String())

	date, err = consolidator.ReadDate(strings.NewReader("02-10-2022"), &prompt)
	require.NoError(t, err)
	require.Equal(t, "02-10-2022", date)

	_, err = consolidator.ReadDate(strings.NewReader("\n"), &prompt)
	require.ErrorIs(t, err, consolidator.ErrEmptyDate)
}

func TestSelectArtifacts(t *testing.T) {
	store, _ := sampleStore(t)
	require.NoError(t, store.Put(context.Background(), outputBucket, "notes.txt", strings.NewReader("x")))

	keys, err := consolidator.SelectArtifacts(context.Background(), store, outputBucket, "01-10-2022")
	require.NoError(t, err)
	require.Equal(t, []string{"Summary-01-10-2022-store1.csv", "Summary-01-10-2022-store2.csv"}, keys)

	keys, err = consolidator.SelectArtifacts(context.Background(), store, outputBucket, "03-10-2022")
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestRunWritesReport(t *testing.T) {
	store, _ := sampleStore(t)
	archiver := &recordingArchiver{}

	var out bytes.Buffer
	conf := consolidator.RunConfig{Bucket: outputBucket, Date: "01-10-2022", Workers: 2}
	report, err := consolidator.NewRunner(conf, store, archiver).Run(context.Background(), &out)
	require.NoError(t, err)

	require.Equal(t, "7.50", report.TotalProfit.StringFixed(2))
	require.Equal(t, 2, report.ArtifactsMerged)
	require.Contains(t, out.String(), "Total retailer's profit: 7.50\n")
	require.Contains(t, out.String(), "Most profitable store: storeB - Profit: 4.50\n")
	require.Contains(t, out.String(), "Least profitable store: storeA - Profit: 3.00\n")
	require.Contains(t, out.String(), "widgetX: 5\n")

	require.Len(t, archiver.runIDs, 1)
	require.Equal(t, []string{"01-10-2022"}, archiver.dates)
}

func TestRunWithoutArtifacts(t *testing.T) {
	store, _ := sampleStore(t)

	var out bytes.Buffer
	conf := consolidator.RunConfig{Bucket: outputBucket, Date: "05-10-2022"}
	report, err := consolidator.NewRunner(conf, store, nil).Run(context.Background(), &out)
	require.NoError(t, err)
	require.Nil(t, report)
	require.Equal(t, "No files found for the given date: 05-10-2022\n", out.String())
}

func TestRunReportsArchiveFailure(t *testing.T) {
	store, _ := sampleStore(t)
	archiver := &recordingArchiver{err: errors.New("database is down")}

	var out bytes.Buffer
	conf := consolidator.RunConfig{Bucket: outputBucket, Date: "01-10-2022"}
	report, err := consolidator.NewRunner(conf, store, archiver).Run(context.Background(), &out)
	require.Error(t, err)
	require.ErrorIs(t, err, archiver.err)
	require.NotNil(t, report)
	require.Contains(t, out.String(), "Total retailer's profit: 7.50")
}

func TestRootCommand(t *testing.T) {
	_, root := sampleStore(t)

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	configBody := fmt.Sprintf("storage:\n  mode: local\n  root: %s\nbuckets:\n  output: %s\n", root, outputBucket)
	require.NoError(t, os.WriteFile(configFile, []byte(configBody), 0o644))

	var out bytes.Buffer
	cmd := consolidator.NewRootCommand(strings.NewReader("02-10-2022\n"), &out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", configFile, "--top", "1"})

	require.NoError(t, cmd.Execute())
	require.True(t, strings.HasPrefix(out.String(), consolidator.DATE_PROMPT))
	require.Contains(t, out.String(), "Total retailer's profit: 100.00\n")
	require.Contains(t, out.String(), "Top 1 stores by profit:\n1. storeA: 100.00\n")
}

func TestRootCommandDateFlag(t *testing.T) {
	_, root := sampleStore(t)

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	configBody := fmt.Sprintf("storage:\n  root: %s\nbuckets:\n  output: %s\n", root, outputBucket)
	require.NoError(t, os.WriteFile(configFile, []byte(configBody), 0o644))

	var out bytes.Buffer
	cmd := consolidator.NewRootCommand(strings.NewReader(""), &out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", configFile, "--date", "01-10-2022", "--workers", "1"})

	require.NoError(t, cmd.Execute())
	require.NotContains(t, out.String(), consolidator.DATE_PROMPT)
	require.Contains(t, out.String(), "Total retailer's profit: 7.50\n")
}
