package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rostersync/internal/reconcile"
	"rostersync/internal/store"
)

func sampleInputs() Inputs {
	ops := make([]reconcile.Operation, 30)
	for i := range ops {
		ops[i] = reconcile.Operation{Type: "insert", Name: "成员", Row: i + 2}
	}
	extras := make([]store.User, 15)
	for i := range extras {
		extras[i] = store.User{Name: "保留成员", Phone: "138"}
	}
	return Inputs{
		Mode:         "append",
		SourceRows:   120,
		ValidRecords: 100,
		Dropped:      20,
		DBBefore:     50,
		DBAfter:      110,
		Plan:         reconcile.Plan{Extras: extras},
		Outcome: reconcile.Outcome{
			Inserted: 60, Updated: 30, Skipped: 10,
			Operations: ops,
			Mismatches: []reconcile.Mismatch{{Name: "成员", Field: "location", Old: "其他", New: "深圳"}},
		},
		Distribution: []store.LocationCount{
			{Location: "深圳", Count: 40},
			{Location: "北京", Count: 30},
			{Location: "其他", Count: 11},
		},
		SentinelHits: 11,
		Now:          time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuild_BoundsAndAccuracy(t *testing.T) {
	in := sampleInputs()
	in.Bounds = Bounds{OperationSample: 5, ExtraSample: 3, MismatchSample: 1, TopCities: 2}

	r := Build(in)
	require.Len(t, r.Operations, 5)
	require.Len(t, r.ExtraUsers, 3)
	require.Len(t, r.Mismatches, 1)
	require.Len(t, r.CityDistribution, 2)

	// 100 valid / (110 - 15 retained) members.
	require.Equal(t, "105.26%", r.Summary.Accuracy)
	require.Equal(t, 15, r.Summary.RetainedExtras)
	require.Equal(t, "36.4%", r.CityDistribution[0].Percentage)
	require.Equal(t, "90.0%", r.DataQuality.Coverage)
}

func TestBuild_ZeroBoundsUseDefaults(t *testing.T) {
	r := Build(sampleInputs())
	require.Len(t, r.Operations, DefaultBounds().OperationSample)
	require.Len(t, r.ExtraUsers, DefaultBounds().ExtraSample)
}

func TestJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports", "run.json")

	r := Build(sampleInputs())
	require.NoError(t, WriteJSON(r, path))

	got, err := ReadJSON(path)
	require.NoError(t, err)
	require.Equal(t, r.Summary, got.Summary)
	require.Equal(t, r.CityDistribution, got.CityDistribution)
	require.True(t, r.Timestamp.Equal(got.Timestamp))
}

func TestWriteHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.html")

	r := Build(sampleInputs())
	require.NoError(t, WriteHTML(r, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(b)
	require.True(t, strings.Contains(html, "深圳"), "distribution missing from page")
	require.True(t, strings.Contains(html, r.Summary.Accuracy), "accuracy missing from page")
}
