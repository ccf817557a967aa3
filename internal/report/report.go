// Package report aggregates one reconciliation run into a bounded summary,
// serialized as JSON and optionally rendered as a static HTML page.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rostersync/internal/reconcile"
	"rostersync/internal/store"
)

// Bounds keep the report size independent of roster size.
type Bounds struct {
	OperationSample int // max operations listed
	ExtraSample     int // max retained-extra names listed
	MismatchSample  int // max field mismatches listed
	TopCities       int // distribution truncation
}

// DefaultBounds matches the sampling of the original run reports.
func DefaultBounds() Bounds {
	return Bounds{OperationSample: 20, ExtraSample: 10, MismatchSample: 20, TopCities: 15}
}

// Summary holds the run counters.
type Summary struct {
	SourceRows     int    `json:"source_rows"`
	ValidRecords   int    `json:"valid_records"`
	DroppedRecords int    `json:"dropped_records"`
	DBBefore       int    `json:"db_before"`
	DBAfter        int    `json:"db_after"`
	Inserted       int    `json:"inserted"`
	Updated        int    `json:"updated"`
	Skipped        int    `json:"skipped"`
	Deleted        int    `json:"deleted"`
	Failed         int    `json:"failed"`
	RetainedExtras int    `json:"retained_extras"`
	Accuracy       string `json:"accuracy"`
}

// CityShare is one distribution bucket with its share of all members.
type CityShare struct {
	City       string `json:"city"`
	Count      int    `json:"count"`
	Percentage string `json:"percentage"`
}

// DataQuality covers the sentinel-location coverage check.
type DataQuality struct {
	SentinelLocation int    `json:"sentinel_location"`
	Coverage         string `json:"location_coverage"`
}

// ExtraUser names a retained unmatched member.
type ExtraUser struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Report is the serialized result of one run. Never mutated after Build.
type Report struct {
	Timestamp        time.Time             `json:"timestamp"`
	Mode             string                `json:"mode"`
	DryRun           bool                  `json:"dry_run,omitempty"`
	Summary          Summary               `json:"summary"`
	CityDistribution []CityShare           `json:"city_distribution"`
	DataQuality      DataQuality           `json:"data_quality"`
	Operations       []reconcile.Operation `json:"operations"`
	Mismatches       []reconcile.Mismatch  `json:"mismatches"`
	ExtraUsers       []ExtraUser           `json:"extra_users"`
	DuplicateNames   []string              `json:"duplicate_names,omitempty"`
	DuplicatePhones  []string              `json:"duplicate_phones,omitempty"`
}

// Inputs collects everything Build needs, so it stays a pure function.
type Inputs struct {
	Mode         string
	DryRun       bool
	SourceRows   int
	ValidRecords int
	Dropped      int
	DBBefore     int
	DBAfter      int
	Plan         reconcile.Plan
	Outcome      reconcile.Outcome
	Distribution []store.LocationCount
	SentinelHits int
	Bounds       Bounds
	Now          time.Time
}

// Build assembles the report, applying the sample bounds.
func Build(in Inputs) Report {
	b := in.Bounds
	if b.OperationSample == 0 {
		b = DefaultBounds()
	}

	accuracy := "100.00%"
	retained := len(in.Plan.Extras)
	if denom := in.DBAfter - retained; denom > 0 {
		accuracy = fmt.Sprintf("%.2f%%", float64(in.ValidRecords)/float64(denom)*100)
	}

	r := Report{
		Timestamp: in.Now,
		Mode:      in.Mode,
		DryRun:    in.DryRun,
		Summary: Summary{
			SourceRows:     in.SourceRows,
			ValidRecords:   in.ValidRecords,
			DroppedRecords: in.Dropped,
			DBBefore:       in.DBBefore,
			DBAfter:        in.DBAfter,
			Inserted:       in.Outcome.Inserted,
			Updated:        in.Outcome.Updated,
			Skipped:        in.Outcome.Skipped,
			Deleted:        in.Outcome.Deleted,
			Failed:         in.Outcome.Failed,
			RetainedExtras: retained,
			Accuracy:       accuracy,
		},
		DuplicateNames:  in.Plan.DuplicateNames,
		DuplicatePhones: in.Plan.DuplicatePhones,
	}

	total := in.DBAfter
	for _, lc := range in.Distribution {
		share := "0.0%"
		if total > 0 {
			share = fmt.Sprintf("%.1f%%", float64(lc.Count)/float64(total)*100)
		}
		r.CityDistribution = append(r.CityDistribution, CityShare{City: lc.Location, Count: lc.Count, Percentage: share})
	}
	if len(r.CityDistribution) > b.TopCities {
		r.CityDistribution = r.CityDistribution[:b.TopCities]
	}

	coverage := "100.0%"
	if total > 0 {
		coverage = fmt.Sprintf("%.1f%%", (1-float64(in.SentinelHits)/float64(total))*100)
	}
	r.DataQuality = DataQuality{SentinelLocation: in.SentinelHits, Coverage: coverage}

	r.Operations = in.Outcome.Operations
	if len(r.Operations) > b.OperationSample {
		r.Operations = r.Operations[:b.OperationSample]
	}
	r.Mismatches = in.Outcome.Mismatches
	if len(r.Mismatches) > b.MismatchSample {
		r.Mismatches = r.Mismatches[:b.MismatchSample]
	}
	for i, u := range in.Plan.Extras {
		if i == b.ExtraSample {
			break
		}
		r.ExtraUsers = append(r.ExtraUsers, ExtraUser{Name: u.Name, Phone: u.Phone})
	}
	return r
}

// WriteJSON serializes the report to path, creating parent directories.
func WriteJSON(r Report, path string) error {
	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadJSON loads a previously written report.
func ReadJSON(path string) (Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return Report{}, fmt.Errorf("decode report %s: %w", path, err)
	}
	return r, nil
}
