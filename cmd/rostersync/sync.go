package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rostersync/internal/config"
	"rostersync/internal/normalize"
	"rostersync/internal/reconcile"
	"rostersync/internal/report"
	"rostersync/internal/roster"
	"rostersync/internal/store"
)

const (
	modeAppend  = "append"
	modeReplace = "replace"
)

func newSyncCmd() *cobra.Command {
	var (
		input    string
		dbPath   string
		mode     string
		rules    string
		jsonOut  string
		htmlOut  string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Parse the roster export and reconcile it into the member database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode != modeAppend && mode != modeReplace {
				return fmt.Errorf("invalid --mode %q (want %s or %s)", mode, modeAppend, modeReplace)
			}
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read roster file: %w", err)
			}
			cfg, err := config.Load(rules)
			if err != nil {
				return err
			}
			return runSync(data, dbPath, mode, cfg, jsonOut, htmlOut, dryRun)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "roster export file (required)")
	cmd.Flags().StringVar(&dbPath, "db", "members.db", "member database path")
	cmd.Flags().StringVar(&mode, "mode", modeAppend, "append (sync in place) or replace (pre-delete imported members)")
	cmd.Flags().StringVar(&rules, "rules", "", "optional YAML rule file")
	cmd.Flags().StringVar(&jsonOut, "json-report", "data-sync-report.json", "JSON report output path")
	cmd.Flags().StringVar(&htmlOut, "html-report", "", "optional HTML report output path")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan and report without writing")
	cmd.MarkFlagRequired("input")
	return cmd
}

// runSync is the whole pipeline: parse, snapshot, plan, apply, report.
// Reconciliation errors inside the batch are logged, not returned: the run
// report carries them and the process still exits 0.
func runSync(data []byte, dbPath, mode string, cfg config.File, jsonOut, htmlOut string, dryRun bool) error {
	log := newLogger()
	defer log.Sync()
	ctx := context.Background()

	parsed := roster.Parse(data)
	log.Info("roster parsed",
		zap.Int("raw_rows", parsed.RawRows),
		zap.Int("valid", len(parsed.Records)),
		zap.Int("dropped", parsed.Dropped))

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	runRules, err := cfg.Rules()
	if err != nil {
		return err
	}

	if mode == modeReplace && !dryRun {
		protected := make([]string, 0, len(runRules.ProtectedNames))
		for n := range runRules.ProtectedNames {
			protected = append(protected, n)
		}
		n, err := st.DeleteImportedUsers(ctx, protected)
		if err != nil {
			log.Error("replace-mode cleanup failed", zap.Error(err))
		}
		log.Info("replace mode: removed previously imported members", zap.Int("deleted", n))
	}

	before, err := st.CountUsers(ctx)
	if err != nil {
		return err
	}
	users, err := st.Users(ctx)
	if err != nil {
		return err
	}

	hash, err := reconcile.HashPassword(runRules.DefaultPassword)
	if err != nil {
		return err
	}
	planner := &reconcile.Planner{
		Extractor:    normalize.NewExtractor(cfg.ExtraCities, cfg.LocationOverrides),
		Rules:        runRules,
		PasswordHash: hash,
	}
	plan := planner.Build(parsed.Records, users)
	log.Info("plan computed",
		zap.Int("inserts", len(plan.Inserts)),
		zap.Int("updates", len(plan.Updates)),
		zap.Int("skips", plan.Skipped),
		zap.Int("deletes", len(plan.Deletes)),
		zap.Int("extras", len(plan.Extras)))

	outcome := reconcile.Apply(ctx, st, plan, log, dryRun)

	after, err := st.CountUsers(ctx)
	if err != nil {
		return err
	}
	dist, err := st.LocationDistribution(ctx, cfg.Bounds().TopCities)
	if err != nil {
		return err
	}
	sentinel, err := st.CountByLocation(ctx, normalize.SentinelCity)
	if err != nil {
		return err
	}

	r := report.Build(report.Inputs{
		Mode:         mode,
		DryRun:       dryRun,
		SourceRows:   parsed.RawRows,
		ValidRecords: len(parsed.Records),
		Dropped:      parsed.Dropped,
		DBBefore:     before,
		DBAfter:      after,
		Plan:         plan,
		Outcome:      outcome,
		Distribution: dist,
		SentinelHits: sentinel,
		Bounds:       cfg.Bounds(),
		Now:          time.Now(),
	})

	if err := report.WriteJSON(r, jsonOut); err != nil {
		return err
	}
	if htmlOut != "" {
		if err := report.WriteHTML(r, htmlOut); err != nil {
			return err
		}
	}

	log.Info("sync complete",
		zap.Int("inserted", outcome.Inserted),
		zap.Int("updated", outcome.Updated),
		zap.Int("skipped", outcome.Skipped),
		zap.Int("deleted", outcome.Deleted),
		zap.Int("failed", outcome.Failed),
		zap.String("accuracy", r.Summary.Accuracy),
		zap.String("report", jsonOut))
	return nil
}
