package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rostersync/internal/config"
	"rostersync/internal/normalize"
	"rostersync/internal/store"
)

func newCleanupCmd() *cobra.Command {
	var (
		dbPath       string
		rules        string
		fixLocations bool
		deleteTest   bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Repair stored locations and remove test-data members",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rules)
			if err != nil {
				return err
			}
			return runCleanup(dbPath, cfg, fixLocations, deleteTest, dryRun)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "members.db", "member database path")
	cmd.Flags().StringVar(&rules, "rules", "", "optional YAML rule file")
	cmd.Flags().BoolVar(&fixLocations, "fix-locations", false, "infer cities for members with unusable locations")
	cmd.Flags().BoolVar(&deleteTest, "delete-test-data", false, "cascade-delete members matching the test-data rules")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log what would change without writing")
	return cmd
}

func runCleanup(dbPath string, cfg config.File, fixLocations, deleteTest, dryRun bool) error {
	log := newLogger()
	defer log.Sync()
	ctx := context.Background()

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	users, err := st.Users(ctx)
	if err != nil {
		return err
	}

	if fixLocations {
		fixed, unresolved := 0, 0
		for _, u := range users {
			if normalize.ValidStoredLocation(u.Location) {
				continue
			}
			city, ok := normalize.InferCity(u.Name, u.Bio, u.Company, u.Phone)
			if !ok {
				unresolved++
				log.Debug("no city inferred", zap.String("name", u.Name), zap.String("location", u.Location))
				continue
			}
			log.Info("location fix", zap.String("name", u.Name),
				zap.String("old", u.Location), zap.String("new", city))
			if !dryRun {
				if err := st.UpdateUserLocation(ctx, u.ID, city); err != nil {
					log.Warn("location update failed", zap.String("name", u.Name), zap.Error(err))
					continue
				}
			}
			fixed++
		}
		log.Info("location pass done", zap.Int("fixed", fixed), zap.Int("unresolved", unresolved))
	}

	if deleteTest {
		runRules, err := cfg.Rules()
		if err != nil {
			return err
		}
		deleted := 0
		for _, u := range users {
			if !runRules.IsTestData(u.Name) {
				continue
			}
			log.Info("test-data member", zap.String("name", u.Name), zap.String("role", u.Role))
			if !dryRun {
				if err := st.DeleteUserCascade(ctx, u.ID); err != nil {
					log.Warn("delete failed", zap.String("name", u.Name), zap.Error(err))
					continue
				}
			}
			deleted++
		}
		remaining, err := st.CountUsers(ctx)
		if err != nil {
			return err
		}
		log.Info("test-data pass done", zap.Int("deleted", deleted), zap.Int("remaining", remaining))
	}

	return nil
}
