package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"licentia-hq/licentia/pkg/catalog/registry"
	"licentia-hq/licentia/pkg/catalog/store"
	"licentia-hq/licentia/pkg/config"
	"licentia-hq/licentia/pkg/maintenance"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the catalogue database",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the catalogue schema and seed the vocabulary",
	Long: `Creates the database file if needed, applies the schema, and seeds the
RULE_TYPE and ACTION tables from the embedded vocabulary. Running init on
an existing catalogue is safe; existing data is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		fmt.Printf("catalogue initialized at %s\n", cfg.Database.Path)
		return nil
	},
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled example licences",
	Long: `Loads a set of well-known licences (Creative Commons, GPL, MIT, and a
read-only discovery licence) into the catalogue through the policy
assembler. Licences already present are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		created, skipped, err := seedLicences(cmd.Context(), st, cfg.Catalog.BaseURI)
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d licences (%d already present)\n", created, skipped)
		return nil
	},
}

var dbMaintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run a WAL checkpoint and VACUUM once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		sched := maintenance.NewScheduler(st, cfg.Maintenance)
		if err := sched.RunOnce(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("maintenance completed")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbInitCmd, dbSeedCmd, dbMaintainCmd)
	rootCmd.AddCommand(dbCmd)
}

// openStore opens the catalogue store described by the configuration,
// creating the parent directory for the database file when needed.
func openStore(cfg *config.Config) (*store.Store, error) {
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	reg, err := registry.Load()
	if err != nil {
		return nil, err
	}

	return store.New(&store.Config{
		Path:        cfg.Database.Path,
		Driver:      cfg.Database.Driver,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	}, reg, nil)
}
