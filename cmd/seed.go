package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adalundhe/relay/core/records"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create and seed the record store",
	Long: `Create the record store schema and load the sample dataset.

Seeding is idempotent; an already-populated store is left alone.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	store, err := records.Open(cfg.Records.Path, log)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := store.Seed(ctx); err != nil {
		return fmt.Errorf("seed record store: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Record store ready at %s (domains: %v)\n",
		cfg.Records.Path, records.Domains())
	return nil
}
