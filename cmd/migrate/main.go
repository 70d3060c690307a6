package main

import (
	"fmt"
	"os"

	"gym-statistics/internal/config"
	"gym-statistics/internal/repository/implementation"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	filePath string
	target   string
	dryRun   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite the workouts file in one store encoding",
		Long: `Reads every row of the workouts file, legacy or current, and writes
the whole file back in the target encoding. The original is kept as <file>.bak.`,
		SilenceUsage: true,
		RunE:         runMigrate,
	}

	cfg := config.Load()
	rootCmd.Flags().StringVarP(&filePath, "file", "f", cfg.Store.WorkoutsFile, "workouts file to rewrite")
	rootCmd.Flags().StringVarP(&target, "to", "t", string(implementation.EncodingCurrent), "target encoding: current or legacy")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	encoding, err := implementation.ParseEncoding(target)
	if err != nil {
		color.Red("Invalid --to: %v", err)
		return err
	}

	color.Cyan("Migrating %s to %s encoding", filePath, encoding)
	report, err := implementation.MigrateWorkoutsFile(filePath, encoding, dryRun)
	if err != nil {
		color.Red("Migration failed: %v", err)
		return err
	}

	fmt.Printf("Records:   %d\n", report.Records)
	fmt.Printf("Converted: %d\n", report.Converted)
	if len(report.SkippedRows) > 0 {
		color.Yellow("Skipped %d malformed rows:", len(report.SkippedRows))
		for _, row := range report.SkippedRows {
			color.Yellow("  line %d: %v", row.Line, row.Err)
		}
	}

	if report.DryRun {
		color.Yellow("Dry run, nothing written")
		return nil
	}
	color.Green("Done. Backup written to %s", report.BackupPath)
	return nil
}
