package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/core"
	"github.com/jmylchreest/snackbar/internal/store"
)

var pruneOpts struct {
	olderThan string
	keep      int
	dryRun    bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old records from history",
	Long: `Remove old records from the history file and compact it.

Only dismissed snackbars are removed by --older-than. Stop snackbard first:
it keeps the history file open for appending.

Examples:
  # Remove records older than 7 days
  snackbar prune --older-than 7d

  # Keep only the 100 most recent records
  snackbar prune --keep 100

  # Preview what would be removed
  snackbar prune --older-than 48h --dry-run`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().StringVar(&pruneOpts.olderThan, "older-than", "",
		"Remove records older than this duration (e.g., 48h, 7d, 1w)")
	pruneCmd.Flags().IntVar(&pruneOpts.keep, "keep", 0,
		"Keep only the N most recent records (0=unlimited)")
	pruneCmd.Flags().BoolVar(&pruneOpts.dryRun, "dry-run", false,
		"Show how many records would be removed without removing them")
}

func runPrune(cmd *cobra.Command, args []string) error {
	if pruneOpts.olderThan == "" && pruneOpts.keep == 0 {
		return fmt.Errorf("specify --older-than or --keep")
	}

	olderThan, err := core.ParseDuration(pruneOpts.olderThan)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}

	path := historyPath()
	if pruneOpts.dryRun {
		records, err := store.ReadHistory(path)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		// Prune an in-memory copy
		preview := store.NewStore(nil)
		for _, r := range records {
			if err := preview.Put(r); err != nil {
				return err
			}
		}
		removed, err := preview.Prune(olderThan, pruneOpts.keep)
		if err != nil {
			return err
		}
		fmt.Printf("Would remove %d of %d record(s)\n", removed, removed+preview.Count())
		return nil
	}

	persistence, err := store.NewJSONLPersistence(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	st := store.NewStore(persistence)
	defer st.Close()

	if err := st.Hydrate(); err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	removed, err := st.Prune(olderThan, pruneOpts.keep)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	fmt.Printf("Removed %d record(s)\n", removed)
	return nil
}
