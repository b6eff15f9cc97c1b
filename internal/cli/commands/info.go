package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"mtimefs/internal/mtimedb"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show summary information about the mtime database",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Validate()
	if err != nil {
		return fmt.Errorf("%s: %w", db.Path(), err)
	}
	printInfo(cmd.OutOrStdout(), db, stats)
	return nil
}

func formatEpoch(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}

func printInfo(out io.Writer, db *mtimedb.DB, stats mtimedb.Stats) {
	fmt.Fprintf(out, "Database:    %s\n", db.Path())
	fmt.Fprintf(out, "Size:        %d bytes\n", db.Size())
	fmt.Fprintf(out, "Base epoch:  %d (%s)\n", db.BaseEpoch(), formatEpoch(int64(db.BaseEpoch())))
	fmt.Fprintf(out, "Tables:      %d\n", stats.Tables)
	fmt.Fprintf(out, "Entries:     %d (%d leaves)\n", stats.Entries, stats.Leaves)
	fmt.Fprintf(out, "Max depth:   %d\n", stats.MaxDepth)
	if stats.Entries > 0 {
		fmt.Fprintf(out, "Oldest:      %d (%s)\n", stats.MinTime, formatEpoch(stats.MinTime))
		fmt.Fprintf(out, "Newest:      %d (%s)\n", stats.MaxTime, formatEpoch(stats.MaxTime))
	}
}
