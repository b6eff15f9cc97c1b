package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"mtimefs/internal/common"
	"mtimefs/internal/vfs"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve paths read from stdin against the mtime database",
	Long: `Reads newline-terminated paths from standard input and resolves each one
against the database, without mounting anything.

Misses are always reported as "<path> no match". Hits are reported only with
--verbose. The first miss ends the run with a non-zero exit status unless
--keep-going is set.`,
	Args: cobra.NoArgs,
	RunE: runLookup,
}

var (
	lookupVerbose   bool
	lookupKeepGoing bool
)

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().BoolVarP(&lookupVerbose, "verbose", "v", false, "Also report matches with their timestamp")
	lookupCmd.Flags().BoolVarP(&lookupKeepGoing, "keep-going", "k", false, "Process all input even after a miss")
}

func runLookup(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	return lookupPaths(db, cmd.InOrStdin(), cmd.OutOrStdout(), lookupVerbose, lookupKeepGoing)
}

// lookupPaths resolves each line of in and reports the outcome to out.
func lookupPaths(r vfs.Resolver, in io.Reader, out io.Writer, verbose, keepGoing bool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	misses := 0
	for scanner.Scan() {
		path := scanner.Text()
		ts, err := r.Resolve(path)
		switch {
		case err == nil:
			if verbose {
				fmt.Fprintf(out, "%s match %d %s\n", path, ts, time.Unix(ts, 0).UTC().Format(time.RFC3339))
			}
			continue
		case errors.Is(err, common.ErrNotFound):
			fmt.Fprintf(out, "%s no match\n", path)
		default:
			fmt.Fprintf(out, "%s error: %v\n", path, err)
		}

		misses++
		if !keepGoing {
			return fmt.Errorf("no match for %q", path)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading paths: %w", err)
	}
	if misses > 0 {
		return fmt.Errorf("%d paths had no match", misses)
	}
	return nil
}
