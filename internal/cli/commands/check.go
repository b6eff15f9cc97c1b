// Copyright 2024 LatentFS Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the structure of the mtime database",
	Long: `Walks every directory table reachable from the root, checking offsets
against the file size, sibling order, and that no table is reachable twice.
Exits non-zero on the first violation.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Validate()
	if err != nil {
		return fmt.Errorf("%s: %w", db.Path(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d entries in %d tables)\n", db.Path(), stats.Entries, stats.Tables)
	return nil
}
