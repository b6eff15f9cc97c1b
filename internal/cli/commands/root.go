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
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mtimefs/internal/daemon"
	"mtimefs/internal/mtimedb"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version info for --version flag
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

// getVersionString returns the version string with build info
func getVersionString() string {
	buildDate := formatBuildDate(date)
	if strings.HasSuffix(version, "-dev") {
		return fmt.Sprintf("%s (%s, epoch: %s, commit: %s)", version, buildDate, date, commit)
	}
	return fmt.Sprintf("%s (%s)", version, buildDate)
}

// formatBuildDate converts epoch timestamp to readable date
func formatBuildDate(epoch string) string {
	ts, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return epoch
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}

var (
	mtimePath string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "mtimefs",
	Short: "Passthrough filesystem with timestamps taken from an mtime database",
	Long: `Serves a host directory tree through FUSE, read-only. Files indexed in the
mtime database report that time as their access, modification and change
time; everything else is passed through unchanged.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("mtimefs version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&mtimePath, "mtime", "m", "", "Path to the mtime database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, off (overrides settings)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadSettings reads the global settings and applies the --log-level flag.
func loadSettings() (*daemon.GlobalSettings, error) {
	settings, err := daemon.LoadGlobalSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}
	return settings, nil
}

// openDatabase opens the database named by --mtime for the offline
// commands, with logging configured so the open itself can be traced.
func openDatabase() (*mtimedb.DB, error) {
	if mtimePath == "" {
		return nil, fmt.Errorf("no mtime database given, use --mtime")
	}
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	// The log file stays open for the life of the process.
	if _, err := daemon.SetupLogging(settings); err != nil {
		return nil, err
	}
	return mtimedb.Open(mtimePath)
}
