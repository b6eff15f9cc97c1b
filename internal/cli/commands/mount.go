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
	"github.com/spf13/cobra"

	"mtimefs/internal/daemon"
)

var mountCmd = &cobra.Command{
	Use:   "mount <mount-point>",
	Short: "Serve the root tree at a mount point",
	Long: `Mounts a read-only passthrough of --root (default /) at the mount point
and stays in the foreground until interrupted or unmounted.

Without --mtime the mount is a plain passthrough.

Examples:
  mtimefs mount /mnt/build --mtime ./sources.mtime
  mtimefs mount /mnt/src --root ~/src --mtime ./sources.mtime --allow-other`,
	Args: cobra.ExactArgs(1),
	RunE: runMount,
}

var (
	mountRoot       string
	mountAllowOther bool
	mountDebug      bool
)

func init() {
	rootCmd.AddCommand(mountCmd)
	mountCmd.Flags().StringVarP(&mountRoot, "root", "r", "/", "Host directory to serve")
	mountCmd.Flags().BoolVar(&mountAllowOther, "allow-other", false, "Allow access by other users")
	mountCmd.Flags().BoolVar(&mountDebug, "debug", false, "Log every FUSE request")
}

func runMount(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("allow-other") {
		settings.AllowOther = mountAllowOther
	}
	if cmd.Flags().Changed("debug") {
		settings.FuseDebug = mountDebug
	}

	return daemon.New(args[0], mountRoot, mtimePath, settings).Run()
}
