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

package vfs

import (
	"syscall"

	log "github.com/sirupsen/logrus"

	"mtimefs/internal/common"
)

// VFS error codes mapped to syscall errors
var (
	ENOTDIR = syscall.ENOTDIR // Not a directory
	EROFS   = syscall.EROFS   // Read-only file system
)

// writeFlags are the open flags that would modify the host tree.
const writeFlags = syscall.O_WRONLY | syscall.O_RDWR | syscall.O_TRUNC | syscall.O_APPEND | syscall.O_CREAT

// refuseWrite logs a mutation the read-only tree turned away and returns EROFS.
func refuseWrite(op, path string) syscall.Errno {
	log.Debugf("[VFS] %s %q: %v", op, path, common.ErrReadOnly)
	return EROFS
}
