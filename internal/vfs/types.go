package vfs

import "time"

// Resolver supplies override modification times. Resolve takes a path in
// index form (see common.LocalPath) and returns Unix seconds, or an error when
// no override applies. *mtimedb.DB implements it.
type Resolver interface {
	Resolve(path string) (int64, error)
}

// Options configures the passthrough mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted.
	Mountpoint string

	// RootPath is the host directory served through the mount.
	RootPath string

	// Resolver provides timestamp overrides. If nil, every attribute is
	// passed through unchanged.
	Resolver Resolver

	// FsName is reported as the mount source. Defaults to "mtimefs".
	FsName string

	// AttrTimeout and EntryTimeout bound kernel caching of attributes and
	// names. Zero values use one second.
	AttrTimeout  time.Duration
	EntryTimeout time.Duration

	// NegativeTimeout bounds caching of failed lookups. Zero disables it.
	NegativeTimeout time.Duration

	// AllowOther permits other users to access the mount. Requires
	// user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Debug logs every FUSE request.
	Debug bool
}
