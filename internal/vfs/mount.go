package vfs

import (
	"fmt"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	log "github.com/sirupsen/logrus"
)

const (
	defaultFsName  = "mtimefs"
	defaultTimeout = time.Second
)

// Mount serves opts.RootPath read-only at opts.Mountpoint. The caller must
// call Unmount on the returned server when done.
func Mount(opts Options) (*fuse.Server, error) {
	if opts.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if opts.RootPath == "" {
		return nil, fmt.Errorf("root path is required")
	}
	if opts.FsName == "" {
		opts.FsName = defaultFsName
	}
	if opts.AttrTimeout == 0 {
		opts.AttrTimeout = defaultTimeout
	}
	if opts.EntryTimeout == 0 {
		opts.EntryTimeout = defaultTimeout
	}

	root, err := NewRoot(opts.RootPath, opts.Resolver)
	if err != nil {
		return nil, err
	}

	server, err := fs.Mount(opts.Mountpoint, root, &fs.Options{
		EntryTimeout:    &opts.EntryTimeout,
		AttrTimeout:     &opts.AttrTimeout,
		NegativeTimeout: &opts.NegativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     opts.FsName,
			Name:       defaultFsName,
			AllowOther: opts.AllowOther,
			Debug:      opts.Debug,
			Options:    []string{"ro"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting %s at %s: %w", opts.RootPath, opts.Mountpoint, err)
	}

	log.Infof("[VFS] serving %s at %s (overrides: %t)", opts.RootPath, opts.Mountpoint, opts.Resolver != nil)
	return server, nil
}
