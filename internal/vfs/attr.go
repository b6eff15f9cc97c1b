package vfs

import (
	"errors"

	"github.com/hanwen/go-fuse/v2/fuse"
	log "github.com/sirupsen/logrus"

	"mtimefs/internal/common"
)

// applyOverride stamps ts onto all three timestamps of attr. The override is
// whole seconds, so the sub-second parts are cleared; no other field changes.
func applyOverride(attr *fuse.Attr, ts int64) {
	sec := uint64(ts)
	attr.Mtime, attr.Mtimensec = sec, 0
	attr.Atime, attr.Atimensec = sec, 0
	attr.Ctime, attr.Ctimensec = sec, 0
}

// overrideAttr consults r for path and patches attr when an override exists.
// A missing entry or a corrupt database leaves attr as the host reported it.
func overrideAttr(r Resolver, path string, attr *fuse.Attr) bool {
	if r == nil {
		return false
	}
	ts, err := r.Resolve(path)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			if log.IsLevelEnabled(log.TraceLevel) {
				log.Tracef("[VFS] override %q: no entry", path)
			}
		case errors.Is(err, common.ErrCorrupt):
			log.Warnf("[VFS] override %q: %v", path, err)
		default:
			log.Errorf("[VFS] override %q: %v", path, err)
		}
		return false
	}
	if log.IsLevelEnabled(log.TraceLevel) {
		log.Tracef("[VFS] override %q: mtime %d (was %d)", path, ts, attr.Mtime)
	}
	applyOverride(attr, ts)
	return true
}
