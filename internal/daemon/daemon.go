package daemon

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"

	"mtimefs/internal/mtimedb"
	"mtimefs/internal/util"
	"mtimefs/internal/vfs"
)

// Daemon serves one passthrough mount in the foreground until it is stopped,
// signalled, or unmounted from outside.
type Daemon struct {
	// Mountpoint is where the filesystem appears.
	Mountpoint string

	// RootPath is the host tree being served (default "/").
	RootPath string

	// DatabasePath selects the mtime database. Empty serves a plain passthrough.
	DatabasePath string

	// Settings holds the loaded global settings, already merged with flags.
	Settings *GlobalSettings

	lock     *flock.Flock
	logFile  io.Closer
	db       *mtimedb.DB
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a new daemon instance
func New(mountpoint, rootPath, databasePath string, settings *GlobalSettings) *Daemon {
	if rootPath == "" {
		rootPath = "/"
	}
	if settings == nil {
		defaults := loadDefaultGlobalSettings()
		settings = &defaults
	}
	return &Daemon{
		Mountpoint:   mountpoint,
		RootPath:     rootPath,
		DatabasePath: databasePath,
		Settings:     settings,
		stopCh:       make(chan struct{}),
	}
}

// Run mounts the filesystem and blocks until it is unmounted. Failing to
// open the database is fatal: nothing is mounted without it.
func (d *Daemon) Run() error {
	logFile, err := SetupLogging(d.Settings)
	if err != nil {
		return err
	}
	d.logFile = logFile
	defer d.logFile.Close()

	mountpoint, err := filepath.Abs(d.Mountpoint)
	if err != nil {
		return fmt.Errorf("failed to resolve mountpoint: %w", err)
	}
	rootPath, err := filepath.Abs(d.RootPath)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}

	if err := InitConfigDir(); err != nil {
		return err
	}

	// One server per mountpoint
	d.lock = flock.New(LockPath(mountpoint))
	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%s is already being served by another mtimefs instance", mountpoint)
	}
	defer d.lock.Unlock()

	var resolver vfs.Resolver
	if d.DatabasePath != "" {
		db, err := mtimedb.Open(d.DatabasePath)
		if err != nil {
			return err
		}
		d.db = db
		resolver = db
	}

	server, err := vfs.Mount(vfs.Options{
		Mountpoint:      mountpoint,
		RootPath:        rootPath,
		Resolver:        resolver,
		FsName:          d.Settings.FsName,
		AttrTimeout:     d.Settings.AttrTimeout,
		EntryTimeout:    d.Settings.EntryTimeout,
		NegativeTimeout: d.Settings.NegativeTimeout,
		AllowOther:      d.Settings.AllowOther,
		Debug:           d.Settings.FuseDebug,
	})
	if err != nil {
		d.closeDatabase()
		return err
	}
	log.Infof("Serving %s at %s (PID %d)", rootPath, mountpoint, os.Getpid())

	return d.serve(mountpoint, server)
}

// fuseServer is the part of *fuse.Server the run loop drives.
type fuseServer interface {
	Wait()
	Unmount() error
}

// serve blocks until the mount goes away. The database is closed only once
// the server has stopped; if the unmount fails the mapping stays in place
// because requests may still be in flight.
func (d *Daemon) serve(mountpoint string, server fuseServer) error {
	unmounted := make(chan struct{})
	go func() {
		server.Wait()
		close(unmounted)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Infof("Received signal %v, unmounting...", sig)
	case <-d.stopCh:
		log.Infof("Stop requested, unmounting...")
	case <-unmounted:
		log.Infof("Unmounted externally")
		d.closeDatabase()
		return nil
	}

	if err := util.Retry(context.Background(), server.Unmount, util.UnmountRetryOptions()...); err != nil {
		log.Errorf("Unmount of %s failed, leaving database mapped: %v", mountpoint, err)
		return fmt.Errorf("failed to unmount %s: %w", mountpoint, err)
	}
	<-unmounted
	d.closeDatabase()
	log.Infof("Unmounted %s", mountpoint)
	return nil
}

// Stop requests an unmount; Run returns once it completes.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
}

func (d *Daemon) closeDatabase() {
	if d.db == nil {
		return
	}
	if err := d.db.Close(); err != nil {
		log.Warnf("Failed to close mtime database: %v", err)
	}
	d.db = nil
}
