package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"mtimefs/internal/artifacts"
)

// ConfigDir returns the configuration directory path.
// Uses MTIMEFS_CONFIG_DIR env var if set, otherwise defaults to ~/.mtimefs.
// This is computed dynamically to support test isolation.
func ConfigDir() string {
	if dir := os.Getenv("MTIMEFS_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mtimefs")
}

// GlobalSettingsPath returns the global settings file path
func GlobalSettingsPath() string {
	return filepath.Join(ConfigDir(), "settings.yaml")
}

// LocksDir returns the directory holding per-mountpoint lock files
func LocksDir() string {
	return filepath.Join(ConfigDir(), "locks")
}

// LockPath returns the lock file guarding a mountpoint. The name is a
// name-based UUID of the absolute mountpoint, so every invocation mounting the
// same directory contends for the same lock.
func LockPath(mountpoint string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.Clean(mountpoint)))
	return filepath.Join(LocksDir(), id.String()+".lock")
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0700)
}

// InitConfigDir creates the config and lock directories and writes the
// default settings file if none exists.
func InitConfigDir() error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.MkdirAll(LocksDir(), 0700); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	settingsPath := GlobalSettingsPath()
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(settingsPath, artifacts.GlobalSettings, 0600); err != nil {
			return fmt.Errorf("failed to create default settings: %w", err)
		}
	}
	return nil
}

// GlobalSettings represents global mount settings
type GlobalSettings struct {
	LogLevel        string        `yaml:"log_level"`        // Log level: trace, debug, info, warn, off (default: off)
	LogFile         string        `yaml:"log_file"`         // Log destination, empty for stderr
	AttrTimeout     time.Duration `yaml:"attr_timeout"`     // Kernel attribute cache lifetime (default: 1s)
	EntryTimeout    time.Duration `yaml:"entry_timeout"`    // Kernel name cache lifetime (default: 1s)
	NegativeTimeout time.Duration `yaml:"negative_timeout"` // Failed lookup cache lifetime (default: 0)
	AllowOther      bool          `yaml:"allow_other"`      // Allow access by other users (default: false)
	FsName          string        `yaml:"fs_name"`          // Mount source name (default: mtimefs)
	FuseDebug       bool          `yaml:"fuse_debug"`       // Log every FUSE request (default: false)
}

// LoggingEnabled returns whether logging is enabled (any level other than "off", "none" or empty).
func (s *GlobalSettings) LoggingEnabled() bool {
	level := strings.ToLower(s.LogLevel)
	return level != "" && level != "none" && level != "off"
}

// loadDefaultGlobalSettings parses default settings from embedded artifact.
func loadDefaultGlobalSettings() GlobalSettings {
	var settings GlobalSettings
	if err := yaml.Unmarshal(artifacts.GlobalSettings, &settings); err != nil {
		panic("failed to parse embedded global settings: " + err.Error())
	}
	return settings
}

// LoadGlobalSettings loads the global settings from ~/.mtimefs/settings.yaml.
// Fields missing from the file keep their embedded defaults; a missing file
// yields the defaults.
func LoadGlobalSettings() (*GlobalSettings, error) {
	settings := loadDefaultGlobalSettings()

	data, err := os.ReadFile(GlobalSettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &settings, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", GlobalSettingsPath(), err)
	}
	return &settings, nil
}
