// Package paths provides XDG-compliant path resolution for luminashot.
//
// Resolution order:
// 1. LUMINASHOT_HOME (portable root) → $LUMINASHOT_HOME/{config,state,cache,run,pictures}
// 2. XDG base and user directories → $XDG_*_HOME/luminashot, $XDG_PICTURES_DIR
// 3. Platform defaults from github.com/adrg/xdg
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "luminashot"

// reload re-reads the XDG environment so changes made after process start
// (tests, wrappers that export XDG_* late) are honoured.
func reload() {
	xdg.Reload()
}

func portable(sub string) string {
	if home := os.Getenv("LUMINASHOT_HOME"); home != "" {
		return filepath.Join(home, sub)
	}
	return ""
}

// ConfigDir returns the directory holding luminashot.yml.
func ConfigDir() string {
	if dir := portable("config"); dir != "" {
		return dir
	}
	reload()
	return filepath.Join(xdg.ConfigHome, appName)
}

// StateDir returns the directory for logs.
func StateDir() string {
	if dir := portable("state"); dir != "" {
		return dir
	}
	reload()
	return filepath.Join(xdg.StateHome, appName)
}

// CacheDir returns the directory for regenerable data.
func CacheDir() string {
	if dir := portable("cache"); dir != "" {
		return dir
	}
	reload()
	return filepath.Join(xdg.CacheHome, appName)
}

// RuntimeDir returns XDG_RUNTIME_DIR, the parent of the compositor's socket directory.
func RuntimeDir() string {
	if dir := portable("run"); dir != "" {
		return dir
	}
	reload()
	return xdg.RuntimeDir
}

// PicturesDir returns the user's pictures directory as configured in
// user-dirs.dirs, falling back to ~/Pictures.
func PicturesDir() string {
	if dir := portable("pictures"); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_PICTURES_DIR"); dir != "" {
		return dir
	}
	reload()
	if xdg.UserDirs.Pictures != "" {
		return xdg.UserDirs.Pictures
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Pictures")
	}
	return ""
}

// ScreenshotsDir returns the default save directory.
func ScreenshotsDir() string {
	base := PicturesDir()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "Screenshots")
}

// LogDir returns the directory file sinks write to by default.
func LogDir() string {
	return filepath.Join(StateDir(), "logs")
}

// LogFilePath returns the default log file for a component.
func LogFilePath(component, date string) string {
	return filepath.Join(LogDir(), component+"-"+date+".log")
}

// ExpandHome expands a leading tilde.
func ExpandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
