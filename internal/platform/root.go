package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// Markers of a project-local store.
const (
	StoreDirName   = ".capsule"
	ConfigFileName = "capsule.yaml"
)

// FindRoot recursively looks upwards for a directory holding a .capsule
// directory and returns the absolute path of that store directory.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if isDir(filepath.Join(dir, StoreDirName)) {
			return filepath.Join(dir, StoreDirName), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("store not found")
}

// DefaultDir returns the per-user store directory:
// $CAPSULE_DIR, else $XDG_DATA_HOME/capsule, else ~/.capsule.
func DefaultDir() string {
	if dir := os.Getenv("CAPSULE_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "capsule")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return StoreDirName
	}
	return filepath.Join(home, StoreDirName)
}

// ResolveStoreDir picks the store directory: an explicit dir wins, then
// $CAPSULE_DIR, then a .capsule directory found upwards from cwd, then DefaultDir.
func ResolveStoreDir(explicit, cwd string) string {
	if explicit != "" {
		return explicit
	}
	if dir := os.Getenv("CAPSULE_DIR"); dir != "" {
		return dir
	}
	if root, err := FindRoot(cwd); err == nil {
		return root
	}
	return DefaultDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
