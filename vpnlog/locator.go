package vpnlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// File describes a candidate log file.
type File struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// Locator selects the live log file in a directory.
type Locator struct {
	dir     string
	pattern string
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithPattern restricts candidates to base names matching the glob pattern.
func WithPattern(pattern string) LocatorOption {
	return func(l *Locator) {
		l.pattern = pattern
	}
}

// NewLocator creates a Locator for the given directory
func NewLocator(dir string, opts ...LocatorOption) *Locator {
	l := &Locator{dir: dir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the watched directory.
func (l *Locator) Dir() string {
	return l.dir
}

// Latest returns the regular file with the newest modification time.
// The directory is not searched recursively. When several files share the
// newest timestamp the first one in directory order wins.
func (l *Locator) Latest() (File, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return File{}, fmt.Errorf("failed to read log directory %s: %w", l.dir, err)
	}

	var (
		latest File
		found  bool
	)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if l.pattern != "" {
			ok, err := filepath.Match(l.pattern, entry.Name())
			if err != nil {
				return File{}, fmt.Errorf("invalid log pattern %q: %w", l.pattern, err)
			}
			if !ok {
				continue
			}
		}

		path := filepath.Join(l.dir, entry.Name())

		// Stat follows symlinks so a linked log file still counts
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		if !found || info.ModTime().After(latest.ModTime) {
			latest = File{
				Path:    path,
				ModTime: info.ModTime(),
				Size:    info.Size(),
			}
			found = true
		}
	}

	if !found {
		return File{}, fmt.Errorf("%w in %s", ErrNoLogFiles, l.dir)
	}

	return latest, nil
}
