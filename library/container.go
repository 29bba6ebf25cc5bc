/*
	Photosort
	Copyright (c) 2024 Photosort contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// FileMetadata describes one entry of a container. Times are epoch
// milliseconds; nil means the container cannot provide that time.
type FileMetadata struct {
	Len        int64
	ModifiedMs *int64
	CreatedMs  *int64
}

// ScanEntry is one file discovered by a container scan. Entries are
// produced once per run and never mutated afterward.
type ScanEntry struct {
	Path       string
	QuickType  QuickFileType
	ModifiedMs *int64
	CreatedMs  *int64
}

// Container is a uniform view over an input source: a directory tree, a
// zip file, or another archive. Paths are relative to the container root
// in forward-slash form. Open must hand back a seekable view; concurrent
// Open calls are allowed on any implementation.
type Container interface {
	// Name identifies the container in logs.
	Name() string

	// Enumerate lists every file in the container in a stable
	// (naturally sorted) order, with quick types assigned.
	Enumerate(ctx context.Context) ([]ScanEntry, error)

	// Exists reports whether path is a file in the container.
	Exists(path string) bool

	// Open returns the content of path as a seekable stream.
	Open(path string) (io.ReadSeekCloser, error)

	// Metadata returns size and times for path.
	Metadata(path string) (FileMetadata, error)
}

// WritableContainer is a container that can also receive the normalized
// library. Only directory containers are writable.
type WritableContainer interface {
	Container

	// Write stores content at path, creating parent directories. In
	// dry-run mode it only logs.
	Write(path string, content []byte, dryRun bool) error

	// SetModified sets path's modification time. In dry-run mode it
	// only logs.
	SetModified(path string, epochMs int64, dryRun bool) error
}

// ErrNotFound is returned when a container is asked about a path it does
// not hold.
var ErrNotFound = errors.New("file not found in container")

// OpenContainer opens path as the best-fitting container implementation:
// a directory, a zip file, or any other archive format we can read.
// zipTZ is the timezone zip entry times are interpreted in; nil means the
// process-local offset.
func OpenContainer(ctx context.Context, path string, zipTZ *time.Location) (Container, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening input %s: %w", path, err)
	}
	if info.IsDir() {
		return NewDirContainer(path), nil
	}
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return NewZipContainer(path, zipTZ)
	}
	return NewArchiveContainer(ctx, path)
}

// FileBytes reads the whole content of path from c.
func FileBytes(c Container, path string) ([]byte, error) {
	f, err := c.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// DirContainer is a container rooted at a directory on disk. It is the
// only writable container.
type DirContainer struct {
	root string
	log  *zap.Logger
}

// Interface guards.
var (
	_ Container         = (*DirContainer)(nil)
	_ WritableContainer = (*DirContainer)(nil)
)

func NewDirContainer(root string) *DirContainer {
	return &DirContainer{
		root: root,
		log:  Log.Named("container.dir").With(zap.String("root", root)),
	}
}

func (dc *DirContainer) Name() string { return dc.root }

func (dc *DirContainer) Enumerate(ctx context.Context) ([]ScanEntry, error) {
	var entries []ScanEntry
	err := filepath.WalkDir(dc.root, func(fpath string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable subtree; note it and keep walking
			dc.log.Debug("unable to read directory entry", zap.String("path", fpath), zap.Error(err))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dc.root, fpath)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		entry := ScanEntry{Path: rel, QuickType: QuickType(rel)}
		if info, err := d.Info(); err == nil {
			modMs := info.ModTime().UnixMilli()
			entry.ModifiedMs = &modMs
			// Go has no portable file birth time; created stays absent
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dc.root, err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return natural.Less(entries[i].Path, entries[j].Path)
	})
	return entries, nil
}

func (dc *DirContainer) Exists(path string) bool {
	info, err := os.Stat(filepath.Join(dc.root, filepath.FromSlash(path)))
	return err == nil && !info.IsDir()
}

func (dc *DirContainer) Open(path string) (io.ReadSeekCloser, error) {
	f, err := os.Open(filepath.Join(dc.root, filepath.FromSlash(path)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

func (dc *DirContainer) Metadata(path string) (FileMetadata, error) {
	info, err := os.Stat(filepath.Join(dc.root, filepath.FromSlash(path)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileMetadata{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return FileMetadata{}, err
	}
	modMs := info.ModTime().UnixMilli()
	return FileMetadata{
		Len:        info.Size(),
		ModifiedMs: &modMs,
	}, nil
}

func (dc *DirContainer) Write(path string, content []byte, dryRun bool) error {
	target := filepath.Join(dc.root, filepath.FromSlash(path))
	if dryRun {
		dc.log.Info("dry run: would write file",
			zap.String("path", path),
			zap.Int("size", len(content)))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	dc.log.Debug("wrote file", zap.String("path", path), zap.Int("size", len(content)))
	return nil
}

func (dc *DirContainer) SetModified(path string, epochMs int64, dryRun bool) error {
	target := filepath.Join(dc.root, filepath.FromSlash(path))
	mtime := time.UnixMilli(epochMs)
	if dryRun {
		dc.log.Info("dry run: would set modified time",
			zap.String("path", path),
			zap.Time("modified", mtime))
		return nil
	}
	if err := os.Chtimes(target, time.Time{}, mtime); err != nil {
		return fmt.Errorf("setting modified time on %s: %w", path, err)
	}
	return nil
}
