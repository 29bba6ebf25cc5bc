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
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"sync"

	"github.com/maruel/natural"
	"github.com/mholt/archives"
	"go.uber.org/zap"
)

// ArchiveContainer is a read-only container over any archive format the
// archives package can open (tar, tar.gz, 7z, ...). Zip inputs get the
// dedicated ZipContainer instead because of their timezone handling.
// Like ZipContainer, reads serialize behind a mutex and entry bytes are
// materialized for seeking.
type ArchiveContainer struct {
	path string
	fsys fs.FS
	log  *zap.Logger

	mu sync.Mutex
}

var _ Container = (*ArchiveContainer)(nil)

func NewArchiveContainer(ctx context.Context, path string) (*ArchiveContainer, error) {
	fsys, err := archives.FileSystem(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	return &ArchiveContainer{
		path: path,
		fsys: fsys,
		log:  Log.Named("container.archive").With(zap.String("archive", path)),
	}, nil
}

func (ac *ArchiveContainer) Name() string { return ac.path }

func (ac *ArchiveContainer) Enumerate(ctx context.Context) ([]ScanEntry, error) {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	var entries []ScanEntry
	err := fs.WalkDir(ac.fsys, ".", func(fpath string, d fs.DirEntry, err error) error {
		if err != nil {
			ac.log.Debug("unable to read archive entry", zap.String("path", fpath), zap.Error(err))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		entry := ScanEntry{Path: fpath, QuickType: QuickType(fpath)}
		if info, err := d.Info(); err == nil && !info.ModTime().IsZero() {
			modMs := info.ModTime().UnixMilli()
			entry.ModifiedMs = &modMs
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning archive %s: %w", ac.path, err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return natural.Less(entries[i].Path, entries[j].Path)
	})
	return entries, nil
}

func (ac *ArchiveContainer) Exists(path string) bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	info, err := fs.Stat(ac.fsys, path)
	return err == nil && !info.IsDir()
}

func (ac *ArchiveContainer) Open(path string) (io.ReadSeekCloser, error) {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	f, err := ac.fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive entry %s: %w", path, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading archive entry %s: %w", path, err)
	}
	return nopSeekCloser{bytes.NewReader(content)}, nil
}

func (ac *ArchiveContainer) Metadata(path string) (FileMetadata, error) {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	info, err := fs.Stat(ac.fsys, path)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("%w: %s in %s", ErrNotFound, path, ac.path)
	}
	md := FileMetadata{Len: info.Size()}
	if !info.ModTime().IsZero() {
		modMs := info.ModTime().UnixMilli()
		md.ModifiedMs = &modMs
	}
	return md, nil
}
