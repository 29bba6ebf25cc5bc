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
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// ZipContainer is a read-only container over a zip archive. Reads are
// serialized behind a mutex so the container is safe for concurrent use;
// entry bytes are materialized in memory to provide seekable views.
type ZipContainer struct {
	path string
	log  *zap.Logger

	mu sync.Mutex // guards rc
	rc *zip.ReadCloser

	// built once at open time
	names    []string
	metadata map[string]FileMetadata
	files    map[string]*zip.File
}

var _ Container = (*ZipContainer)(nil)

// NewZipContainer opens the archive at path. Zip entry modification times
// are wall-clock values with no zone; they are interpreted in tz, or in
// the process-local zone when tz is nil. Zip entries never carry a
// creation time.
func NewZipContainer(path string, tz *time.Location) (*ZipContainer, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening zip %s: %w", path, err)
	}
	if tz == nil {
		tz = time.Local
	}

	zc := &ZipContainer{
		path:     path,
		log:      Log.Named("container.zip").With(zap.String("zip", path)),
		rc:       rc,
		metadata: make(map[string]FileMetadata),
		files:    make(map[string]*zip.File),
	}
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := f.Name
		if _, ok := zc.files[name]; ok {
			continue
		}
		zc.files[name] = f
		zc.names = append(zc.names, name)

		// reinterpret the archived wall-clock time in tz
		m := f.Modified
		local := time.Date(m.Year(), m.Month(), m.Day(), m.Hour(), m.Minute(), m.Second(), 0, tz)
		modMs := local.UnixMilli()
		zc.metadata[name] = FileMetadata{
			Len:        int64(f.UncompressedSize64),
			ModifiedMs: &modMs,
		}
	}
	sort.Slice(zc.names, func(i, j int) bool { return natural.Less(zc.names[i], zc.names[j]) })
	zc.log.Debug("indexed zip", zap.Int("files", len(zc.names)))
	return zc, nil
}

func (zc *ZipContainer) Name() string { return zc.path }

func (zc *ZipContainer) Enumerate(_ context.Context) ([]ScanEntry, error) {
	entries := make([]ScanEntry, 0, len(zc.names))
	for _, name := range zc.names {
		md := zc.metadata[name]
		entries = append(entries, ScanEntry{
			Path:       name,
			QuickType:  QuickType(name),
			ModifiedMs: md.ModifiedMs,
		})
	}
	return entries, nil
}

func (zc *ZipContainer) Exists(path string) bool {
	_, ok := zc.files[path]
	return ok
}

func (zc *ZipContainer) Open(path string) (io.ReadSeekCloser, error) {
	f, ok := zc.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, path, zc.path)
	}

	zc.mu.Lock()
	defer zc.mu.Unlock()

	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening zip entry %s: %w", path, err)
	}
	defer r.Close()
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading zip entry %s: %w", path, err)
	}
	return nopSeekCloser{bytes.NewReader(content)}, nil
}

func (zc *ZipContainer) Metadata(path string) (FileMetadata, error) {
	md, ok := zc.metadata[path]
	if !ok {
		return FileMetadata{}, fmt.Errorf("%w: %s in %s", ErrNotFound, path, zc.path)
	}
	return md, nil
}

// Close releases the archive handle.
func (zc *ZipContainer) Close() error {
	zc.mu.Lock()
	defer zc.mu.Unlock()
	return zc.rc.Close()
}

type nopSeekCloser struct{ *bytes.Reader }

func (nopSeekCloser) Close() error { return nil }
