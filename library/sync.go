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
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSyncWorkers is the worker-pool size when the caller does not
// choose one.
const DefaultSyncWorkers = 10

// collisionAttempts caps how many suffixed target paths are tried when
// distinct media resolve to the same desired path.
const collisionAttempts = 100

// SyncOptions tune one sync run.
type SyncOptions struct {
	DryRun          bool
	SkipMarkdown    bool
	SkipMedia       bool
	SkipAlbums      bool
	SetModifiedTime bool
	Workers         int
}

// SyncStats summarizes a finished run.
type SyncStats struct {
	MediaProcessed int
	MediaSkipped   int
	MediaFailed    int
	AlbumsWritten  int
}

// Syncer drives the whole pipeline: scan the input container, analyze
// every media entry, and write the normalized library plus markdown
// sidecars through the output container; then collect albums and write
// their markdown. Media work fans out to a bounded worker pool; a
// per-file failure is logged and the run continues.
type Syncer struct {
	input  Container
	output WritableContainer
	opts   SyncOptions
	log    *zap.Logger

	// claims maps a claimed target path to the long checksum that owns
	// it, so concurrent workers suffix rather than clobber; sidecarLocks
	// serializes the sidecar read-merge-write per target, since duplicate
	// inputs share one target and its sidecar
	mu           sync.Mutex
	claims       map[string]string
	sidecarLocks map[string]*sync.Mutex
}

func NewSyncer(input Container, output WritableContainer, opts SyncOptions) *Syncer {
	if opts.Workers <= 0 {
		opts.Workers = DefaultSyncWorkers
	}
	return &Syncer{
		input:  input,
		output: output,
		opts:   opts,
		log: Log.Named("sync").With(
			zap.String("job_id", uuid.NewString()),
			zap.String("input", input.Name()),
			zap.String("output", output.Name())),
		claims:       make(map[string]string),
		sidecarLocks: make(map[string]*sync.Mutex),
	}
}

// Run executes the sync. Cancellation is honored between files; in-flight
// files run to completion so partial output stays consistent (writes are
// idempotent, so resuming a canceled run is safe).
func (s *Syncer) Run(ctx context.Context) (*SyncStats, error) {
	entries, err := s.input.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning input: %w", err)
	}
	s.log.Info("indexed input container", zap.Int("files", len(entries)))

	events := make(chan ProgressEvent, 64)
	consumerDone := make(chan struct{})
	go logProgress(events, consumerDone)
	events <- ProgressEvent{Kind: ProgressStart}

	stats := &SyncStats{}
	var processed, skipped, failed atomic.Int64

	if !s.opts.SkipMedia {
		var media []ScanEntry
		for _, entry := range entries {
			if entry.QuickType == QuickMedia {
				media = append(media, entry)
			}
		}
		events <- ProgressEvent{Kind: ProgressMediaFilesCalculated, Total: len(media)}

		jobs := make(chan ScanEntry)
		var wg sync.WaitGroup
		for range s.opts.Workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for entry := range jobs {
					if ctx.Err() != nil {
						continue // drain without processing
					}
					switch err := s.processMediaFile(ctx, entry); {
					case errors.Is(err, ErrUnsupportedMedia):
						s.log.Warn("skipping unsupported file", zap.String("path", entry.Path))
						skipped.Add(1)
					case err != nil:
						s.log.Warn("media file failed", zap.String("path", entry.Path), zap.Error(err))
						failed.Add(1)
					default:
						processed.Add(1)
					}
					events <- ProgressEvent{Kind: ProgressMediaFileDone, Path: entry.Path}
				}
			}()
		}
		for _, entry := range media {
			jobs <- entry
		}
		close(jobs)
		wg.Wait()
		events <- ProgressEvent{Kind: ProgressMediaDone}
	}

	if !s.opts.SkipAlbums && ctx.Err() == nil {
		written, err := s.syncAlbums(ctx, entries, events)
		if err != nil {
			s.log.Warn("album sync incomplete", zap.Error(err))
		}
		stats.AlbumsWritten = written
	}

	events <- ProgressEvent{Kind: ProgressAllDone}
	close(events)
	<-consumerDone

	stats.MediaProcessed = int(processed.Load())
	stats.MediaSkipped = int(skipped.Load())
	stats.MediaFailed = int(failed.Load())
	s.log.Info("sync finished",
		zap.Int("media_processed", stats.MediaProcessed),
		zap.Int("media_skipped", stats.MediaSkipped),
		zap.Int("media_failed", stats.MediaFailed),
		zap.Int("albums_written", stats.AlbumsWritten))
	return stats, ctx.Err()
}

// processMediaFile runs one media entry through the pipeline: analyze,
// plan the target path, write media bytes idempotently, then the sidecar.
func (s *Syncer) processMediaFile(_ context.Context, entry ScanEntry) error {
	info, content, err := BuildMediaFileInfo(s.input, entry)
	if err != nil {
		return err
	}
	derived := DeriveMediaFileInfo(info)

	target, sameContent, err := s.claimTargetPath(derived, info.HashInfo.LongChecksum)
	if err != nil {
		return err
	}

	if sameContent {
		s.log.Debug("media already in place", zap.String("path", entry.Path), zap.String("target", target))
	} else {
		if err := s.output.Write(target, content, s.opts.DryRun); err != nil {
			return fmt.Errorf("writing media: %w", err)
		}
	}

	if !s.opts.SkipMarkdown {
		sidecarPath := MarkdownPath(target)
		lock := s.sidecarLock(sidecarPath)
		lock.Lock()
		err := SyncMarkdown(s.output, sidecarPath, []string{entry.Path}, s.opts.DryRun)
		lock.Unlock()
		if err != nil {
			return fmt.Errorf("writing sidecar: %w", err)
		}
	}

	if s.opts.SetModifiedTime && !sameContent {
		reconciled := ReconcileTimestamp(info.ExifInfo, info.SuppInfo, info.ModifiedMs, info.CreatedMs)
		if reconciled != nil {
			if err := s.output.SetModified(target, *reconciled, s.opts.DryRun); err != nil {
				s.log.Warn("could not set modified time", zap.String("target", target), zap.Error(err))
			}
		}
	}
	return nil
}

// sidecarLock returns the mutex guarding one sidecar path. Workers only
// share a target when their inputs carry identical bytes, and then both
// must merge their original paths into the same sidecar.
func (s *Syncer) sidecarLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.sidecarLocks[path]
	if !ok {
		lock = &sync.Mutex{}
		s.sidecarLocks[path] = lock
	}
	return lock
}

// claimTargetPath settles the final output path for a media file. Two
// distinct files can derive the same desired path (same taken time,
// different bytes); collisions get a -1, -2, ... suffix before the
// extension. A target already holding identical content - from an
// earlier run or a duplicate input - is reported as sameContent so the
// write can be skipped.
func (s *Syncer) claimTargetPath(derived MediaFileDerivedInfo, longChecksum string) (target string, sameContent bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt <= collisionAttempts; attempt++ {
		candidate := derived.DesiredMediaPath
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%d", derived.DesiredMediaPath, attempt)
		}
		candidate += "." + derived.DesiredExtension

		if owner, claimed := s.claims[candidate]; claimed {
			if owner == longChecksum {
				return candidate, true, nil
			}
			continue
		}

		if s.output.Exists(candidate) {
			existing, err := FileBytes(s.output, candidate)
			if err != nil {
				return "", false, fmt.Errorf("reading existing target %s: %w", candidate, err)
			}
			if HashBytes(existing).LongChecksum == longChecksum {
				s.claims[candidate] = longChecksum
				return candidate, true, nil
			}
			s.claims[candidate] = HashBytes(existing).LongChecksum
			continue
		}

		s.claims[candidate] = longChecksum
		return candidate, false, nil
	}
	return "", false, fmt.Errorf("no free target path for %s after %d attempts", derived.DesiredMediaPath, collisionAttempts)
}

// syncAlbums collects album definitions from the scan, de-duplicates
// their names, and writes one markdown file per album under albums/.
// Runs single-threaded after the media pass.
func (s *Syncer) syncAlbums(ctx context.Context, entries []ScanEntry, events chan<- ProgressEvent) (int, error) {
	var allPaths []string
	for _, entry := range entries {
		allPaths = append(allPaths, entry.Path)
	}

	var albums []Album
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		switch entry.QuickType {
		case QuickAlbumCsv, QuickAlbumJson:
			content, err := FileBytes(s.input, entry.Path)
			if err != nil {
				s.log.Warn("could not read album file", zap.String("path", entry.Path), zap.Error(err))
				continue
			}
			var album *Album
			if entry.QuickType == QuickAlbumCsv {
				album = ParseCSVAlbum(content, entry.Path)
			} else {
				album = ParseJSONAlbum(content, entry.Path, allPaths)
			}
			if album != nil {
				albums = append(albums, *album)
			}
		}
	}
	albums = DeduplicateAlbums(albums)
	events <- ProgressEvent{Kind: ProgressAlbumsCalculated, Total: len(albums)}

	filesIndex := AlbumsToFilesMap(albums)
	s.log.Info("album index built",
		zap.Int("albums", len(albums)),
		zap.Int("referenced_files", len(filesIndex)))

	written := 0
	for _, album := range albums {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		target := "albums/" + album.Name + ".md"
		content := []byte(BuildAlbumMarkdown(album))

		if s.output.Exists(target) {
			existing, err := FileBytes(s.output, target)
			if err == nil && !contentChanged(existing, content) {
				events <- ProgressEvent{Kind: ProgressAlbumFileDone, Path: album.SourcePath}
				continue
			}
		}
		if err := s.output.Write(target, content, s.opts.DryRun); err != nil {
			s.log.Warn("could not write album markdown", zap.String("album", album.Name), zap.Error(err))
		} else {
			written++
		}
		events <- ProgressEvent{Kind: ProgressAlbumFileDone, Path: album.SourcePath}
	}
	events <- ProgressEvent{Kind: ProgressAlbumsDone}
	return written, nil
}
