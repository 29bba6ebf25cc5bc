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

import "go.uber.org/zap"

// ProgressKind enumerates the milestones a sync run reports.
type ProgressKind string

const (
	ProgressStart                ProgressKind = "start"
	ProgressMediaFilesCalculated ProgressKind = "media_files_calculated"
	ProgressMediaFileDone        ProgressKind = "media_file_done"
	ProgressMediaDone            ProgressKind = "media_done"
	ProgressAlbumsCalculated     ProgressKind = "albums_calculated"
	ProgressAlbumFileDone        ProgressKind = "album_file_done"
	ProgressAlbumsDone           ProgressKind = "albums_done"
	ProgressAllDone              ProgressKind = "all_done"
)

// ProgressEvent is one update emitted by the Syncer. Events travel over
// a single channel to a single consumer; workers never touch consumer
// state directly.
type ProgressEvent struct {
	Kind  ProgressKind
	Total int    // set on *Calculated events
	Path  string // set on per-file events
}

// logProgress is the default event consumer: it renders milestones to the
// process log. Runs until the channel closes.
func logProgress(events <-chan ProgressEvent, done chan<- struct{}) {
	log := Log.Named("sync.progress")
	for ev := range events {
		switch ev.Kind {
		case ProgressStart:
			log.Info("sync started")
		case ProgressMediaFilesCalculated:
			log.Info("media files discovered", zap.Int("count", ev.Total))
		case ProgressMediaFileDone:
			log.Debug("media file done", zap.String("path", ev.Path))
		case ProgressMediaDone:
			log.Info("media files done")
		case ProgressAlbumsCalculated:
			log.Info("albums discovered", zap.Int("count", ev.Total))
		case ProgressAlbumFileDone:
			log.Debug("album done", zap.String("path", ev.Path))
		case ProgressAlbumsDone:
			log.Info("albums done")
		case ProgressAllDone:
			log.Info("sync finished")
		}
	}
	close(done)
}
