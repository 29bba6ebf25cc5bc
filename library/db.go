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
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // register the sqlite3 driver
	"go.uber.org/zap"
)

// DBFilename is the name of the scan index database file, created in
// the current working directory.
const DBFilename = "db.sqlite"

//go:embed schema.sql
var createDB string

// ScanIndex writes one media_item row per analyzed media file into a
// sqlite database. It exists for inspection and ad-hoc querying of an
// input before (or instead of) sorting it; the table is wiped and
// rebuilt on every run.
type ScanIndex struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenScanIndex opens (creating if necessary) the index database at
// dbPath, provisions the schema, and clears any rows from a previous
// run.
func OpenScanIndex(ctx context.Context, dbPath string) (*ScanIndex, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	// print version, because I keep losing track of it :)
	var version string
	err = db.QueryRowContext(ctx, "SELECT sqlite_version() AS version").Scan(&version)
	if err == nil {
		Log.Info("using sqlite", zap.String("version", version))
	}

	if _, err := db.ExecContext(ctx, createDB); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up index database: %w", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM media_item`); err != nil {
		db.Close()
		return nil, fmt.Errorf("clearing previous index: %w", err)
	}

	return &ScanIndex{
		db:  db,
		log: Log.Named("db"),
	}, nil
}

func (si *ScanIndex) Close() error {
	return si.db.Close()
}

// Record inserts one row for an analyzed media file. The raw content
// bytes are needed to re-walk the EXIF structure for the full tag dump.
func (si *ScanIndex) Record(ctx context.Context, info *MediaFileInfo, content []byte) error {
	var exifJSON string
	if info.AccurateType.HasExif() {
		if b, err := json.Marshal(AllTags(content)); err == nil {
			exifJSON = string(b)
		}
	} else if info.Mp4Info != nil {
		if b, err := json.Marshal(info.Mp4Info); err == nil {
			exifJSON = string(b)
		}
	}

	var suppJSON *string
	if info.SuppInfo != nil {
		if b, err := json.Marshal(info.SuppInfo); err == nil {
			s := string(b)
			suppJSON = &s
		}
	}

	guessed := ReconcileTimestamp(info.ExifInfo, info.SuppInfo, info.ModifiedMs, info.CreatedMs)

	_, err := si.db.ExecContext(ctx,
		`INSERT INTO media_item (media_path, long_hash, short_hash, quick_file_type,
			accurate_file_type, exif_json, supp_info_json, guessed_datetime, modified_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.OriginalPath,
		info.HashInfo.LongChecksum,
		info.HashInfo.ShortChecksum,
		string(info.QuickType),
		string(info.AccurateType),
		exifJSON,
		suppJSON,
		int64OrZero(guessed),
		int64OrZero(info.ModifiedMs),
		int64OrZero(info.CreatedMs),
	)
	if err != nil {
		return fmt.Errorf("recording media item %s: %w", info.OriginalPath, err)
	}
	return nil
}

// IndexContainer analyzes every media file in the container and records
// a row for each. Unsupported files are skipped with a debug log; read
// or analysis errors abort the run.
func (si *ScanIndex) IndexContainer(ctx context.Context, c Container) error {
	entries, err := c.Enumerate(ctx)
	if err != nil {
		return fmt.Errorf("enumerating %s: %w", c.Name(), err)
	}
	si.log.Info("found files in input", zap.Int("count", len(entries)))

	var media []ScanEntry
	for _, entry := range entries {
		if entry.QuickType == QuickMedia {
			media = append(media, entry)
		}
	}
	si.log.Info("inspecting photo and video files", zap.Int("count", len(media)))

	for i, entry := range media {
		if err := ctx.Err(); err != nil {
			return err
		}

		info, content, err := BuildMediaFileInfo(c, entry)
		if err != nil {
			if errors.Is(err, ErrUnsupportedMedia) {
				si.log.Debug("skipping unsupported file", zap.String("path", entry.Path))
				continue
			}
			return err
		}
		if err := si.Record(ctx, info, content); err != nil {
			return err
		}

		if (i+1)%100 == 0 {
			si.log.Info("indexing progress", zap.Int("done", i+1), zap.Int("total", len(media)))
		}
	}

	si.log.Info("done indexing", zap.Int("count", len(media)))
	return nil
}

func int64OrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
