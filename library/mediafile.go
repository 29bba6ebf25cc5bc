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
	"errors"
	"fmt"
)

// ErrUnsupportedMedia means the file's content did not resolve to a
// supported media type; such files are skipped, not failed.
var ErrUnsupportedMedia = errors.New("not a valid media file")

// MediaFileInfo is everything we know about one media file after
// analysis. Built lazily, one per media entry; consumed by the path
// planner and the markdown writer.
type MediaFileInfo struct {
	OriginalPath string            `json:"original_path"`
	QuickType    QuickFileType     `json:"quick_file_type"`
	AccurateType AccurateFileType  `json:"accurate_file_type"`
	HashInfo     HashInfo          `json:"hash_info"`
	ExifInfo     *ParsedExif       `json:"exif_info,omitempty"`
	Mp4Info      *ParsedMp4        `json:"mp4_info,omitempty"`
	SuppInfo     *SupplementalInfo `json:"supp_info,omitempty"`
	ModifiedMs   *int64            `json:"modified_ms,omitempty"`
	CreatedMs    *int64            `json:"created_ms,omitempty"`
}

// BuildMediaFileInfo analyzes one scanned media entry: content bytes are
// read once, checksummed, content-classified, and run through whichever
// metadata decoder the type calls for. The supplemental sidecar, if
// present, is loaded as well. Returns ErrUnsupportedMedia when the
// content is not a supported media type.
func BuildMediaFileInfo(c Container, entry ScanEntry) (*MediaFileInfo, []byte, error) {
	content, err := FileBytes(c, entry.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", entry.Path, err)
	}

	hashInfo := HashBytes(content)

	var suppInfo *SupplementalInfo
	if suppPath, ok := DetectSupplemental(c, entry.Path); ok {
		suppInfo = LoadSupplemental(c, suppPath)
	}

	accurateType := AccurateType(content, entry.Path)
	if accurateType == FileTypeUnsupported {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, entry.Path)
	}

	var exifInfo *ParsedExif
	var mp4Info *ParsedMp4
	switch {
	case accurateType.HasExif():
		exifInfo = ParseExif(content, entry.Path, accurateType)
	case accurateType == FileTypeMp4:
		mp4Info = ParseMp4(bytes.NewReader(content), entry.Path)
	}

	return &MediaFileInfo{
		OriginalPath: entry.Path,
		QuickType:    entry.QuickType,
		AccurateType: accurateType,
		HashInfo:     hashInfo,
		ExifInfo:     exifInfo,
		Mp4Info:      mp4Info,
		SuppInfo:     suppInfo,
		ModifiedMs:   entry.ModifiedMs,
		CreatedMs:    entry.CreatedMs,
	}, content, nil
}
