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
	"fmt"
	"time"
)

// MediaFileDerivedInfo is where a media file belongs in the output
// library. DesiredMediaPath has no extension; the full target is
// <DesiredMediaPath>.<DesiredExtension>, and the markdown sidecar sits
// at <DesiredMediaPath>.<DesiredExtension>.md.
type MediaFileDerivedInfo struct {
	DesiredMediaPath string
	DesiredExtension string
}

// DesiredMediaPath derives the target path (without extension) for a
// media file: a date bucket with a time-of-day name when the taken time
// is known, or an undated bucket keyed by the short checksum.
//
//	2008/05/30/1556-01009
//	undated/6bfdabd
func DesiredMediaPath(shortChecksum string, reconciledMs *int64) string {
	if reconciledMs == nil {
		return "undated/" + shortChecksum
	}
	t := time.UnixMilli(*reconciledMs).UTC()
	return fmt.Sprintf("%04d/%02d/%02d/%02d%02d-%02d%03d",
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/int(time.Millisecond))
}

// DeriveMediaFileInfo computes the output placement of a media file.
func DeriveMediaFileInfo(info *MediaFileInfo) MediaFileDerivedInfo {
	reconciled := ReconcileTimestamp(info.ExifInfo, info.SuppInfo, info.ModifiedMs, info.CreatedMs)
	return MediaFileDerivedInfo{
		DesiredMediaPath: DesiredMediaPath(info.HashInfo.ShortChecksum, reconciled),
		DesiredExtension: info.AccurateType.Extension(),
	}
}

// MarkdownPath returns the sidecar path for a written media file.
func MarkdownPath(mediaPathWithExt string) string {
	return mediaPathWithExt + ".md"
}
