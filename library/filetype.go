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
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"
)

// QuickFileType is a cheap verdict on a file based only on its name and
// extension. It decides which branch of the pipeline an entry enters.
type QuickFileType string

const (
	QuickMedia     QuickFileType = "media"
	QuickAlbumCsv  QuickFileType = "album_csv"
	QuickAlbumJson QuickFileType = "album_json"
	QuickUnknown   QuickFileType = "unknown"
)

// albumJSONBasename is the manifest filename some exports drop into each
// album directory.
const albumJSONBasename = "metadata.json"

// QuickType classifies an entry by basename and extension alone.
func QuickType(filePath string) QuickFileType {
	base := strings.ToLower(path.Base(filePath))
	if base == albumJSONBasename {
		return QuickAlbumJson
	}
	switch strings.TrimPrefix(path.Ext(base), ".") {
	case "jpg", "jpeg", "png", "gif", "heic", "mp4", "mov":
		return QuickMedia
	case "csv":
		return QuickAlbumCsv
	}
	return QuickUnknown
}

// AccurateFileType is a verdict on a file based on its content bytes.
type AccurateFileType string

const (
	FileTypeJpg         AccurateFileType = "jpg"
	FileTypePng         AccurateFileType = "png"
	FileTypeHeic        AccurateFileType = "heic"
	FileTypeGif         AccurateFileType = "gif"
	FileTypeMp4         AccurateFileType = "mp4"
	FileTypeJson        AccurateFileType = "json"
	FileTypeCsv         AccurateFileType = "csv"
	FileTypeUnsupported AccurateFileType = "unsupported"
)

// Extension returns the extension written to the output library for files
// of this type.
func (ft AccurateFileType) Extension() string {
	switch ft {
	case FileTypeJpg, FileTypeGif, FileTypePng, FileTypeHeic, FileTypeMp4, FileTypeJson, FileTypeCsv:
		return string(ft)
	}
	return "bin"
}

// HasExif reports whether files of this type may carry an EXIF block.
func (ft AccurateFileType) HasExif() bool {
	return ft == FileTypeJpg || ft == FileTypePng || ft == FileTypeHeic
}

// AccurateType classifies a file by its content. JSON files are taken at
// face value from their name because their bodies sniff as plain text.
func AccurateType(content []byte, name string) AccurateFileType {
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		return FileTypeJson
	}
	if len(content) == 0 {
		Log.Warn("file is empty", zap.String("file", name))
		return FileTypeUnsupported
	}
	switch ct := detectContentType(content, name); ct {
	case "image/jpeg":
		return FileTypeJpg
	case "image/gif":
		return FileTypeGif
	case "image/png":
		return FileTypePng
	case "image/heic":
		return FileTypeHeic
	case "video/mp4":
		return FileTypeMp4
	case "text/csv":
		return FileTypeCsv
	default:
		Log.Debug("cannot map content type", zap.String("file", name), zap.String("content_type", ct))
		return FileTypeUnsupported
	}
}

// detectContentType strives to detect the media type of a file using its
// leading bytes.
func detectContentType(peekedBytes []byte, filename string) string {
	// the value returned by http.DetectContentType() if it has no answer
	const defaultContentType = "application/octet-stream"

	// Go's sniffer can detect a handful of common media types
	contentType := http.DetectContentType(peekedBytes)

	// but if it couldn't, then we can detect a couple more common ones
	// (last checked Q1 2024: Go's standard lib doesn't support HEIC or
	// quicktime---a specific kind of .mov/.mp4 video---files,
	// which are common with Apple devices)
	if contentType == defaultContentType && len(peekedBytes) >= 16 {
		if bytes.Contains(peekedBytes[:16], []byte("ftypheic")) {
			contentType = "image/heic"
		} else if bytes.Contains(peekedBytes[:16], []byte("ftypqt")) {
			contentType = "video/quicktime"
		}
	}

	// text-like content sniffs as text/plain (or HTML when it leads with
	// markup); the extension is the better indicator there, notably for CSV
	if strings.HasPrefix(contentType, "text/plain") || strings.HasPrefix(contentType, "text/html") {
		switch strings.ToLower(path.Ext(filename)) {
		case ".csv":
			contentType = "text/csv"
		}
	}

	return contentType
}

// supplementalSuffixes are the filename suffixes the takeout flavor uses
// for the per-media sidecar JSON. The truncated forms appear when the
// export shortens long filenames.
var supplementalSuffixes = []string{
	".supplemental-metadata.json",
	".supplemental-metad.json",
	".suppl.json",
}

// DetectSupplemental probes the container for the sidecar JSON companion
// of mediaPath and returns its path if one exists.
func DetectSupplemental(c Container, mediaPath string) (string, bool) {
	for _, suffix := range supplementalSuffixes {
		candidate := mediaPath + suffix
		if c.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}
