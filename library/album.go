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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"
)

// Album is an external album definition: an ordered, possibly-duplicated
// sequence of media filenames as they appear in the manifest. Albums do
// not relate to a file on disk; they are in effect a back reference
// against the written media, kept as a markdown file in the output.
type Album struct {
	Name       string
	SourcePath string
	Files      []string
}

// albumMediaExts are the filename extensions an album row must have to
// count as a media entry; anything else in the manifest is discarded.
var albumMediaExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".heic": true, ".png": true,
	".tiff": true, ".tif": true, ".webp": true,
}

func isAlbumMediaName(name string) bool {
	return albumMediaExts[strings.ToLower(path.Ext(name))]
}

// ParseCSVAlbum reads the icloud-flavor album listing: a CSV whose first
// header column is "imagename" (any case). Each row's first column names
// a media file; rows that are not recognizable media filenames are
// dropped. The album name is the file's stem. Returns nil when the CSV is
// not an album or holds no valid rows.
func ParseCSVAlbum(content []byte, sourcePath string) *Album {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil || len(header) == 0 {
		Log.Debug("album CSV has no header", zap.String("file", sourcePath))
		return nil
	}
	if !strings.EqualFold(strings.TrimSpace(header[0]), "imagename") {
		Log.Debug("not an album CSV", zap.String("file", sourcePath))
		return nil
	}

	var files []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			Log.Debug("error reading album CSV record", zap.String("file", sourcePath), zap.Error(err))
			continue
		}
		if len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		if !isAlbumMediaName(name) {
			Log.Debug("non-media album entry", zap.String("file", sourcePath), zap.String("entry", name))
			continue
		}
		files = append(files, name)
	}
	if len(files) == 0 {
		Log.Debug("album CSV has no valid rows", zap.String("file", sourcePath))
		return nil
	}

	name := sanitizeAlbumName(albumNameFromPath(sourcePath))
	if name == "" {
		Log.Debug("album file has no name", zap.String("file", sourcePath))
		return nil
	}
	Log.Info("found album",
		zap.String("name", name),
		zap.Int("entries", len(files)),
		zap.String("file", sourcePath))
	return &Album{Name: name, SourcePath: sourcePath, Files: files}
}

// albumNameFromPath returns the stem of the manifest filename.
func albumNameFromPath(sourcePath string) string {
	base := path.Base(sourcePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// sanitizeAlbumName makes a manifest title safe to use as a filename
// under albums/: path separators become underscores, and a title made of
// nothing but dots and whitespace is rejected as empty.
func sanitizeAlbumName(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	name = strings.TrimSpace(name)
	if strings.Trim(name, ".") == "" {
		return ""
	}
	return name
}

// albumJSONManifest is the subset of the takeout album metadata.json we
// read. The format carries more (enrichments, sharing state) that we
// have no use for.
type albumJSONManifest struct {
	Title string `json:"title"`
}

// ParseJSONAlbum reads the takeout-flavor album manifest: a metadata.json
// sitting in a directory alongside media. The album's entries are the
// sibling media files of that directory, as found by the scan; the name
// is the manifest's title, or the directory basename when untitled.
// The manifest format is only partially understood, so anything that does
// not decode cleanly yields no album.
func ParseJSONAlbum(content []byte, sourcePath string, siblings []string) *Album {
	var manifest albumJSONManifest
	if err := json.Unmarshal(content, &manifest); err != nil {
		Log.Debug("could not decode album manifest", zap.String("file", sourcePath), zap.Error(err))
		return nil
	}

	dir := path.Dir(sourcePath)
	name := sanitizeAlbumName(manifest.Title)
	if name == "" {
		if dir == "." {
			Log.Debug("album manifest has no usable name", zap.String("file", sourcePath))
			return nil
		}
		name = path.Base(dir)
	}

	var files []string
	for _, sibling := range siblings {
		if path.Dir(sibling) != dir {
			continue
		}
		base := path.Base(sibling)
		if isAlbumMediaName(base) {
			files = append(files, base)
		}
	}
	if len(files) == 0 {
		Log.Debug("album manifest has no sibling media", zap.String("file", sourcePath))
		return nil
	}
	Log.Info("found album",
		zap.String("name", name),
		zap.Int("entries", len(files)),
		zap.String("file", sourcePath))
	return &Album{Name: name, SourcePath: sourcePath, Files: files}
}

// DeduplicateAlbums gives every album a unique name within the run by
// suffixing collisions with -1, -2, and so on. An album that still
// collides after 100 attempts is dropped with a warning. Runs
// single-threaded after the album scan.
func DeduplicateAlbums(albums []Album) []Album {
	clean := make([]Album, 0, len(albums))
	used := make(map[string]bool, len(albums))
	for _, album := range albums {
		name := album.Name
		placed := false
		for attempt := 1; attempt <= 101; attempt++ {
			if !used[name] {
				used[name] = true
				clean = append(clean, Album{
					Name:       name,
					SourcePath: album.SourcePath,
					Files:      album.Files,
				})
				placed = true
				break
			}
			name = fmt.Sprintf("%s-%d", album.Name, attempt)
		}
		if !placed {
			Log.Warn("too many attempts to find unique name for album",
				zap.String("name", album.Name),
				zap.String("file", album.SourcePath))
		}
	}
	return clean
}

// AlbumsToFilesMap inverts albums into a media-filename → album-names
// index. Album names per file follow insertion order.
func AlbumsToFilesMap(albums []Album) map[string][]string {
	m := make(map[string][]string)
	for _, album := range albums {
		for _, f := range album.Files {
			m[f] = append(m[f], album.Name)
		}
	}
	return m
}

// BuildAlbumMarkdown renders the album's markdown file: a heading plus
// a link list in manifest order.
func BuildAlbumMarkdown(album Album) string {
	var sb strings.Builder
	sb.WriteString("# " + album.Name)
	for _, f := range album.Files {
		sb.WriteString(fmt.Sprintf("\n- [%s](%s)", f, f))
	}
	sb.WriteString("\n")
	return sb.String()
}
