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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestDirContainerEnumerate(t *testing.T) {
	root := writeTestTree(t, map[string]string{
		"Photos/IMG_10.jpg":  "ten",
		"Photos/IMG_2.jpg":   "two",
		"Albums/Holiday.csv": "imagename\nIMG_2.jpg\n",
		"notes.txt":          "hello",
	})

	dc := NewDirContainer(root)
	entries, err := dc.Enumerate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries", len(entries))
	}

	// natural order puts IMG_2 before IMG_10
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	expect := []string{"Albums/Holiday.csv", "Photos/IMG_2.jpg", "Photos/IMG_10.jpg", "notes.txt"}
	for i := range expect {
		if paths[i] != expect[i] {
			t.Fatalf("got order %v, expected %v", paths, expect)
		}
	}

	for _, e := range entries {
		if e.ModifiedMs == nil {
			t.Errorf("%s: expected a modified time", e.Path)
		}
		if e.CreatedMs != nil {
			t.Errorf("%s: created time should be absent", e.Path)
		}
	}
	if entries[1].QuickType != QuickMedia {
		t.Errorf("got quick type %s for %s", entries[1].QuickType, entries[1].Path)
	}
	if entries[0].QuickType != QuickAlbumCsv {
		t.Errorf("got quick type %s for %s", entries[0].QuickType, entries[0].Path)
	}
}

func TestDirContainerReadWrite(t *testing.T) {
	root := writeTestTree(t, map[string]string{"a.jpg": "content"})
	dc := NewDirContainer(root)

	if !dc.Exists("a.jpg") {
		t.Error("a.jpg should exist")
	}
	if dc.Exists("b.jpg") {
		t.Error("b.jpg should not exist")
	}

	content, err := FileBytes(dc, "a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "content" {
		t.Errorf("got %q", content)
	}

	if err := dc.Write("2024/01/02/1030-00000.jpg", []byte("new"), false); err != nil {
		t.Fatal(err)
	}
	if !dc.Exists("2024/01/02/1030-00000.jpg") {
		t.Error("written file should exist")
	}

	// dry run leaves no trace
	if err := dc.Write("dry/file.jpg", []byte("x"), true); err != nil {
		t.Fatal(err)
	}
	if dc.Exists("dry/file.jpg") {
		t.Error("dry-run write should not create the file")
	}
}

func TestDirContainerSetModified(t *testing.T) {
	root := writeTestTree(t, map[string]string{"a.jpg": "content"})
	dc := NewDirContainer(root)

	want := int64(1212162961000)
	if err := dc.SetModified("a.jpg", want, false); err != nil {
		t.Fatal(err)
	}
	md, err := dc.Metadata("a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if md.ModifiedMs == nil || *md.ModifiedMs != want {
		t.Errorf("got %v, expected %d", md.ModifiedMs, want)
	}
}

func writeTestZip(t *testing.T, files map[string]string, modified time.Time) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "export.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, content := range files {
		hdr := &zip.FileHeader{Name: name, Modified: modified, Method: zip.Deflate}
		fw, err := w.CreateHeader(hdr)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return zipPath
}

func TestZipContainer(t *testing.T) {
	// zip stores a zoneless wall clock; the container reinterprets it in
	// the zone it was given
	wallClock := time.Date(2024, 5, 24, 10, 30, 0, 0, time.UTC)
	zipPath := writeTestZip(t, map[string]string{
		"Photos/a.jpg": "aaa",
		"Photos/b.jpg": "bbb",
	}, wallClock)

	tz := time.FixedZone("UTC+2", 2*60*60)
	zc, err := NewZipContainer(zipPath, tz)
	if err != nil {
		t.Fatal(err)
	}
	defer zc.Close()

	entries, err := zc.Enumerate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}

	// 10:30 wall clock at UTC+2 is 08:30 UTC
	want := time.Date(2024, 5, 24, 8, 30, 0, 0, time.UTC).UnixMilli()
	for _, e := range entries {
		if e.ModifiedMs == nil || *e.ModifiedMs != want {
			t.Errorf("%s: got modified %v, expected %d", e.Path, e.ModifiedMs, want)
		}
		if e.CreatedMs != nil {
			t.Errorf("%s: created time should be absent in zips", e.Path)
		}
	}

	if !zc.Exists("Photos/a.jpg") {
		t.Error("Photos/a.jpg should exist")
	}
	content, err := FileBytes(zc, "Photos/b.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "bbb" {
		t.Errorf("got %q", content)
	}

	if _, err := zc.Open("missing.jpg"); err == nil {
		t.Error("expected an error for a missing entry")
	}
}

func TestOpenContainer(t *testing.T) {
	ctx := context.Background()

	root := writeTestTree(t, map[string]string{"a.jpg": "x"})
	c, err := OpenContainer(ctx, root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*DirContainer); !ok {
		t.Errorf("got %T, expected *DirContainer", c)
	}

	zipPath := writeTestZip(t, map[string]string{"a.jpg": "x"}, time.Now())
	c, err = OpenContainer(ctx, zipPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	if zc, ok := c.(*ZipContainer); !ok {
		t.Errorf("got %T, expected *ZipContainer", c)
	} else {
		zc.Close()
	}

	if _, err := OpenContainer(ctx, filepath.Join(root, "nope"), nil); err == nil {
		t.Error("expected an error for a missing path")
	}
}
