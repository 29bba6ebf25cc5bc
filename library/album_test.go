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
	"reflect"
	"testing"
)

func TestParseCSVAlbum(t *testing.T) {
	for i, test := range []struct {
		content    string
		sourcePath string
		expect     *Album
	}{
		{
			content:    "imagename\na.jpg\nb.heic\n",
			sourcePath: "Albums/Holiday.csv",
			expect: &Album{
				Name:       "Holiday",
				SourcePath: "Albums/Holiday.csv",
				Files:      []string{"a.jpg", "b.heic"},
			},
		},
		{
			// header match is case-insensitive; non-media rows are dropped
			content:    "ImageName,checksum\na.jpg,xyz\nnote.txt,abc\n",
			sourcePath: "Albums/Mixed.csv",
			expect: &Album{
				Name:       "Mixed",
				SourcePath: "Albums/Mixed.csv",
				Files:      []string{"a.jpg"},
			},
		},
		{
			// not an album listing
			content:    "name,amount\nfoo,1\n",
			sourcePath: "Albums/expenses.csv",
			expect:     nil,
		},
		{
			// header only
			content:    "imagename\n",
			sourcePath: "Albums/Empty.csv",
			expect:     nil,
		},
		{
			// all rows filtered out
			content:    "imagename\nnote.txt\n",
			sourcePath: "Albums/Notes.csv",
			expect:     nil,
		},
		{
			content:    "",
			sourcePath: "Albums/zero.csv",
			expect:     nil,
		},
	} {
		actual := ParseCSVAlbum([]byte(test.content), test.sourcePath)
		if !reflect.DeepEqual(actual, test.expect) {
			t.Errorf("test %d: got %+v, expected %+v", i, actual, test.expect)
		}
	}
}

func TestParseJSONAlbum(t *testing.T) {
	siblings := []string{
		"Takeout/Album 1/a.jpg",
		"Takeout/Album 1/b.heic",
		"Takeout/Album 1/metadata.json",
		"Takeout/Other/c.jpg",
	}

	album := ParseJSONAlbum([]byte(`{"title": "Summer"}`), "Takeout/Album 1/metadata.json", siblings)
	if album == nil {
		t.Fatal("expected an album")
	}
	if album.Name != "Summer" {
		t.Errorf("got name %q, expected Summer", album.Name)
	}
	if !reflect.DeepEqual(album.Files, []string{"a.jpg", "b.heic"}) {
		t.Errorf("got files %v", album.Files)
	}

	// untitled manifest falls back to the directory name
	album = ParseJSONAlbum([]byte(`{}`), "Takeout/Album 1/metadata.json", siblings)
	if album == nil || album.Name != "Album 1" {
		t.Errorf("got %+v, expected directory-named album", album)
	}

	// invalid JSON yields no album
	if album := ParseJSONAlbum([]byte(`{`), "Takeout/Album 1/metadata.json", siblings); album != nil {
		t.Errorf("expected nil, got %+v", album)
	}

	// no sibling media yields no album
	if album := ParseJSONAlbum([]byte(`{"title": "x"}`), "Takeout/Empty/metadata.json", siblings); album != nil {
		t.Errorf("expected nil, got %+v", album)
	}

	// a title with path separators cannot address outside albums/
	album = ParseJSONAlbum([]byte(`{"title": "../../evil"}`), "Takeout/Album 1/metadata.json", siblings)
	if album == nil || album.Name != ".._.._evil" {
		t.Errorf("got %+v, expected separators flattened", album)
	}

	// a title that is only dots falls back to the directory name
	album = ParseJSONAlbum([]byte(`{"title": ".."}`), "Takeout/Album 1/metadata.json", siblings)
	if album == nil || album.Name != "Album 1" {
		t.Errorf("got %+v, expected directory-named album", album)
	}
}

func TestSanitizeAlbumName(t *testing.T) {
	for i, test := range []struct {
		input  string
		expect string
	}{
		{"Holiday", "Holiday"},
		{"a/b", "a_b"},
		{`a\b`, "a_b"},
		{"../escape", ".._escape"},
		{"  padded  ", "padded"},
		{"..", ""},
		{" . ", ""},
		{"", ""},
	} {
		if actual := sanitizeAlbumName(test.input); actual != test.expect {
			t.Errorf("test %d: got %q, expected %q", i, actual, test.expect)
		}
	}
}

func TestDeduplicateAlbums(t *testing.T) {
	albums := []Album{
		{Name: "Holiday", SourcePath: "a.csv", Files: []string{"1.jpg"}},
		{Name: "Holiday", SourcePath: "b.csv", Files: []string{"2.jpg"}},
		{Name: "Holiday", SourcePath: "c.csv", Files: []string{"3.jpg"}},
		{Name: "Other", SourcePath: "d.csv", Files: []string{"4.jpg"}},
	}
	clean := DeduplicateAlbums(albums)
	names := make([]string, len(clean))
	for i, a := range clean {
		names[i] = a.Name
	}
	expect := []string{"Holiday", "Holiday-1", "Holiday-2", "Other"}
	if !reflect.DeepEqual(names, expect) {
		t.Errorf("got %v, expected %v", names, expect)
	}
}

func TestAlbumsToFilesMap(t *testing.T) {
	albums := []Album{
		{Name: "A", Files: []string{"1.jpg", "2.jpg"}},
		{Name: "B", Files: []string{"2.jpg"}},
	}
	m := AlbumsToFilesMap(albums)
	if !reflect.DeepEqual(m["1.jpg"], []string{"A"}) {
		t.Errorf("got %v for 1.jpg", m["1.jpg"])
	}
	if !reflect.DeepEqual(m["2.jpg"], []string{"A", "B"}) {
		t.Errorf("got %v for 2.jpg", m["2.jpg"])
	}
}

func TestBuildAlbumMarkdown(t *testing.T) {
	album := Album{Name: "Holiday", Files: []string{"a.jpg", "b.heic"}}
	actual := BuildAlbumMarkdown(album)
	expect := "# Holiday\n- [a.jpg](a.jpg)\n- [b.heic](b.heic)\n"
	if actual != expect {
		t.Errorf("got %q, expected %q", actual, expect)
	}
}
