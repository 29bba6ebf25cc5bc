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
	"testing"
)

func TestSplitFrontMatter(t *testing.T) {
	for i, test := range []struct {
		input      string
		expectFM   string
		expectBody string
	}{
		{
			input:      "---\nfoo: 1\n---\nbody\n",
			expectFM:   "foo: 1",
			expectBody: "body\n",
		},
		{
			// multi-line front matter
			input:      "---\nfoo: 1\nbar: 2\n---\nbody line 1\nbody line 2\n",
			expectFM:   "foo: 1\nbar: 2",
			expectBody: "body line 1\nbody line 2\n",
		},
		{
			// no front matter at all
			input:      "hello world\n",
			expectFM:   "",
			expectBody: "hello world\n",
		},
		{
			// empty front matter block is the same as none
			input:      "---\n---\nbody\n",
			expectFM:   "",
			expectBody: "---\n---\nbody\n",
		},
		{
			// no closing delimiter
			input:      "---\nfoo: 1\n",
			expectFM:   "",
			expectBody: "---\nfoo: 1\n",
		},
		{
			// windows line endings
			input:      "---\r\nfoo: 1\r\n---\r\nbody\r\n",
			expectFM:   "foo: 1",
			expectBody: "body\r\n",
		},
		{
			// closing delimiter at end of file with no newline
			input:      "---\nfoo: 1\n---",
			expectFM:   "foo: 1",
			expectBody: "",
		},
		{
			// front matter only, no body
			input:      "---\nfoo: 1\n---\n",
			expectFM:   "foo: 1",
			expectBody: "",
		},
		{
			// leading blank lines before the opening delimiter
			input:      "\n\n---\nfoo: 1\n---\nbody\n",
			expectFM:   "foo: 1",
			expectBody: "body\n",
		},
		{
			input:      "",
			expectFM:   "",
			expectBody: "",
		},
	} {
		fm, body := SplitFrontMatter(test.input)
		if fm != test.expectFM {
			t.Errorf("test %d: front matter: got %q, expected %q", i, fm, test.expectFM)
		}
		if body != test.expectBody {
			t.Errorf("test %d: body: got %q, expected %q", i, body, test.expectBody)
		}
	}
}

func TestMergeYAML(t *testing.T) {
	for i, test := range []struct {
		existing *string
		paths    []string
		expect   string
	}{
		{
			existing: nil,
			paths:    []string{"a.jpg"},
			expect:   "original-paths:\n  - a.jpg\n",
		},
		{
			// appends without duplicating
			existing: strptr("original-paths:\n  - a.jpg\n"),
			paths:    []string{"a.jpg", "b/a.jpg"},
			expect:   "original-paths:\n  - a.jpg\n  - b/a.jpg\n",
		},
		{
			// unmanaged keys pass through in place
			existing: strptr("foo:\n  - bar\noriginal-paths:\n  - a.jpg\n"),
			paths:    []string{"b/a.jpg"},
			expect:   "foo:\n  - bar\noriginal-paths:\n  - a.jpg\n  - b/a.jpg\n",
		},
		{
			// key exists but is empty
			existing: strptr("original-paths:\n"),
			paths:    []string{"a.jpg"},
			expect:   "original-paths:\n  - a.jpg\n",
		},
		{
			// unparsable YAML comes back untouched
			existing: strptr("foo: [unclosed\n"),
			paths:    []string{"a.jpg"},
			expect:   "foo: [unclosed\n",
		},
	} {
		actual := MergeYAML(test.existing, test.paths)
		if actual != test.expect {
			t.Errorf("test %d: got %q, expected %q", i, actual, test.expect)
		}
	}
}

func TestAssembleMarkdown(t *testing.T) {
	actual := AssembleMarkdown([]string{"a.jpg"}, nil, "")
	expect := "---\noriginal-paths:\n  - a.jpg\n---\n"
	if actual != expect {
		t.Errorf("got %q, expected %q", actual, expect)
	}

	actual = AssembleMarkdown([]string{"a.jpg"}, nil, "some notes\n")
	expect = "---\noriginal-paths:\n  - a.jpg\n---\nsome notes\n"
	if actual != expect {
		t.Errorf("got %q, expected %q", actual, expect)
	}
}

func TestBuildSidecarRoundTrip(t *testing.T) {
	// first write
	first := BuildSidecar(nil, []string{"Photos/a.jpg"})
	expect := "---\noriginal-paths:\n  - Photos/a.jpg\n---\n"
	if first != expect {
		t.Fatalf("got %q, expected %q", first, expect)
	}

	// second import of the same file from another path; user body survives
	withBody := first + "my notes\n"
	second := BuildSidecar(&withBody, []string{"Takeout/a.jpg"})
	expect = "---\noriginal-paths:\n  - Photos/a.jpg\n  - Takeout/a.jpg\n---\nmy notes\n"
	if second != expect {
		t.Fatalf("got %q, expected %q", second, expect)
	}

	// repeating the same merge changes nothing
	third := BuildSidecar(&second, []string{"Takeout/a.jpg"})
	if third != second {
		t.Errorf("expected stable content, got %q", third)
	}

	// a sidecar with no body is byte-stable as well
	fourth := BuildSidecar(&first, []string{"Photos/a.jpg"})
	if fourth != first {
		t.Errorf("expected stable content, got %q", fourth)
	}

	// a sidecar whose front matter does not parse passes through whole
	broken := "---\nfoo: [unclosed\n---\nnotes\n"
	kept := BuildSidecar(&broken, []string{"Photos/a.jpg"})
	if kept != broken {
		t.Errorf("expected broken sidecar kept intact, got %q", kept)
	}
}
