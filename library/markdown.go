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
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// originalPathsKey is the front-matter key the writer manages: the
// ordered list of paths a media file has been seen at. All other keys
// belong to the user and are preserved verbatim.
const originalPathsKey = "original-paths"

// SplitFrontMatter separates a markdown file into its YAML front matter
// (the bytes between a leading "---" line and the next "---" token) and
// the body. Leading newlines before the opening delimiter are tolerated.
// If there is no opening delimiter, no closing delimiter, or the block
// between them is empty, the whole input is returned as body with empty
// front matter. Both \n and \r\n delimiters are recognized; the body
// keeps the file's line-ending style.
func SplitFrontMatter(fileContents string) (frontMatter, body string) {
	trimmed := strings.TrimLeft(fileContents, "\n\r")

	var lineEnding, afterOpen string
	switch {
	case strings.HasPrefix(trimmed, "---\r\n"):
		lineEnding, afterOpen = "\r\n", trimmed[len("---\r\n"):]
	case strings.HasPrefix(trimmed, "---\n"):
		lineEnding, afterOpen = "\n", trimmed[len("---\n"):]
	default:
		return "", fileContents
	}

	endPos := strings.Index(afterOpen, "---")
	if endPos < 0 {
		// no closing delimiter
		return "", fileContents
	}
	block := afterOpen[:endPos]
	afterEnd := afterOpen[endPos:]

	if strings.TrimSpace(block) == "" {
		// empty front matter is the same as none
		return "", fileContents
	}
	frontMatter = strings.TrimRight(block, "\n\r")

	switch {
	case strings.HasPrefix(afterEnd, "---\r\n"):
		return frontMatter, afterEnd[len("---\r\n"):]
	case strings.HasPrefix(afterEnd, "---\n"):
		return frontMatter, afterEnd[len("---\n"):]
	default:
		// closing delimiter with no line ending of its own
		rest := afterEnd[len("---"):]
		if rest != "" {
			return frontMatter, lineEnding + rest
		}
		return frontMatter, ""
	}
}

// MergeYAML merges the managed front-matter fields into an existing YAML
// block, returning the new block with a single trailing newline. Keys the
// writer does not manage pass through untouched and keep their relative
// order; original paths are appended to any existing original-paths list,
// skipping values already present. If the existing YAML cannot be parsed
// as a mapping it is returned unchanged.
func MergeYAML(existingYAML *string, originalPaths []string) string {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if existingYAML != nil && strings.TrimSpace(*existingYAML) != "" {
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(*existingYAML), &doc); err != nil {
			Log.Warn("could not parse existing front-matter YAML", zap.Error(err))
			return *existingYAML
		}
		if len(doc.Content) == 0 {
			Log.Warn("no YAML document found in front matter")
			return *existingYAML
		}
		if doc.Content[0].Kind != yaml.MappingNode {
			Log.Warn("front-matter YAML root is not a mapping")
			return *existingYAML
		}
		root = doc.Content[0]
	}

	mergeYAMLList(root, originalPathsKey, originalPaths)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		Log.Warn("could not emit front-matter YAML", zap.Error(err))
		if existingYAML != nil {
			return *existingYAML
		}
		return ""
	}
	enc.Close()

	out := buf.String()
	out = strings.TrimPrefix(out, "---")
	out = strings.Trim(out, "\n")
	return out + "\n"
}

// mergeYAMLList appends values to the sequence at key in root, creating
// the key if needed and skipping values the sequence already holds.
// A key that exists with a non-sequence value is left alone.
func mergeYAMLList(root *yaml.Node, key string, values []string) {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != key {
			continue
		}
		valNode := root.Content[i+1]
		if valNode.Kind == yaml.ScalarNode && valNode.Tag == "!!null" {
			// empty value; replace with a fresh list
			root.Content[i+1] = newYAMLStringList(values)
			return
		}
		if valNode.Kind != yaml.SequenceNode {
			Log.Warn("expected front-matter key to be a list", zap.String("key", key))
			return
		}
		existing := make(map[string]bool, len(valNode.Content))
		for _, item := range valNode.Content {
			existing[item.Value] = true
		}
		for _, v := range values {
			if existing[v] {
				continue
			}
			valNode.Content = append(valNode.Content, newYAMLString(v))
		}
		return
	}
	root.Content = append(root.Content, newYAMLString(key), newYAMLStringList(values))
}

func newYAMLString(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func newYAMLStringList(values []string) *yaml.Node {
	list := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, v := range values {
		list.Content = append(list.Content, newYAMLString(v))
	}
	return list
}

// AssembleMarkdown produces the sidecar content: merged front matter
// between "---" delimiters, then the body. If the merge yields nothing,
// the body is returned unchanged.
func AssembleMarkdown(originalPaths []string, existingYAML *string, markdownContent string) string {
	newYAML := MergeYAML(existingYAML, originalPaths)
	if newYAML == "" {
		Log.Warn("generated front-matter YAML is empty")
		return markdownContent
	}
	return "---\n" + newYAML + "---\n" + markdownContent
}

// BuildSidecar computes the sidecar content for a media file, merging
// into the existing sidecar when there is one. A merge that records
// nothing new returns the existing sidecar byte for byte, so repeated
// runs over the same input leave the file untouched.
func BuildSidecar(existingSidecar *string, originalPaths []string) string {
	var existingYAML *string
	body := ""
	if existingSidecar != nil {
		fm, md := SplitFrontMatter(*existingSidecar)
		if fm != "" {
			existingYAML = &fm
		}
		body = md
	}
	if existingYAML != nil {
		merged := MergeYAML(existingYAML, originalPaths)
		if strings.TrimRight(merged, "\n") == strings.TrimRight(*existingYAML, "\n") {
			return *existingSidecar
		}
	}
	return AssembleMarkdown(originalPaths, existingYAML, body)
}

// SyncMarkdown writes the sidecar for a written media file. The existing
// sidecar, if any, is merged; the write is skipped when the content
// digest is unchanged.
func SyncMarkdown(out WritableContainer, sidecarPath string, originalPaths []string, dryRun bool) error {
	var existing *string
	if out.Exists(sidecarPath) {
		content, err := FileBytes(out, sidecarPath)
		if err != nil {
			return err
		}
		s := string(content)
		existing = &s
	}

	assembled := BuildSidecar(existing, originalPaths)
	if existing != nil && !contentChanged([]byte(*existing), []byte(assembled)) {
		Log.Debug("sidecar unchanged", zap.String("path", sidecarPath))
		return nil
	}
	return out.Write(sidecarPath, []byte(assembled), dryRun)
}
