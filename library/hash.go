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
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"hash"
	"io"

	"github.com/zeebo/blake3"
)

// shortChecksumLen is how many characters of the long checksum are used
// for display and for undated filenames.
const shortChecksumLen = 7

// HashInfo identifies a file's content. The long checksum is the identity
// key; the short checksum is a display/path prefix of it.
type HashInfo struct {
	ShortChecksum string `json:"short_checksum"`
	LongChecksum  string `json:"long_checksum"`
}

// ComputeHash streams r and returns the content checksums: the long form
// is the URL-safe base64 of the SHA-256 digest, the short form its first
// seven characters.
func ComputeHash(r io.Reader) (HashInfo, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return HashInfo{}, fmt.Errorf("hashing content: %w", err)
	}
	long := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return HashInfo{
		ShortChecksum: long[:shortChecksumLen],
		LongChecksum:  long,
	}, nil
}

// HashBytes is a convenience form of ComputeHash for in-memory content.
func HashBytes(b []byte) HashInfo {
	sum := sha256.Sum256(b)
	long := base64.RawURLEncoding.EncodeToString(sum[:])
	return HashInfo{
		ShortChecksum: long[:shortChecksumLen],
		LongChecksum:  long,
	}
}

// newHash returns the hash used for write short-circuiting, i.e. deciding
// whether output bytes differ from what is already on disk. Not used for
// file identity (see ComputeHash).
func newHash() hash.Hash { return blake3.New() }

// contentChanged reports whether two byte slices differ, comparing digests
// rather than the full contents.
func contentChanged(a, b []byte) bool {
	ha, hb := newHash(), newHash()
	ha.Write(a)
	hb.Write(b)
	return string(ha.Sum(nil)) != string(hb.Sum(nil))
}
