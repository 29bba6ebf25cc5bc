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
	"encoding/binary"
	"testing"
)

// box assembles one ISO-BMFF box with a computed size header.
func box(boxType string, payload ...[]byte) []byte {
	var body []byte
	for _, p := range payload {
		body = append(body, p...)
	}
	out := make([]byte, 8, 8+len(body))
	binary.BigEndian.PutUint32(out, uint32(8+len(body)))
	copy(out[4:], boxType)
	return append(out, body...)
}

func be32(v uint32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, v)
	return out
}

func be16(v uint16) []byte {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, v)
	return out
}

// identityMatrix is the unity transformation per ISO/IEC 14496-12.
func identityMatrix() []byte {
	var m []byte
	m = append(m, be32(0x00010000)...)
	m = append(m, be32(0)...)
	m = append(m, be32(0)...)
	m = append(m, be32(0)...)
	m = append(m, be32(0x00010000)...)
	m = append(m, be32(0)...)
	m = append(m, be32(0)...)
	m = append(m, be32(0)...)
	m = append(m, be32(0x40000000)...)
	return m
}

// buildTestMovie assembles a minimal but structurally valid MP4 header:
// ftyp plus a moov with one video track, no media data.
func buildTestMovie(creation, modification, timescale, duration uint32, width, height int) []byte {
	mvhd := box("mvhd",
		be32(0), // version 0, no flags
		be32(creation),
		be32(modification),
		be32(timescale),
		be32(duration),
		be32(0x00010000), // rate 1.0
		be16(0x0100),     // volume 1.0
		make([]byte, 10), // reserved
		identityMatrix(),
		make([]byte, 24), // pre_defined
		be32(2),          // next_track_ID
	)

	tkhd := box("tkhd",
		be32(0x00000007), // version 0, track enabled+in movie+in preview
		be32(creation),
		be32(modification),
		be32(1), // track_ID
		be32(0), // reserved
		be32(duration),
		make([]byte, 8), // reserved
		be16(0),         // layer
		be16(0),         // alternate_group
		be16(0),         // volume (video tracks are silent)
		be16(0),         // reserved
		identityMatrix(),
		be32(uint32(width)<<16), // 16.16 fixed point
		be32(uint32(height)<<16),
	)

	hdlr := box("hdlr",
		be32(0),          // version 0, no flags
		be32(0),          // pre_defined
		[]byte("vide"),   // handler_type
		make([]byte, 12), // reserved
		[]byte{0},        // empty name
	)

	ftyp := box("ftyp", []byte("mp42"), be32(0), []byte("mp41"))
	moov := box("moov", mvhd, box("trak", tkhd, box("mdia", hdlr)))
	return append(ftyp, moov...)
}

func TestParseMp4(t *testing.T) {
	// 1713439466 unix = 3796284266 in the 1904 epoch
	movie := buildTestMovie(3796284266, 0, 1000, 5000, 854, 480)

	parsed := ParseMp4(bytes.NewReader(movie), "Hello.mp4")
	if parsed == nil {
		t.Fatal("expected a parse result")
	}
	if parsed.Width != 854 || parsed.Height != 480 {
		t.Errorf("got %dx%d, expected 854x480", parsed.Width, parsed.Height)
	}
	if parsed.Timescale != 1000 {
		t.Errorf("got timescale %d, expected 1000", parsed.Timescale)
	}
	if parsed.DurationTicks != 5000 {
		t.Errorf("got duration %d, expected 5000", parsed.DurationTicks)
	}
	if parsed.CreationTimeMs == nil || *parsed.CreationTimeMs != 1713439466000 {
		t.Errorf("got creation time %v, expected 1713439466000", parsed.CreationTimeMs)
	}
	// zero means the writer did not record a time
	if parsed.ModificationTimeMs != nil {
		t.Errorf("got modification time %v, expected absent", parsed.ModificationTimeMs)
	}
}

func TestParseMp4Garbage(t *testing.T) {
	if parsed := ParseMp4(bytes.NewReader([]byte("not an mp4 file at all")), "bad.mp4"); parsed != nil {
		t.Errorf("expected nil, got %+v", parsed)
	}
}

func TestIsoIEC14496TimestampMs(t *testing.T) {
	if ms := isoIEC14496TimestampMs(0); ms != nil {
		t.Errorf("expected nil for zero, got %v", ms)
	}
	if ms := isoIEC14496TimestampMs(isoIEC14496EpochToUnixEpochSeconds); ms == nil || *ms != 0 {
		t.Errorf("expected 0, got %v", ms)
	}
	if ms := isoIEC14496TimestampMs(3796284266); ms == nil || *ms != 1713439466000 {
		t.Errorf("expected 1713439466000, got %v", ms)
	}
}
