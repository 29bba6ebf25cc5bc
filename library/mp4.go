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
	"io"

	"github.com/abema/go-mp4"
	"go.uber.org/zap"
)

// isoIEC14496EpochToUnixEpochSeconds is the offset between the MP4 epoch
// (1904-01-01 UTC) and the Unix epoch.
const isoIEC14496EpochToUnixEpochSeconds = 2082844800

// ParsedMp4 carries the movie-header fields the pipeline uses. Times are
// epoch milliseconds; an MP4-epoch zero is treated as absent. Width and
// height come from the first video track, or 0x0 when there is none.
type ParsedMp4 struct {
	Width              int    `json:"width"`
	Height             int    `json:"height"`
	CreationTimeMs     *int64 `json:"creation_time_ms,omitempty"`
	ModificationTimeMs *int64 `json:"modification_time_ms,omitempty"`
	DurationTicks      uint64 `json:"duration_ticks"`
	Timescale          uint32 `json:"timescale"`
}

// ParseMp4 reads the moov/mvhd header plus the first video track's
// dimensions. It returns nil if the stream is not parseable as MP4.
func ParseMp4(r io.ReadSeeker, name string) *ParsedMp4 {
	var parsed ParsedMp4
	var sawMvhd bool

	// tkhd precedes the track's hdlr box, so dimensions are held back
	// until the handler says the track is video
	var pendingWidth, pendingHeight int
	var haveSize bool

	_, err := mp4.ReadBoxStructure(r, func(h *mp4.ReadHandle) (any, error) {
		if !h.BoxInfo.IsSupportedType() || h.BoxInfo.Type.String() == "mdat" {
			return nil, nil
		}
		box, _, err := h.ReadPayload()
		if err != nil {
			// skip unreadable boxes; whatever we got so far still counts
			Log.Debug("reading MP4 box payload",
				zap.String("file", name),
				zap.String("box", h.BoxInfo.Type.String()),
				zap.Error(err))
			return nil, nil
		}

		switch b := box.(type) {
		case *mp4.Mvhd: // movie header (overall declarations)
			sawMvhd = true
			parsed.CreationTimeMs = isoIEC14496TimestampMs(b.GetCreationTime())
			parsed.ModificationTimeMs = isoIEC14496TimestampMs(b.GetModificationTime())
			parsed.DurationTicks = b.GetDuration()
			parsed.Timescale = b.Timescale

		case *mp4.Tkhd: // track header
			pendingWidth = int(b.GetWidthInt())
			pendingHeight = int(b.GetHeightInt())

		case *mp4.Hdlr: // declares the track's media type
			if !haveSize && string(b.HandlerType[:]) == "vide" {
				parsed.Width = pendingWidth
				parsed.Height = pendingHeight
				haveSize = true
			}
		}

		// traverse child nodes
		return h.Expand()
	})
	if err != nil {
		Log.Debug("could not parse MP4 structure", zap.String("file", name), zap.Error(err))
		return nil
	}
	if !sawMvhd {
		Log.Debug("MP4 has no movie header", zap.String("file", name))
		return nil
	}
	return &parsed
}

// isoIEC14496TimestampMs converts seconds since 1904-01-01 UTC to epoch
// milliseconds. Zero means the writer did not record a time.
func isoIEC14496TimestampMs(ts uint64) *int64 {
	if ts == 0 {
		return nil
	}
	ms := (int64(ts) - isoIEC14496EpochToUnixEpochSeconds) * 1000
	return &ms
}
