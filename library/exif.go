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
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cozy/goexif2/exif"
	"github.com/cozy/goexif2/mknote"
	"github.com/cozy/goexif2/tiff"
	"go.uber.org/zap"
)

func init() {
	exif.RegisterParsers(mknote.All...)
}

// ParsedExif is the tag subset the pipeline cares about. Datetimes are
// RFC-3339 UTC strings; GpsDate is a bare YYYY-MM-DD.
type ParsedExif struct {
	DatetimeOriginal *string `json:"datetime_original,omitempty"`
	Datetime         *string `json:"datetime,omitempty"`
	GpsDate          *string `json:"gps_date,omitempty"`
	UniqueID         *string `json:"unique_id,omitempty"`
}

// ParseExif extracts the fixed tag subset from an image. It returns nil
// when the file format cannot carry EXIF or the block is missing or
// unreadable; a single unparsable field degrades to absent for that
// field only.
func ParseExif(content []byte, name string, fileType AccurateFileType) *ParsedExif {
	if !fileType.HasExif() {
		return nil
	}
	ex, err := exif.Decode(bytes.NewReader(content))
	if err != nil && exif.IsCriticalError(err) {
		Log.Debug("could not read EXIF data from file",
			zap.String("file", name),
			zap.Int("size", len(content)),
			zap.Error(err))
		return nil
	}
	return &ParsedExif{
		DatetimeOriginal: parseExifDatetime(asciiTag(ex, exif.DateTimeOriginal), asciiTag(ex, exif.SubSecTimeOriginal)),
		Datetime:         parseExifDatetime(asciiTag(ex, exif.DateTime), asciiTag(ex, exif.SubSecTime)),
		GpsDate:          parseGpsDate(asciiTag(ex, exif.GPSDateStamp)),
		UniqueID:         asciiTag(ex, exif.ImageUniqueID),
	}
}

// asciiTag returns the trimmed string value of an ASCII tag, or nil if
// the tag is absent or not readable as a string.
func asciiTag(ex *exif.Exif, field exif.FieldName) *string {
	tag, err := ex.Get(field)
	if err != nil {
		return nil
	}
	s, err := tag.StringVal()
	if err != nil {
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, "\x00"))
	if s == "" {
		return nil
	}
	return &s
}

// parseExifDatetime normalizes an EXIF datetime tag plus its optional
// sub-second companion into an RFC-3339 UTC string. Camera firmware
// produces some invalid-ish values that we accept anyway:
//
//	2019:04:04 18:04:98  (seconds overflow; carried into minutes)
//	2019:04:04           (missing time; midnight assumed)
//
// Sub-seconds are literal milliseconds and must be in [0, 1000);
// out-of-range values are dropped with a warning. The output carries
// millisecond precision iff the sub-second tag was present.
func parseExifDatetime(dt, subSec *string) *string {
	if dt == nil {
		return nil
	}
	parts := strings.SplitN(strings.TrimSpace(*dt), " ", 2)

	year, month, day, ok := parseExifDateParts(parts[0])
	if !ok {
		Log.Warn("could not parse EXIF date", zap.String("value", *dt))
		return nil
	}

	if len(parts) < 2 || parts[1] == "" {
		// date only
		s := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(rfc3339Secs)
		return &s
	}

	timeParts := strings.Split(parts[1], ":")
	if len(timeParts) != 3 {
		Log.Warn("could not parse EXIF time", zap.String("value", *dt))
		return nil
	}
	hour, err1 := strconv.Atoi(timeParts[0])
	minute, err2 := strconv.Atoi(timeParts[1])
	second, err3 := strconv.Atoi(timeParts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		Log.Warn("could not parse EXIF time", zap.String("value", *dt))
		return nil
	}

	ms := 0
	if subSec != nil {
		v, err := strconv.Atoi(strings.TrimSpace(*subSec))
		if err != nil || v < 0 || v >= 1000 {
			Log.Warn("EXIF sub-second value out of range, dropping",
				zap.String("value", *subSec),
				zap.String("datetime", *dt))
		} else {
			ms = v
		}
	}

	// time.Date normalizes overflowing components, which takes care of
	// the seconds carry
	t := time.Date(year, time.Month(month), day, hour, minute, second, ms*int(time.Millisecond), time.UTC)

	var s string
	if subSec != nil {
		s = t.Format(rfc3339Millis)
	} else {
		s = t.Format(rfc3339Secs)
	}
	return &s
}

const (
	rfc3339Secs   = "2006-01-02T15:04:05Z"
	rfc3339Millis = "2006-01-02T15:04:05.000Z"
)

// parseExifDateParts reads a YYYY:MM:DD or YYYY-MM-DD value.
func parseExifDateParts(s string) (year, month, day int, ok bool) {
	sep := ":"
	if strings.Contains(s, "-") {
		sep = "-"
	}
	fields := strings.Split(s, sep)
	if len(fields) != 3 {
		return 0, 0, 0, false
	}
	var err1, err2, err3 error
	year, err1 = strconv.Atoi(fields[0])
	month, err2 = strconv.Atoi(fields[1])
	day, err3 = strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// parseGpsDate normalizes a GPSDateStamp tag to YYYY-MM-DD.
func parseGpsDate(d *string) *string {
	if d == nil {
		return nil
	}
	// some firmware appends a time; only the date part counts
	datePart := strings.SplitN(strings.TrimSpace(*d), " ", 2)[0]
	year, month, day, ok := parseExifDateParts(datePart)
	if !ok {
		Log.Warn("could not parse EXIF GPS date", zap.String("value", *d))
		return nil
	}
	s := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	return &s
}

// DtAsEpochMs converts an RFC-3339 datetime string to epoch milliseconds.
func DtAsEpochMs(dt string) *int64 {
	t, err := time.Parse(time.RFC3339, dt)
	if err != nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// DAsEpochMs converts a YYYY-MM-DD date string to epoch milliseconds at
// midnight UTC.
func DAsEpochMs(d string) *int64 {
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// ExifTagInfo is one entry of the inspection listing: the numeric tag
// code, its name, a printable value, and the TIFF data type.
type ExifTagInfo struct {
	Code  uint16 `json:"code"`
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

type exifWalkerFunc func(exif.FieldName, *tiff.Tag) error

func (w exifWalkerFunc) Walk(name exif.FieldName, tag *tiff.Tag) error {
	return w(name, tag)
}

// AllTags enumerates every recognized EXIF field of an image, for the
// inspection mode. The sync pipeline does not use this. Returns nil when
// the image has no readable EXIF block.
func AllTags(content []byte) []ExifTagInfo {
	ex, err := exif.Decode(bytes.NewReader(content))
	if err != nil && exif.IsCriticalError(err) {
		Log.Debug("could not read EXIF data", zap.Error(err))
		return nil
	}

	var tags []ExifTagInfo
	err = ex.Walk(exifWalkerFunc(func(name exif.FieldName, tag *tiff.Tag) error {
		tags = append(tags, ExifTagInfo{
			Code:  tag.Id,
			Name:  string(name),
			Value: prettyTagValue(tag),
			Type:  tagTypeName(tag),
		})
		return nil
	}))
	if err != nil {
		Log.Warn("walking EXIF fields", zap.Error(err))
	}

	// walk order is not deterministic; fix it for stable output
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Code != tags[j].Code {
			return tags[i].Code < tags[j].Code
		}
		return tags[i].Name < tags[j].Name
	})
	return tags
}

func prettyTagValue(tag *tiff.Tag) string {
	switch tag.Format() {
	case tiff.StringVal:
		if s, err := tag.StringVal(); err == nil {
			return strings.TrimSpace(strings.Trim(s, "\x00"))
		}
	case tiff.IntVal:
		vals := make([]string, 0, tag.Count)
		for i := range int(tag.Count) {
			v, err := tag.Int(i)
			if err != nil {
				break
			}
			vals = append(vals, strconv.Itoa(v))
		}
		return strings.Join(vals, ", ")
	case tiff.FloatVal:
		vals := make([]string, 0, tag.Count)
		for i := range int(tag.Count) {
			v, err := tag.Float(i)
			if err != nil {
				break
			}
			vals = append(vals, strconv.FormatFloat(v, 'g', -1, 64))
		}
		return strings.Join(vals, ", ")
	case tiff.RatVal:
		vals := make([]string, 0, tag.Count)
		for i := range int(tag.Count) {
			num, den, err := tag.Rat2(i)
			if err != nil {
				break
			}
			vals = append(vals, fmt.Sprintf("%d/%d", num, den))
		}
		return strings.Join(vals, ", ")
	}
	return tag.String()
}

func tagTypeName(tag *tiff.Tag) string {
	switch tag.Type {
	case tiff.DTByte:
		return "byte"
	case tiff.DTAscii:
		return "ascii"
	case tiff.DTShort:
		return "short"
	case tiff.DTLong:
		return "long"
	case tiff.DTRational:
		return "rational"
	case tiff.DTSByte:
		return "sbyte"
	case tiff.DTUndefined:
		return "undefined"
	case tiff.DTSShort:
		return "sshort"
	case tiff.DTSLong:
		return "slong"
	case tiff.DTSRational:
		return "srational"
	case tiff.DTFloat:
		return "float"
	case tiff.DTDouble:
		return "double"
	}
	return "unknown"
}
