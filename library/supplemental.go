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
	"encoding/json"
	"strconv"

	"go.uber.org/zap"
)

// SupplementalInfo is the sidecar JSON document the takeout flavor writes
// next to each media file. Only the fields we use are modeled; unknown
// top-level fields are ignored.
type SupplementalInfo struct {
	GeoData        *SupplementalGeoData  `json:"geoData,omitempty"`
	GeoDataExif    *SupplementalGeoData  `json:"geoDataExif,omitempty"`
	People         []SupplementalPerson  `json:"people,omitempty"`
	PhotoTakenTime *SupplementalDateTime `json:"photoTakenTime,omitempty"`
	CreationTime   *SupplementalDateTime `json:"creationTime,omitempty"`
}

type SupplementalGeoData struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type SupplementalPerson struct {
	Name *string `json:"name,omitempty"`
}

// SupplementalDateTime wraps the export's timestamp object. Timestamp is
// a decimal string of epoch seconds (e.g. "1716539968"); Formatted is a
// human-readable rendering we never parse.
type SupplementalDateTime struct {
	Timestamp *string `json:"timestamp,omitempty"`
	Formatted *string `json:"formatted,omitempty"`
}

// EpochMs converts the decimal timestamp string to epoch milliseconds,
// or nil when absent or not numeric. Ten-digit values are seconds;
// anything longer is assumed to be milliseconds already.
func (t *SupplementalDateTime) EpochMs() *int64 {
	if t == nil || t.Timestamp == nil {
		return nil
	}
	v, err := strconv.ParseInt(*t.Timestamp, 10, 64)
	if err != nil {
		return nil
	}
	if len(*t.Timestamp) == 10 {
		v *= 1000
	}
	return &v
}

// PeopleNames returns the names of tagged people, skipping nameless
// entries.
func (si *SupplementalInfo) PeopleNames() []string {
	if si == nil {
		return nil
	}
	var names []string
	for _, p := range si.People {
		if p.Name != nil && *p.Name != "" {
			names = append(names, *p.Name)
		}
	}
	return names
}

// ParseSupplemental decodes a supplemental sidecar document. Invalid
// JSON yields nil.
func ParseSupplemental(content []byte, name string) *SupplementalInfo {
	var si SupplementalInfo
	if err := json.Unmarshal(content, &si); err != nil {
		Log.Warn("unable to decode supplemental JSON", zap.String("file", name), zap.Error(err))
		return nil
	}
	return &si
}

// LoadSupplemental reads and parses the supplemental sidecar at path.
func LoadSupplemental(c Container, path string) *SupplementalInfo {
	content, err := FileBytes(c, path)
	if err != nil {
		Log.Warn("could not read supplemental json file", zap.String("file", path), zap.Error(err))
		return nil
	}
	return ParseSupplemental(content, path)
}
