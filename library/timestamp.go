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

// ReconcileTimestamp collapses the noisy time sources of one media file
// into a single best-guess taken time, in epoch milliseconds. Order of
// preference:
//
//  1. supplemental photoTakenTime
//  2. EXIF DateTimeOriginal
//  3. EXIF DateTime
//  4. EXIF GPSDateStamp (date only; midnight UTC)
//  5. supplemental creationTime
//  6. file modified time
//  7. file created time
//
// File times carry no timezone and rarely survive copying or syncing
// (zips lack creation times entirely), so they are last resorts only.
// Returns nil when no source is defined.
func ReconcileTimestamp(exifInfo *ParsedExif, suppInfo *SupplementalInfo, modifiedMs, createdMs *int64) *int64 {
	if suppInfo != nil {
		if ms := suppInfo.PhotoTakenTime.EpochMs(); ms != nil {
			return ms
		}
	}
	if exifInfo != nil {
		if exifInfo.DatetimeOriginal != nil {
			if ms := DtAsEpochMs(*exifInfo.DatetimeOriginal); ms != nil {
				return ms
			}
		}
		if exifInfo.Datetime != nil {
			if ms := DtAsEpochMs(*exifInfo.Datetime); ms != nil {
				return ms
			}
		}
		if exifInfo.GpsDate != nil {
			if ms := DAsEpochMs(*exifInfo.GpsDate); ms != nil {
				return ms
			}
		}
	}
	if suppInfo != nil {
		if ms := suppInfo.CreationTime.EpochMs(); ms != nil {
			return ms
		}
	}
	if modifiedMs != nil {
		return modifiedMs
	}
	return createdMs
}
