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

import "testing"

func TestReconcileTimestamp(t *testing.T) {
	taken := "1716539968"
	creation := "1716540000"
	dtOriginal := "2008-05-30T15:56:01Z"
	dt := "2010-06-01T10:00:00Z"
	gps := "2012-07-02"

	supp := &SupplementalInfo{
		PhotoTakenTime: &SupplementalDateTime{Timestamp: &taken},
		CreationTime:   &SupplementalDateTime{Timestamp: &creation},
	}
	suppCreationOnly := &SupplementalInfo{
		CreationTime: &SupplementalDateTime{Timestamp: &creation},
	}

	for i, test := range []struct {
		exif     *ParsedExif
		supp     *SupplementalInfo
		modified *int64
		created  *int64
		expect   *int64
	}{
		{
			// supplemental taken time beats everything
			exif:     &ParsedExif{DatetimeOriginal: &dtOriginal},
			supp:     supp,
			modified: msptr(1),
			expect:   msptr(1716539968000),
		},
		{
			// then EXIF DateTimeOriginal
			exif:     &ParsedExif{DatetimeOriginal: &dtOriginal, Datetime: &dt},
			supp:     suppCreationOnly,
			modified: msptr(1),
			expect:   msptr(1212162961000),
		},
		{
			// then EXIF DateTime
			exif:   &ParsedExif{Datetime: &dt},
			expect: msptr(1275386400000),
		},
		{
			// then GPS date, at midnight UTC
			exif:   &ParsedExif{GpsDate: &gps},
			expect: msptr(1341187200000),
		},
		{
			// then supplemental creation time
			supp:     suppCreationOnly,
			modified: msptr(1),
			expect:   msptr(1716540000000),
		},
		{
			// then file modified, before created
			modified: msptr(42),
			created:  msptr(7),
			expect:   msptr(42),
		},
		{
			created: msptr(7),
			expect:  msptr(7),
		},
		{
			expect: nil,
		},
	} {
		actual := ReconcileTimestamp(test.exif, test.supp, test.modified, test.created)
		if (actual == nil) != (test.expect == nil) {
			t.Errorf("test %d: got %v, expected %v", i, actual, test.expect)
			continue
		}
		if actual != nil && *actual != *test.expect {
			t.Errorf("test %d: got %d, expected %d", i, *actual, *test.expect)
		}
	}
}
