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

package pscmd

import (
	"fmt"

	"github.com/photosort/photosort/library"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Classify every file in an export and report the buckets",
	Long: "Index scans a directory or archive, classifies every entry by name, and\n" +
		"reports how many media files, albums, and unrecognized files it holds.\n" +
		"Unrecognized files are listed so nothing silently falls through.",
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input, err := library.OpenContainer(ctx, args[0], cfg.ZipTimezone())
	if err != nil {
		return err
	}
	defer closeContainer(input)

	entries, err := input.Enumerate(ctx)
	if err != nil {
		return err
	}

	counts := map[library.QuickFileType]int{}
	var unknown []string
	for _, entry := range entries {
		counts[entry.QuickType]++
		if entry.QuickType == library.QuickUnknown {
			unknown = append(unknown, entry.Path)
		}
	}

	fmt.Printf("%d files in %s\n", len(entries), input.Name())
	fmt.Printf("  media:       %d\n", counts[library.QuickMedia])
	fmt.Printf("  album (csv): %d\n", counts[library.QuickAlbumCsv])
	fmt.Printf("  album (json):%d\n", counts[library.QuickAlbumJson])
	fmt.Printf("  unknown:     %d\n", counts[library.QuickUnknown])
	for _, path := range unknown {
		fmt.Printf("    %s\n", path)
	}
	return nil
}
