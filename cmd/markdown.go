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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/photosort/photosort/library"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var markdownCmd = &cobra.Command{
	Use:   "markdown",
	Short: "Show the markdown sidecar for one photo or video",
	Long: "Markdown inspects a single media file and prints the sidecar that the\n" +
		"sort command would write for it, plus the file's EXIF tags when debug\n" +
		"logging is on.",
	RunE: runMarkdown,
}

var (
	markdownInput  string
	markdownOutput string
)

func init() {
	markdownCmd.Flags().StringVarP(&markdownInput, "input", "i", "", "photo or video file to inspect")
	markdownCmd.Flags().StringVarP(&markdownOutput, "output", "o", "", "write the sidecar to this file instead of stdout")
	rootCmd.AddCommand(markdownCmd)
}

func runMarkdown(_ *cobra.Command, _ []string) error {
	if markdownInput == "" {
		return errors.New("no input file given; use --input")
	}

	// containers are rooted, so open the parent directory and address
	// the file by name within it
	absPath, err := filepath.Abs(markdownInput)
	if err != nil {
		return fmt.Errorf("resolving input path: %w", err)
	}
	root := library.NewDirContainer(filepath.Dir(absPath))
	name := filepath.Base(absPath)

	info, content, err := library.BuildMediaFileInfo(root, library.ScanEntry{
		Path:      name,
		QuickType: library.QuickType(name),
	})
	if err != nil {
		if errors.Is(err, library.ErrUnsupportedMedia) {
			library.Log.Warn("not a valid media file", zap.String("path", markdownInput))
			return nil
		}
		return err
	}

	sidecar := library.BuildSidecar(nil, []string{markdownInput})

	if markdownOutput != "" {
		if err := os.WriteFile(markdownOutput, []byte(sidecar), 0644); err != nil {
			return fmt.Errorf("writing sidecar: %w", err)
		}
	} else {
		fmt.Println("Markdown:")
		fmt.Print(sidecar)
		fmt.Println()
	}

	fmt.Println("Media info:")
	fmt.Printf("  checksum: %s\n", info.HashInfo.LongChecksum)
	fmt.Printf("  type: %s\n", info.AccurateType)
	if reconciled := library.ReconcileTimestamp(info.ExifInfo, info.SuppInfo, info.ModifiedMs, info.CreatedMs); reconciled != nil {
		fmt.Printf("  taken: %d\n", *reconciled)
	}

	if debugMode && info.AccurateType.HasExif() {
		fmt.Println("EXIF:")
		for _, tag := range library.AllTags(content) {
			fmt.Printf("  %d %s: %s\n", tag.Code, tag.Name, tag.Value)
		}
	}
	return nil
}
