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

	"github.com/photosort/photosort/library"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Sort photo and video exports into the library",
	Long: "Sort reads each given input (a directory, zip, or other archive) and\n" +
		"copies its photos and videos into the output library under dated paths,\n" +
		"writing a markdown sidecar per media file and one per album.",
	RunE: runSort,
}

var (
	sortDirectory       string
	sortInputTakeout    string
	sortInputICloud     string
	sortOutput          string
	sortDryRun          bool
	sortSkipMarkdown    bool
	sortSkipMedia       bool
	sortSkipAlbums      bool
	sortSetModifiedTime bool
	sortWorkers         int
)

func init() {
	sortCmd.Flags().StringVar(&sortDirectory, "directory", "", "input directory or archive")
	sortCmd.Flags().StringVar(&sortInputTakeout, "input-takeout", "", "Google Takeout directory or zip")
	sortCmd.Flags().StringVar(&sortInputICloud, "input-icloud", "", "iCloud export directory or zip")
	sortCmd.Flags().StringVarP(&sortOutput, "output", "o", "", "library directory to sort into")
	sortCmd.Flags().BoolVarP(&sortDryRun, "dry-run", "n", false, "don't write anything, just print what would be done")
	sortCmd.Flags().BoolVar(&sortSkipMarkdown, "skip-markdown", false, "skip generating markdown files")
	sortCmd.Flags().BoolVar(&sortSkipMedia, "skip-media", false, "skip inspecting and copying photo and video files")
	sortCmd.Flags().BoolVar(&sortSkipAlbums, "skip-albums", false, "skip inspecting and copying albums")
	sortCmd.Flags().BoolVar(&sortSetModifiedTime, "set-modified-time", false, "set output file modification times to the reconciled taken time")
	sortCmd.Flags().IntVar(&sortWorkers, "workers", 0, "number of concurrent workers (default from config)")
	rootCmd.AddCommand(sortCmd)
}

func runSort(cmd *cobra.Command, _ []string) error {
	var inputs []string
	for _, in := range []string{sortDirectory, sortInputTakeout, sortInputICloud} {
		if in != "" {
			inputs = append(inputs, in)
		}
	}
	if len(inputs) == 0 {
		return errors.New("no input given; use --directory, --input-takeout, or --input-icloud")
	}

	outputDir := sortOutput
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	if outputDir == "" {
		return errors.New("no output directory given; use --output or set output_dir in the config")
	}

	if sortDryRun {
		library.Log.Info("dry run mode is on, no changes will be made to disk")
	}

	workers := sortWorkers
	if workers <= 0 {
		workers = cfg.Workers
	}

	ctx := cmd.Context()
	output := library.NewDirContainer(outputDir)

	for _, in := range inputs {
		input, err := library.OpenContainer(ctx, in, cfg.ZipTimezone())
		if err != nil {
			return err
		}

		syncer := library.NewSyncer(input, output, library.SyncOptions{
			DryRun:          sortDryRun || cfg.DryRun,
			SkipMarkdown:    sortSkipMarkdown,
			SkipMedia:       sortSkipMedia,
			SkipAlbums:      sortSkipAlbums,
			SetModifiedTime: sortSetModifiedTime,
			Workers:         workers,
		})
		stats, err := syncer.Run(ctx)
		closeContainer(input)
		if err != nil {
			return err
		}
		library.Log.Info("input done",
			zap.String("input", in),
			zap.Int("processed", stats.MediaProcessed),
			zap.Int("skipped", stats.MediaSkipped),
			zap.Int("failed", stats.MediaFailed),
			zap.Int("albums", stats.AlbumsWritten))
	}
	return nil
}

func closeContainer(c library.Container) {
	if closer, ok := c.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			library.Log.Warn("closing input", zap.Error(err))
		}
	}
}
