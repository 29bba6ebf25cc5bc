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
	"github.com/photosort/photosort/library"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dbCmd = &cobra.Command{
	Use:   "db <path>",
	Short: "Index an export's metadata into a sqlite database",
	Long: "Db scans a directory or archive and records one row per photo or video\n" +
		"into " + library.DBFilename + " in the current directory, for ad-hoc querying.\n" +
		"The table is rebuilt on every run.",
	Args: cobra.ExactArgs(1),
	RunE: runDB,
}

func init() {
	rootCmd.AddCommand(dbCmd)
}

func runDB(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input, err := library.OpenContainer(ctx, args[0], cfg.ZipTimezone())
	if err != nil {
		return err
	}
	defer closeContainer(input)

	si, err := library.OpenScanIndex(ctx, library.DBFilename)
	if err != nil {
		return err
	}
	defer func() {
		if err := si.Close(); err != nil {
			library.Log.Warn("closing index database", zap.Error(err))
		}
	}()

	return si.IndexContainer(ctx, input)
}
