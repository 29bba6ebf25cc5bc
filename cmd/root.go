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

// Package pscmd facilitates the command line interface (CLI)
// and implements the main().
package pscmd

import (
	"fmt"
	"os"

	"github.com/photosort/photosort/library"
	"github.com/spf13/cobra"
)

var (
	configFile string
	debugMode  bool

	cfg *library.Config
)

var rootCmd = &cobra.Command{
	Use:   "photosort",
	Short: "Normalize photo and video exports into a dated library",
	Long: "Photosort reads Google Takeout and iCloud exports (directories, zips, or\n" +
		"other archives) and sorts their photos and videos into a date-organized\n" +
		"library with markdown sidecars and album indexes.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if debugMode {
			library.SetDebugLogging(true)
		}
		var err error
		cfg, err = library.LoadConfig(configFile)
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", library.DefaultConfigFilePath(), "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
}

// Main runs the CLI and exits the process on fatal errors.
func Main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
