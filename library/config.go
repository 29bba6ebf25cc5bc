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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Config holds defaults that would otherwise have to be repeated on
// every invocation. All fields are optional; flags override them.
type Config struct {
	// Default output library root for the sort command.
	OutputDir string `json:"output_dir,omitempty"`

	// Number of concurrent workers for media processing.
	Workers int `json:"workers,omitempty"`

	// Timezone offset in minutes east of UTC used to interpret
	// the wall-clock modification times stored in zip archives.
	// When absent, the process-local offset is used.
	ZipTimezoneOffsetMinutes *int `json:"zip_timezone_offset_minutes,omitempty"`

	// Plan everything but write nothing.
	DryRun bool `json:"dry_run,omitempty"`

	log *zap.Logger
}

func (cfg *Config) fillDefaults() {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultSyncWorkers
	}
	if cfg.log == nil {
		cfg.log = Log.Named("config")
	}
}

// ZipTimezone resolves the configured zip timezone offset into a fixed
// location, or the process-local zone when unset.
func (cfg *Config) ZipTimezone() *time.Location {
	if cfg.ZipTimezoneOffsetMinutes == nil {
		return time.Local
	}
	mins := *cfg.ZipTimezoneOffsetMinutes
	return time.FixedZone(fmt.Sprintf("UTC%+d:%02d", mins/60, abs(mins%60)), mins*60)
}

// LoadConfig reads the config file at filename, or returns a default
// config when filename is the default path and no file exists there. A
// missing explicitly-given path is an error.
func LoadConfig(filename string) (*Config, error) {
	cfgBytes, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && filename == DefaultConfigFilePath() {
			cfg := new(Config)
			cfg.fillDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := new(Config)
	if err := json.Unmarshal(cfgBytes, cfg); err != nil {
		return nil, fmt.Errorf("decoding config file %s: %w", filename, err)
	}
	cfg.fillDefaults()
	cfg.log.Debug("loaded config file", zap.String("path", filename))
	return cfg, nil
}

// DefaultConfigFilePath returns the file path where
// configuration is read from when no --config flag is given.
func DefaultConfigFilePath() string {
	cfgDir, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(cfgDir, "photosort", "config.json")
	}
	cfgDir, err = os.UserHomeDir()
	if err == nil {
		return filepath.Join(cfgDir, ".photosort", "config.json")
	}
	return filepath.Join(".photosort", "config.json")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
