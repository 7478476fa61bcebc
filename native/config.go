package native

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// LibraryConfig is one TOML descriptor for a dynamically configured
// native library: its per-OS filenames and the ncall codes it answers
// for. Field names and the functions-as-a-map shape follow the original
// native service's NSysCfg.
type LibraryConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`

	LibFilenameLinux string `toml:"lib_filename_linux"`
	LibFilenameMacos string `toml:"lib_filename_macos"`
	LibFilenameWin   string `toml:"lib_filename_win"`

	// Functions maps a function name to {ncall_code, argc}.
	Functions map[string]FunctionRecord `toml:"functions"`
}

// FunctionRecord is one exported function's calling convention.
type FunctionRecord struct {
	NcallCode uint16 `toml:"ncall_code"`
	Argc      int    `toml:"argc"`
}

// LibraryFilename returns the descriptor's filename for the running
// platform.
func (c LibraryConfig) LibraryFilename(goos string) (string, bool) {
	switch goos {
	case "linux":
		return c.LibFilenameLinux, c.LibFilenameLinux != ""
	case "darwin":
		return c.LibFilenameMacos, c.LibFilenameMacos != ""
	case "windows":
		return c.LibFilenameWin, c.LibFilenameWin != ""
	}
	return "", false
}

// LoadLibraryConfigs decodes every *.toml descriptor in dir, in the
// teacher's toml.DecodeFile style.
func LoadLibraryConfigs(dir string) ([]LibraryConfig, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("native: reading config directory %s: %w", dir, err)
	}

	var configs []LibraryConfig
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		var cfg LibraryConfig
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("native: parsing %s: %w", path, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
