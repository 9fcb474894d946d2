package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// JSONFileName and TOMLFileName are read from each config directory.
	// When both exist, TOML values overlay JSON values.
	JSONFileName = "config.json"
	TOMLFileName = "config.toml"

	// RepoDirName is the per-project config directory found by walking upward.
	RepoDirName = ".tally"

	// ExportsDirName is the default export/import directory under the base directory.
	ExportsDirName = "exports"
)

// Config holds application configuration.
type Config struct {
	// BaseDir is the directory the config was loaded from. Not read from files.
	BaseDir string `json:"-" toml:"-"`

	// DataFile is the flat task file, relative to the base directory unless absolute.
	DataFile string `json:"data_file,omitempty" toml:"data_file"`

	// DBFile is the SQLite database used when Backend is "sqlite".
	DBFile string `json:"db_file,omitempty" toml:"db_file"`

	// Backend selects the persistence backend: "file" or "sqlite".
	Backend string `json:"backend,omitempty" toml:"backend"`

	// LooseDates keeps deadline dates as free text instead of requiring
	// YYYY-MM-DD HH:MM. Event times are always free text.
	LooseDates bool `json:"loose_dates,omitempty" toml:"loose_dates"`

	// MaxTasks caps the number of tasks. 0 means unlimited.
	MaxTasks int `json:"max_tasks,omitempty" toml:"max_tasks"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" toml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `json:"log_format,omitempty" toml:"log_format"`

	// AllowedPaths is an allowlist of directories for export/import.
	// Paths outside <base>/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty" toml:"allowed_paths"`

	// AllowUnsafePaths disables directory restrictions for export/import.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty" toml:"allow_unsafe_paths"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty" toml:"disabled_tools"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataFile:  filepath.Join("data", "tasks.txt"),
		DBFile:    filepath.Join("data", "tasks.db"),
		Backend:   "file",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// StrictDates reports whether deadline dates must be parsed.
func (c *Config) StrictDates() bool {
	return !c.LooseDates
}

// DataPath resolves the path the configured backend reads and writes.
func (c *Config) DataPath(baseDir string) string {
	p := c.DataFile
	if c.Backend == "sqlite" {
		p = c.DBFile
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// ExportsDir returns the default directory for export files.
func (c *Config) ExportsDir() string {
	return filepath.Join(c.BaseDir, ExportsDirName)
}

// Load loads configuration from baseDir/config.json and baseDir/config.toml.
// Returns default config if neither file exists.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tally.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadDir(baseDir)
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	merged.BaseDir = baseDir
	return merged, nil
}

// LoadWithRepo loads configuration from both the global directory and the
// nearest .tally directory above startDir. Repo config takes precedence
// for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadDir(globalDir)
	if err != nil {
		return nil, err
	}

	repo := &Config{}
	if repoDir := FindRepoDir(startDir); repoDir != "" && repoDir != filepath.Clean(globalDir) {
		repo, err = loadDir(repoDir)
		if err != nil {
			return nil, err
		}
	}

	// Apply defaults, then global, then repo
	merged := Merge(Merge(DefaultConfig(), global), repo)
	merged.BaseDir = globalDir
	return merged, nil
}

// FindRepoDir walks upward from startDir to find the nearest .tally
// directory holding a config file. Returns "" if none is found.
func FindRepoDir(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		candidate := filepath.Join(dir, RepoDirName)
		for _, name := range []string{JSONFileName, TOMLFileName} {
			if _, err := os.Stat(filepath.Join(candidate, name)); err == nil {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, not found
			return ""
		}
		dir = parent
	}
}

// loadDir reads config.json then overlays config.toml from dir.
// Missing files yield a zero-valued config (not defaults).
func loadDir(dir string) (*Config, error) {
	jsonCfg, err := loadJSONRaw(filepath.Join(dir, JSONFileName))
	if err != nil {
		return nil, err
	}
	tomlCfg, err := loadTOMLRaw(filepath.Join(dir, TOMLFileName))
	if err != nil {
		return nil, err
	}
	return Merge(jsonCfg, tomlCfg), nil
}

// loadJSONRaw loads configuration from a JSON file.
func loadJSONRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist, return zero config
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadTOMLRaw loads configuration from a TOML file.
func loadTOMLRaw(configPath string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{BaseDir: base.BaseDir}
	if overlay.BaseDir != "" {
		result.BaseDir = overlay.BaseDir
	}

	// Scalars: overlay wins if non-zero, else base
	result.DataFile = mergeString(base.DataFile, overlay.DataFile)
	result.DBFile = mergeString(base.DBFile, overlay.DBFile)
	result.Backend = mergeString(base.Backend, overlay.Backend)
	result.LogLevel = mergeString(base.LogLevel, overlay.LogLevel)
	result.LogFormat = mergeString(base.LogFormat, overlay.LogFormat)

	result.MaxTasks = overlay.MaxTasks
	if result.MaxTasks == 0 {
		result.MaxTasks = base.MaxTasks
	}

	// Booleans: overlay wins if true, else base
	result.LooseDates = base.LooseDates || overlay.LooseDates
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func mergeString(base, overlay string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
