package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := DefaultConfig()
	if cfg.DataFile != def.DataFile {
		t.Errorf("DataFile = %q, want %q", cfg.DataFile, def.DataFile)
	}
	if cfg.Backend != "file" {
		t.Errorf("Backend = %q, want file", cfg.Backend)
	}
	if !cfg.StrictDates() {
		t.Error("StrictDates() = false, want true by default")
	}
	if cfg.MaxTasks != 0 {
		t.Errorf("MaxTasks = %d, want 0", cfg.MaxTasks)
	}
}

func TestLoad_SetsBaseDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseDir != dir {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, dir)
	}
	if got, want := cfg.ExportsDir(), filepath.Join(dir, "exports"); got != want {
		t.Errorf("ExportsDir() = %q, want %q", got, want)
	}
}

func TestLoad_OverridesFromJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, JSONFileName), `{
		"data_file": "custom/list.txt",
		"max_tasks": 100,
		"loose_dates": true,
		"allowed_paths": ["/tmp/exports"]
	}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataFile != "custom/list.txt" {
		t.Errorf("DataFile = %q", cfg.DataFile)
	}
	if cfg.MaxTasks != 100 {
		t.Errorf("MaxTasks = %d, want 100", cfg.MaxTasks)
	}
	if cfg.StrictDates() {
		t.Error("StrictDates() = true, want false")
	}
	if len(cfg.AllowedPaths) != 1 || cfg.AllowedPaths[0] != "/tmp/exports" {
		t.Errorf("AllowedPaths = %v", cfg.AllowedPaths)
	}
	// Untouched fields keep defaults
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_TOMLOverlaysJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, JSONFileName), `{"backend": "file", "max_tasks": 10, "disabled_tools": ["task_report"]}`)
	writeFile(t, filepath.Join(dir, TOMLFileName), `
backend = "sqlite"
log_format = "json"
disabled_tools = ["task_command"]
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("Backend = %q, want sqlite", cfg.Backend)
	}
	if cfg.MaxTasks != 10 {
		t.Errorf("MaxTasks = %d, want 10 from JSON", cfg.MaxTasks)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want both entries", cfg.DisabledTools)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, JSONFileName), `{not json`)

	if _, err := Load(dir); err == nil {
		t.Fatal("Load() expected error for invalid JSON")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, TOMLFileName), `backend = `)

	if _, err := Load(dir); err == nil {
		t.Fatal("Load() expected error for invalid TOML")
	}
}

func TestDataPath(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "home", "u", ".tally")

	cfg := DefaultConfig()
	if got, want := cfg.DataPath(base), filepath.Join(base, "data", "tasks.txt"); got != want {
		t.Errorf("DataPath() = %q, want %q", got, want)
	}

	cfg.Backend = "sqlite"
	if got, want := cfg.DataPath(base), filepath.Join(base, "data", "tasks.db"); got != want {
		t.Errorf("DataPath(sqlite) = %q, want %q", got, want)
	}

	abs := filepath.Join(t.TempDir(), "elsewhere.db")
	cfg.DBFile = abs
	if got := cfg.DataPath(base); got != abs {
		t.Errorf("DataPath(abs) = %q, want %q", got, abs)
	}
}

func TestLoadWithRepo_RepoOverridesGlobal(t *testing.T) {
	global := t.TempDir()
	writeFile(t, filepath.Join(global, JSONFileName), `{"max_tasks": 50, "allowed_paths": ["/a"]}`)

	project := t.TempDir()
	writeFile(t, filepath.Join(project, RepoDirName, TOMLFileName), `
max_tasks = 5
allowed_paths = ["/b", "/a"]
`)
	nested := filepath.Join(project, "src", "pkg")
	if err := os.MkdirAll(nested, 0700); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithRepo(global, nested)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.MaxTasks != 5 {
		t.Errorf("MaxTasks = %d, want 5 from repo", cfg.MaxTasks)
	}
	if len(cfg.AllowedPaths) != 2 {
		t.Errorf("AllowedPaths = %v, want deduplicated [/a /b]", cfg.AllowedPaths)
	}
}

func TestLoadWithRepo_NoRepo(t *testing.T) {
	global := t.TempDir()
	writeFile(t, filepath.Join(global, JSONFileName), `{"log_level": "debug"}`)

	cfg, err := LoadWithRepo(global, t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestFindRepoDir_Empty(t *testing.T) {
	if got := FindRepoDir(""); got != "" {
		t.Errorf("FindRepoDir(\"\") = %q", got)
	}
}

func TestMerge(t *testing.T) {
	base := &Config{Backend: "file", MaxTasks: 3, DisabledTools: []string{" a ", "b"}}
	overlay := &Config{Backend: "  ", LooseDates: true, DisabledTools: []string{"b", "c", ""}}

	got := Merge(base, overlay)
	if got.Backend != "file" {
		t.Errorf("Backend = %q, blank overlay should not win", got.Backend)
	}
	if got.MaxTasks != 3 {
		t.Errorf("MaxTasks = %d", got.MaxTasks)
	}
	if !got.LooseDates {
		t.Error("LooseDates should be true")
	}
	want := []string{"a", "b", "c"}
	if len(got.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", got.DisabledTools, want)
	}
	for i := range want {
		if got.DisabledTools[i] != want[i] {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, got.DisabledTools[i], want[i])
		}
	}
}
