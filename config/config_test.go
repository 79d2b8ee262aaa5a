package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleTOML = `
[tracker]
mam_id = "test-mam-id"

[download]
min_ratio = 1.0

[[autograb]]
name = "new-releases"
query = "category:audiobook"
cost = "ratio"

[[library]]
name = "qbit-library"
client_category = "audiobooks"
library_dir = "/library/audiobooks"
audio_types = ["m4b", "mp3"]
`

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesAutograbAndLibraryTables(t *testing.T) {
	path := writeConfigFile(t, sampleTOML)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "test-mam-id", cfg.Tracker.MAMID)
	require.Len(t, cfg.Autograb, 1)
	require.Equal(t, "new-releases", cfg.Autograb[0].Name)
	require.Len(t, cfg.Library, 1)
	require.Equal(t, "audiobooks", cfg.Library[0].ClientCategory)

	rules := cfg.AutograbRules()
	require.Len(t, rules, 1)
	require.Equal(t, "new-releases", rules[0].Name)

	linkerCfg := cfg.LinkerConfig()
	require.Len(t, linkerCfg.Libraries, 1)
	require.Equal(t, "qbit-library", linkerCfg.Libraries[0].Name)

	folderCfg := cfg.FolderLinkerConfig()
	require.Empty(t, folderCfg.Libraries)
}

func TestLoadRejectsMissingMAMID(t *testing.T) {
	path := writeConfigFile(t, "[download]\nmin_ratio = 1.0\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsDuplicateAutograbName(t *testing.T) {
	path := writeConfigFile(t, `
[tracker]
mam_id = "x"

[[autograb]]
name = "dup"
query = "a"

[[autograb]]
name = "dup"
query = "b"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsLibraryWithoutRoots(t *testing.T) {
	path := writeConfigFile(t, `
[tracker]
mam_id = "x"

[[library]]
name = "bad"
library_dir = "/library"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestIntervalsWithDefaults(t *testing.T) {
	var i IntervalsConfig
	d := i.withDefaults()
	require.Equal(t, DefaultIntervals, d)
}
