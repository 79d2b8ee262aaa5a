package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestInitWorkDir_CreatesDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	initWorkDir(&cobra.Command{}, []string{})

	dir := filepath.Join(home, ".mlm")
	_, err := os.Stat(dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "data"))
	require.NoError(t, err)
}

func TestCheckAndInitDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	require.NoError(t, checkAndInitDir(dir))
	require.NoError(t, checkAndInitDir(dir))
}
