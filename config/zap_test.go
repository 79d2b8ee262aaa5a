package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultZapInitLogger(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	lg, err := DefaultZapConfig.InitLogger()
	require.NoError(t, err)
	require.NotNil(t, lg)
	// ensure the log directory is created
	require.DirExists(t, filepath.Join(home, workDirName, DefaultZapConfig.Directory))
}

func TestZapEncodeLevelVariants(t *testing.T) {
	z := DefaultZapConfig
	z.EncodeLevel = "LowercaseLevelEncoder"
	if z.ZapEncodeLevel() == nil {
		t.Fatalf("nil encoder")
	}
	z.EncodeLevel = "LowercaseColorLevelEncoder"
	_ = z.ZapEncodeLevel()
	z.EncodeLevel = "CapitalLevelEncoder"
	_ = z.ZapEncodeLevel()
	z.EncodeLevel = "CapitalColorLevelEncoder"
	_ = z.ZapEncodeLevel()
	z.EncodeLevel = "unknown"
	_ = z.ZapEncodeLevel()
}
