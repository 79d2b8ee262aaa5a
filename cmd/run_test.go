package cmd

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/sunerpy/mlm/utils"
)

func TestAcquireLockOrExit_SecondCallWouldConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mlm.lock")
	lock := acquireLockOrExit(path)
	defer lock.Unlock()
	defer lock.File().Close()

	_, err := os.Stat(path)
	require.NoError(t, err)

	second, err := utils.NewLocker(path)
	require.NoError(t, err)
	defer second.File().Close()
	require.Error(t, second.Lock())
}

func TestRunCmdFunc_UpdateSearchTitleOneShot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	home := t.TempDir()
	t.Setenv("HOME", home)
	workDir := filepath.Join(home, ".mlm")
	require.NoError(t, os.MkdirAll(workDir, 0o755))

	toml := fmt.Sprintf(`
[tracker]
mam_id = "seed"
base_url = %q
`, srv.URL)
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "config.toml"), []byte(toml), 0o644))

	updateSearchTitle = true
	t.Cleanup(func() { updateSearchTitle = false })

	c := &cobra.Command{}
	c.Flags().BoolVar(&updateSearchTitle, "update-search-title", true, "")
	runCmdFunc(c, []string{})
}
