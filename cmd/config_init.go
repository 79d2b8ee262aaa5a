/*
Copyright © 2024 sunerpy <nkuzhangshn@gmail.com>
Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:
The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.
THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// configCmd groups configuration-management subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the working directory and configuration file",
}

// configInitCmd creates the directories the daemon expects to find on
// first run, mirroring the teacher's chekcAndInitDownloadPath shape.
var configInitCmd = &cobra.Command{
	Use:     "init",
	Short:   "Create the ~/.mlm working directory",
	Long:    "Create ~/.mlm and its data subdirectory so the daemon has somewhere to store its database before a config.toml exists.",
	Example: `  mlm config init`,
	Run:     initWorkDir,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}

func checkAndInitDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
		color.Green("created directory: %s", dir)
	}
	return nil
}

func initWorkDir(cmd *cobra.Command, args []string) {
	home, err := os.UserHomeDir()
	if err != nil {
		color.Red("could not resolve home directory: %v", err)
		os.Exit(1)
	}
	workDir := filepath.Join(home, ".mlm")
	if err := checkAndInitDir(workDir); err != nil {
		color.Red("init failed: %v", err)
		os.Exit(1)
	}
	if err := checkAndInitDir(filepath.Join(workDir, "data")); err != nil {
		color.Red("init failed: %v", err)
		os.Exit(1)
	}
	color.Green("working directory ready — add %s/config.toml and run `mlm run`", workDir)
}
