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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sunerpy/mlm/app"
	"github.com/sunerpy/mlm/internal/titlenorm"
	"github.com/sunerpy/mlm/scheduler"
	"github.com/sunerpy/mlm/utils"
)

var (
	updateSearchTitle bool
	runCmd            = &cobra.Command{
		Use:   "run",
		Short: "Run the daemon",
		Long: `Start the long-running reconciliation loop: autograb search, wishlist
import, download admission, torrent/folder linking, library cleanup, and
(with --update-search-title) a one-shot title_search rewrite instead.`,
		Example: `  mlm run
  mlm run --update-search-title`,
		Run: runCmdFunc,
	}
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&updateSearchTitle, "update-search-title", false,
		"rewrite every Torrent row's title_search and exit, per a new normalisation rule")
}

func acquireLockOrExit(lockFilePath string) utils.Locker {
	l, err := utils.NewLocker(lockFilePath)
	if err != nil {
		color.Red("could not create lock file: %v", err)
		os.Exit(1)
	}
	if err := l.Lock(); err != nil {
		color.Red("another instance is already running")
		os.Exit(1)
	}
	return l
}

func runCmdFunc(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := app.New(ctx, cfg)
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	if updateSearchTitle {
		changed, err := svc.Store.RewriteTitleSearch(ctx, titlenorm.Normalize)
		if err != nil {
			svc.Logger.Error("update-search-title failed", zap.Error(err))
			color.Red("Error: %v", err)
			os.Exit(1)
		}
		color.Green("rewrote title_search on %d row(s)", changed)
		return
	}

	lock := acquireLockOrExit("/tmp/mlm.lock")
	defer lock.Unlock()
	defer lock.File().Close()

	sched := scheduler.New(svc)
	sched.Start(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	svc.Logger.Warn("received shutdown signal, stopping")
	cancel()
	sched.Stop()
	color.Green("mlm exited cleanly")
}
