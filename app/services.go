// Package app wires every component's constructor together into one
// Services bundle. It exists so no package reaches for a process-wide
// singleton: cmd and scheduler both take a *Services and pass its fields
// down to each task's constructor, mirroring section 9a's resolved
// "explicit services, never global state" decision.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	glogger "gorm.io/gorm/logger"
	"moul.io/zapgorm2"

	"github.com/sunerpy/mlm/config"
	"github.com/sunerpy/mlm/internal/candidate"
	"github.com/sunerpy/mlm/internal/cleaner"
	"github.com/sunerpy/mlm/internal/folderlinker"
	"github.com/sunerpy/mlm/internal/grab"
	"github.com/sunerpy/mlm/internal/libraryserver"
	"github.com/sunerpy/mlm/internal/linker"
	"github.com/sunerpy/mlm/internal/store"
	"github.com/sunerpy/mlm/internal/tracker"
	"github.com/sunerpy/mlm/thirdpart/downloader"
	"github.com/sunerpy/mlm/thirdpart/downloader/qbit"
)

// Services is the one long-lived bundle every task's constructor is built
// from. Nothing in this repo reaches for a package variable instead.
type Services struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *store.Store
	Tracker *tracker.Client
	Client  downloader.Downloader
}

// New builds every shared collaborator in dependency order: logger, store,
// tracker session, torrent-client adapter. Grounded on core/init.go's
// InitRuntime sequence (log, then gorm-wrapped-in-zap store, then the
// session-bearing collaborators) but returning an explicit struct instead
// of populating global vars.
func New(ctx context.Context, cfg *config.Config) (*Services, error) {
	logger, err := cfg.Zap.InitLogger()
	if err != nil {
		return nil, fmt.Errorf("app: init logger: %w", err)
	}

	dirs := cfg.Dirs()
	if err := os.MkdirAll(dirs.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("app: create data dir: %w", err)
	}
	dbPath := filepath.Join(dirs.DataDir, "mlm.db")
	st, err := store.Open(dbPath, logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}

	tc, err := tracker.New(ctx, cfg.TrackerClientConfig(), st, logger.Named("tracker"))
	if err != nil {
		return nil, fmt.Errorf("app: init tracker client: %w", err)
	}

	client, err := newDownloaderClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("app: init torrent client: %w", err)
	}

	return &Services{
		Config:  cfg,
		Logger:  logger,
		Store:   st,
		Tracker: tc,
		Client:  client,
	}, nil
}

// newDownloaderClient wires the first configured [[qbittorrent]] entry. A
// config with no client table still returns (nil, nil): folder-only setups
// (FolderLinker/Cleaner) never touch a torrent client.
func newDownloaderClient(cfg *config.Config, logger *zap.Logger) (downloader.Downloader, error) {
	if len(cfg.Qbittorrent) == 0 {
		return nil, nil
	}
	qbit.SetLogger(logger.Named("qbit"))
	qc := cfg.Qbittorrent[0]
	client, err := qbit.NewQbitClient(qbit.NewQBitConfig(qc.URL, qc.Username, qc.Password), qc.Name)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GormLogger adapts Services' zap logger to gorm's logger.Interface the way
// core/init.go wraps it via zapgorm2, for any future direct *gorm.DB access
// outside of internal/store's own wrapping.
func (s *Services) GormLogger() zapgorm2.Logger {
	return zapgorm2.Logger{
		ZapLogger:     s.Logger,
		LogLevel:      glogger.Silent,
		SlowThreshold: 0,
	}
}

// Close releases the torrent-client connection. The Store's database
// handle is not closed here.
func (s *Services) Close() error {
	if s.Client != nil {
		return s.Client.Close()
	}
	return nil
}

// CandidateSelector builds the autograb/wishlist reconciliation component.
func (s *Services) CandidateSelector() *candidate.Selector {
	return candidate.New(s.Store, s.Tracker, s.Logger.Named("candidate"))
}

// Grabber builds the download admission controller.
func (s *Services) Grabber() *grab.Runner {
	return grab.New(s.Store, s.Tracker, s.Client, s.Config.GrabConfig(), s.Logger.Named("grab"))
}

// Linker builds the torrent-sourced library linker.
func (s *Services) Linker() *linker.Runner {
	return linker.New(s.Store, s.Tracker, s.Client, s.Config.LinkerConfig(), s.Logger.Named("linker"))
}

// FolderLinker builds the folder-import library linker.
func (s *Services) FolderLinker() *folderlinker.Runner {
	return folderlinker.New(s.Store, s.Config.FolderLinkerConfig(), s.Logger.Named("folderlinker"))
}

// Cleaner builds the library-deduplication pass.
func (s *Services) Cleaner() *cleaner.Runner {
	return cleaner.New(s.Store, s.Client, s.Config.CleanerConfig(), s.Logger.Named("cleaner"))
}

// LibraryMatcher builds the library-server matcher pass. No concrete
// library-server adapter ships in this repo, so this always runs with a
// nil Adapter today — wired as its own component so a future adapter
// only needs to be plugged in here.
func (s *Services) LibraryMatcher() *libraryserver.Runner {
	return libraryserver.New(s.Store, nil, s.Logger.Named("libraryserver"))
}
