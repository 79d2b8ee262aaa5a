package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sunerpy/mlm/internal/candidate"
	"github.com/sunerpy/mlm/internal/cleaner"
	"github.com/sunerpy/mlm/internal/folderlinker"
	"github.com/sunerpy/mlm/internal/grab"
	"github.com/sunerpy/mlm/internal/linker"
	"github.com/sunerpy/mlm/internal/linkfs"
	"github.com/sunerpy/mlm/internal/store"
	"github.com/sunerpy/mlm/internal/tracker"
)

// envPrefix is the viper automatic-environment-overlay prefix: a key like
// download.min_ratio can be overridden by MLM_CONF_DOWNLOAD_MIN_RATIO.
const envPrefix = "MLM_CONF"

// DirConf is the resolved set of on-disk paths the process uses, derived
// from the home directory plus whatever the config/env overrode.
type DirConf struct {
	HomeDir string
	WorkDir string
	DataDir string
	LogDir  string
}

// TrackerConfig carries the tracker credential and connection tuning.
type TrackerConfig struct {
	MAMID      string        `mapstructure:"mam_id"`
	BaseURL    string        `mapstructure:"base_url"`
	CDNBaseURL string        `mapstructure:"cdn_base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	ProxyURL   string        `mapstructure:"proxy_url"`
}

// WebConfig is the operator UI's bind address.
type WebConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig carries the economy knobs applied at admission time.
type DownloadConfig struct {
	MinRatio          float64 `mapstructure:"min_ratio"`
	UnsatBuffer       int64   `mapstructure:"unsat_buffer"`
	WedgeBuffer       int64   `mapstructure:"wedge_buffer"`
	AddTorrentsStopped bool   `mapstructure:"add_torrents_stopped"`
}

// IntervalsConfig carries the per-task scheduling periods (spec section
// 4.9's eight tasks). Unset entries fall back to DefaultIntervals.
type IntervalsConfig struct {
	LibraryCleaner  time.Duration `mapstructure:"clean_interval"`
	TorrentLinker   time.Duration `mapstructure:"link_interval"`
	FolderLinker    time.Duration `mapstructure:"import_interval"`
	Downloader      time.Duration `mapstructure:"download_interval"`
	LibraryMatcher  time.Duration `mapstructure:"match_interval"`
	AutograbSearch  time.Duration `mapstructure:"search_interval"`
	WishlistImport  time.Duration `mapstructure:"wishlist_interval"`
	SnatchlistSync  time.Duration `mapstructure:"snatchlist_interval"`
}

// DefaultIntervals are applied to any IntervalsConfig field left at zero.
var DefaultIntervals = IntervalsConfig{
	LibraryCleaner: time.Hour,
	TorrentLinker:  10 * time.Minute,
	FolderLinker:   10 * time.Minute,
	Downloader:     time.Minute,
	LibraryMatcher: time.Hour,
	AutograbSearch: 15 * time.Minute,
	WishlistImport: 30 * time.Minute,
	SnatchlistSync: time.Hour,
}

func (i IntervalsConfig) withDefaults() IntervalsConfig {
	d := DefaultIntervals
	if i.LibraryCleaner != 0 {
		d.LibraryCleaner = i.LibraryCleaner
	}
	if i.TorrentLinker != 0 {
		d.TorrentLinker = i.TorrentLinker
	}
	if i.FolderLinker != 0 {
		d.FolderLinker = i.FolderLinker
	}
	if i.Downloader != 0 {
		d.Downloader = i.Downloader
	}
	if i.LibraryMatcher != 0 {
		d.LibraryMatcher = i.LibraryMatcher
	}
	if i.AutograbSearch != 0 {
		d.AutograbSearch = i.AutograbSearch
	}
	if i.WishlistImport != 0 {
		d.WishlistImport = i.WishlistImport
	}
	if i.SnatchlistSync != 0 {
		d.SnatchlistSync = i.SnatchlistSync
	}
	return d
}

// PolicyConfig holds the boolean behaviour switches spec section 6 names.
type PolicyConfig struct {
	ExcludeNarratorInLibraryDir bool `mapstructure:"exclude_narrator_in_library_dir"`
}

// FiletypesConfig orders format preference for each media kind.
type FiletypesConfig struct {
	Audio []string `mapstructure:"audio_types"`
	Ebook []string `mapstructure:"ebook_types"`
	Music []string `mapstructure:"music_types"`
	Radio []string `mapstructure:"radio_types"`
}

// AutograbRule is one `[[autograb]]` table entry, mirroring
// internal/candidate.Rule's fields one-for-one.
type AutograbRule struct {
	Name                string   `mapstructure:"name"`
	Query               string   `mapstructure:"query"`
	Cost                string   `mapstructure:"cost"`
	Categories          []int    `mapstructure:"categories"`
	Languages           []int    `mapstructure:"languages"`
	MinSizeByte         uint64   `mapstructure:"min_size_byte"`
	MaxSizeByte         uint64   `mapstructure:"max_size_byte"`
	MinSeeders          *uint64  `mapstructure:"min_seeders"`
	FreeOnly            bool     `mapstructure:"free_only"`
	UnsatBuffer         *int64   `mapstructure:"unsat_buffer"`
	Category            string   `mapstructure:"category"`
	Tags                []string `mapstructure:"tags"`
	PreferredAudioTypes []string `mapstructure:"preferred_audio_types"`
	PreferredEbookTypes []string `mapstructure:"preferred_ebook_types"`
}

func (r AutograbRule) toRule() candidate.Rule {
	return candidate.Rule{
		Name:                r.Name,
		Query:               r.Query,
		Cost:                store.TorrentCost(r.Cost),
		Categories:          r.Categories,
		Languages:           r.Languages,
		MinSizeByte:         r.MinSizeByte,
		MaxSizeByte:         r.MaxSizeByte,
		MinSeeders:          r.MinSeeders,
		FreeOnly:            r.FreeOnly,
		UnsatBuffer:         r.UnsatBuffer,
		Category:            r.Category,
		Tags:                r.Tags,
		PreferredAudioTypes: r.PreferredAudioTypes,
		PreferredEbookTypes: r.PreferredEbookTypes,
	}
}

// SnatchlistRule configures one tracker-snatchlist sync: which client
// category the snatched rows are expected to end up under.
type SnatchlistRule struct {
	Name     string `mapstructure:"name"`
	Category string `mapstructure:"category"`
	// Kind selects which owned-torrent view to page through: "all"
	// (default), "seeding", or "leeching".
	Kind string `mapstructure:"kind"`
	// AddUnknownRows records owned torrents Store has never seen as
	// metadata-only rows instead of only refreshing known ones.
	AddUnknownRows bool `mapstructure:"add_unknown_rows"`
}

func (r SnatchlistRule) toRule() candidate.SnatchlistRule {
	kind := tracker.SnatchlistAll
	switch r.Kind {
	case "seeding":
		kind = tracker.SnatchlistSeeding
	case "leeching":
		kind = tracker.SnatchlistLeeching
	}
	return candidate.SnatchlistRule{Kind: kind, AddUnknownRow: r.AddUnknownRows}
}

// ListSource is one external wishlist table entry ([[goodreads_list]] or
// [[notion_list]]); the actual page/feed fetch is an external collaborator
// (see DESIGN.md), this only records the source's identity for List/ListItem
// bookkeeping.
type ListSource struct {
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	Category string `mapstructure:"category"`
}

// TagRule applies a client tag to grabbed torrents whose category matches.
type TagRule struct {
	Name     string `mapstructure:"name"`
	Category string `mapstructure:"category"`
	Tag      string `mapstructure:"tag"`
}

// ClientConfig is one `[[qbittorrent]]` table entry: connection details
// plus the optional Cleaner on_cleaned hook.
type ClientConfig struct {
	Name               string   `mapstructure:"name"`
	URL                string   `mapstructure:"url"`
	Username           string   `mapstructure:"username"`
	Password           string   `mapstructure:"password"`
	OnCleanedCategory  string   `mapstructure:"on_cleaned_category"`
	OnCleanedTags      []string `mapstructure:"on_cleaned_tags"`
}

// LibraryConfig is one `[[library]]` table entry: either rip-dir-rooted
// (folder import) or client-category-rooted (torrent-client import), or
// both at once.
type LibraryConfig struct {
	Name           string   `mapstructure:"name"`
	RipDir         string   `mapstructure:"rip_dir"`
	ClientCategory string   `mapstructure:"client_category"`
	LibraryDir     string   `mapstructure:"library_dir"`
	AudioTypes     []string `mapstructure:"audio_types"`
	EbookTypes     []string `mapstructure:"ebook_types"`
	LinkMethods    []string `mapstructure:"link_methods"`
}

func (l LibraryConfig) linkMethods() []linkfs.Method {
	if len(l.LinkMethods) == 0 {
		return []linkfs.Method{linkfs.MethodHardlink}
	}
	out := make([]linkfs.Method, len(l.LinkMethods))
	for i, m := range l.LinkMethods {
		out[i] = linkfs.Method(m)
	}
	return out
}

func (l LibraryConfig) toLinkerLibrary() linker.Library {
	return linker.Library{
		Name:           l.Name,
		RipDir:         l.RipDir,
		ClientCategory: l.ClientCategory,
		LibraryDir:     l.LibraryDir,
		AudioTypes:     l.AudioTypes,
		EbookTypes:     l.EbookTypes,
		LinkMethods:    l.linkMethods(),
	}
}

func (l LibraryConfig) toFolderLinkerLibrary() folderlinker.Library {
	return folderlinker.Library{
		Name:        l.Name,
		RipDir:      l.RipDir,
		LibraryDir:  l.LibraryDir,
		AudioTypes:  l.AudioTypes,
		EbookTypes:  l.EbookTypes,
		LinkMethods: l.linkMethods(),
	}
}

// PathMappingConfig is one save-path-to-library-root rewrite rule.
type PathMappingConfig struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// Config is the full decoded TOML configuration (plus MLM_CONF_ environment
// overlay), mirroring the teacher's mapstructure-tagged Config shape.
type Config struct {
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	Web       WebConfig       `mapstructure:"web"`
	Download  DownloadConfig  `mapstructure:"download"`
	Intervals IntervalsConfig `mapstructure:"intervals"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Filetypes FiletypesConfig `mapstructure:"filetypes"`

	IgnoreTorrents []string            `mapstructure:"ignore_torrents"`
	PathMappings   []PathMappingConfig `mapstructure:"path_mapping"`

	Autograb      []AutograbRule   `mapstructure:"autograb"`
	Snatchlist    []SnatchlistRule `mapstructure:"snatchlist"`
	GoodreadsList []ListSource     `mapstructure:"goodreads_list"`
	NotionList    []ListSource     `mapstructure:"notion_list"`
	Tag           []TagRule        `mapstructure:"tag"`
	Qbittorrent   []ClientConfig   `mapstructure:"qbittorrent"`
	Library       []LibraryConfig  `mapstructure:"library"`

	Zap Zap `mapstructure:"zap"`

	dirs DirConf
}

// Dirs returns the resolved on-disk paths computed at Load time.
func (c *Config) Dirs() DirConf { return c.dirs }

// Load reads cfgFile (or the default `$HOME/.mlm/config.toml` location when
// empty), overlays environment variables under the MLM_CONF_ prefix, and
// validates the result. Mirrors core/viper.go's initViper flow.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("config: resolve home dir: %w", err)
	}
	workDir := filepath.Join(home, workDirName)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigType("toml")
		v.AddConfigPath(workDir)
		v.SetConfigName("config")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Intervals = cfg.Intervals.withDefaults()
	cfg.dirs = DirConf{
		HomeDir: home,
		WorkDir: workDir,
		DataDir: filepath.Join(workDir, "data"),
		LogDir:  filepath.Join(workDir, cfg.Zap.directoryOrDefault()),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Validate applies the load-time checks spec section 7 requires ("Config
// errors at startup" must be fatal, never silently defaulted).
func (c *Config) Validate() error {
	if c.Tracker.MAMID == "" {
		return fmt.Errorf("tracker.mam_id is required")
	}
	seen := make(map[string]struct{}, len(c.Autograb))
	for _, r := range c.Autograb {
		if r.Name == "" {
			return fmt.Errorf("autograb rule missing name")
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("autograb rule %q declared more than once", r.Name)
		}
		seen[r.Name] = struct{}{}
		if r.Cost != "" {
			switch store.TorrentCost(r.Cost) {
			case store.CostRatio, store.CostPersonalFreeleech, store.CostGlobalFreeleech,
				store.CostVIP, store.CostUseWedge, store.CostTryWedge:
			default:
				return fmt.Errorf("autograb rule %q: unknown cost %q", r.Name, r.Cost)
			}
		}
	}
	libNames := make(map[string]struct{}, len(c.Library))
	for _, l := range c.Library {
		if l.Name == "" {
			return fmt.Errorf("library entry missing name")
		}
		if _, dup := libNames[l.Name]; dup {
			return fmt.Errorf("library %q declared more than once", l.Name)
		}
		libNames[l.Name] = struct{}{}
		if l.RipDir == "" && l.ClientCategory == "" {
			return fmt.Errorf("library %q: must set rip_dir, client_category, or both", l.Name)
		}
		if l.LibraryDir == "" {
			return fmt.Errorf("library %q: library_dir is required", l.Name)
		}
	}
	for _, t := range c.Tag {
		if t.Tag == "" {
			return fmt.Errorf("tag rule %q: tag is required", t.Name)
		}
	}
	return nil
}

// AutograbRules converts the configured [[autograb]] tables into the
// CandidateSelector's Rule type.
func (c *Config) AutograbRules() []candidate.Rule {
	out := make([]candidate.Rule, len(c.Autograb))
	for i, r := range c.Autograb {
		out[i] = r.toRule()
	}
	return out
}

// SnatchlistRules adapts every configured `[[snatchlist]]` table into
// candidate.SnatchlistRule. An empty table still yields one default rule
// (kind "all", no unknown-row insertion) so the snatchlist-refresh task
// always has something to run even with no explicit configuration.
func (c *Config) SnatchlistRules() []candidate.SnatchlistRule {
	if len(c.Snatchlist) == 0 {
		return []candidate.SnatchlistRule{{Kind: tracker.SnatchlistAll}}
	}
	out := make([]candidate.SnatchlistRule, len(c.Snatchlist))
	for i, r := range c.Snatchlist {
		out[i] = r.toRule()
	}
	return out
}

// TrackerClientConfig adapts the TOML tracker table into tracker.Config.
func (c *Config) TrackerClientConfig() tracker.Config {
	return tracker.Config{
		BaseURL:    c.Tracker.BaseURL,
		CDNBaseURL: c.Tracker.CDNBaseURL,
		MAMID:      c.Tracker.MAMID,
		Timeout:    c.Tracker.Timeout,
		ProxyURL:   c.Tracker.ProxyURL,
	}
}

// GrabConfig adapts the download economy table into grab.Config.
func (c *Config) GrabConfig() grab.Config {
	return grab.Config{
		MinRatio:          c.Download.MinRatio,
		AddTorrentsPaused: c.Download.AddTorrentsStopped,
	}
}

// LinkerConfig adapts the library tables into linker.Config.
func (c *Config) LinkerConfig() linker.Config {
	libs := make([]linker.Library, 0, len(c.Library))
	mappings := make([]linker.PathMapping, 0, len(c.PathMappings))
	for _, l := range c.Library {
		if l.ClientCategory != "" {
			libs = append(libs, l.toLinkerLibrary())
		}
	}
	for _, m := range c.PathMappings {
		mappings = append(mappings, linker.PathMapping{From: m.From, To: m.To})
	}
	return linker.Config{
		PathMappings:                mappings,
		Libraries:                   libs,
		AudioTypes:                  c.Filetypes.Audio,
		EbookTypes:                  c.Filetypes.Ebook,
		ExcludeNarratorInLibraryDir: c.Policy.ExcludeNarratorInLibraryDir,
	}
}

// FolderLinkerConfig adapts the rip-dir library tables into
// folderlinker.Config.
func (c *Config) FolderLinkerConfig() folderlinker.Config {
	libs := make([]folderlinker.Library, 0, len(c.Library))
	for _, l := range c.Library {
		if l.RipDir != "" {
			libs = append(libs, l.toFolderLinkerLibrary())
		}
	}
	return folderlinker.Config{
		Libraries:                   libs,
		AudioTypes:                  c.Filetypes.Audio,
		EbookTypes:                  c.Filetypes.Ebook,
		ExcludeNarratorInLibraryDir: c.Policy.ExcludeNarratorInLibraryDir,
	}
}

// CleanerConfig builds cleaner.Config from the first configured client's
// on_cleaned hook (see DESIGN.md: single-client assumption).
func (c *Config) CleanerConfig() cleaner.Config {
	cfg := cleaner.Config{PreferredFiletypes: append(append([]string{}, c.Filetypes.Audio...), c.Filetypes.Ebook...)}
	if len(c.Qbittorrent) > 0 {
		cl := c.Qbittorrent[0]
		cfg.OnCleaned = cleaner.OnCleaned{Category: cl.OnCleanedCategory, Tags: cl.OnCleanedTags}
	}
	return cfg
}
