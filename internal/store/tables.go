package store

import "time"

// Torrent is a torrent known to exist locally, either downloaded-to-client
// (IDIsHash=true, ID is the lowercase-hex info-hash) or folder-imported
// (IDIsHash=false, ID is an external identifier such as a purchased
// audiobook SKU).
type Torrent struct {
	ID         string `gorm:"primaryKey;size:128"`
	IDIsHash   bool
	MAMID      *uint64 `gorm:"index"`
	TitleSearch string `gorm:"index;size:512"`
	CreatedAt  time.Time `gorm:"index"`

	LibraryPath         *string
	LibraryFiles        []string `gorm:"serializer:json"`
	Linker              string
	Category            string
	SelectedAudioFormat *string
	SelectedEbookFormat *string
	Meta                TorrentMeta `gorm:"serializer:json"`

	ReplacedWithID *string
	ReplacedWithAt *time.Time

	LibraryMismatch *string // "relocate" | "no_library"
	ClientStatus    *string

	// ForeignIDs holds cross-system identifiers this Torrent is known
	// under in external collaborators (library-server adapter book id,
	// metadata-provider ids), e.g. {"abs": "...", "goodreads": "..."}.
	ForeignIDs map[string]string `gorm:"serializer:json"`

	// Grabber names the autograb rule or wishlist that produced this row,
	// propagated from SelectedTorrent.Grabber at grab time; the Grabbed
	// Event carries the same string.
	Grabber string

	RequestMetadataUpdate bool
}

func (Torrent) TableName() string { return "torrents" }

// TorrentCost tags the economy tier under which a torrent is acquired.
type TorrentCost string

const (
	CostRatio               TorrentCost = "ratio"
	CostPersonalFreeleech   TorrentCost = "personal_freeleech"
	CostGlobalFreeleech     TorrentCost = "global_freeleech"
	CostVIP                 TorrentCost = "vip"
	CostUseWedge            TorrentCost = "use_wedge"
	CostTryWedge            TorrentCost = "try_wedge"
)

// SelectedTorrent is the intent to acquire a specific tracker torrent.
type SelectedTorrent struct {
	MAMID       uint64 `gorm:"primaryKey"`
	DLLink      string
	Cost        TorrentCost
	UnsatBuffer *int64
	WedgeBuffer *int64
	Category    string
	Tags        []string `gorm:"serializer:json"`
	Grabber     string
	Meta        TorrentMeta `gorm:"serializer:json"`
	TitleSearch string      `gorm:"index;size:512"`
	CreatedAt   time.Time   `gorm:"index"`
	StartedAt   *time.Time
	RemovedAt   *time.Time
}

func (SelectedTorrent) TableName() string { return "selected_torrents" }

// Queued reports whether this row is still awaiting download.
func (s SelectedTorrent) Queued() bool { return s.StartedAt == nil && s.RemovedAt == nil }

// DuplicateTorrent is a tracker torrent that matched an already-linked
// library item and was not selected.
type DuplicateTorrent struct {
	MAMID       uint64 `gorm:"primaryKey"`
	DLLink      *string
	TitleSearch string      `gorm:"index;size:512"`
	Meta        TorrentMeta `gorm:"serializer:json"`
	CreatedAt   time.Time   `gorm:"index"`
	DuplicateOf *string
}

func (DuplicateTorrent) TableName() string { return "duplicate_torrents" }

// ErroredTorrentStage identifies which pipeline stage produced an
// ErroredTorrent row.
type ErroredTorrentStage string

const (
	StageGrabber ErroredTorrentStage = "grabber"
	StageLinker  ErroredTorrentStage = "linker"
	StageCleaner ErroredTorrentStage = "cleaner"
)

// ErroredTorrent is a persisted failure record, keyed by the stage that
// failed plus the entity id. A successful later pass of the same stage for
// the same entity id deletes the row.
type ErroredTorrent struct {
	ID        string `gorm:"primaryKey;size:192"` // "<stage>:<entity id>"
	Stage     ErroredTorrentStage
	EntityID  string
	Title     string
	Error     string
	Meta      *TorrentMeta `gorm:"serializer:json"`
	CreatedAt time.Time    `gorm:"index"`
}

func (ErroredTorrent) TableName() string { return "errored_torrents" }

// ErroredTorrentID formats the composite primary key for ErroredTorrent.
func ErroredTorrentID(stage ErroredTorrentStage, entityID string) string {
	return string(stage) + ":" + entityID
}

// EventKind tags which variant an Event row carries.
type EventKind string

const (
	EventGrabbed           EventKind = "grabbed"
	EventLinked            EventKind = "linked"
	EventCleaned           EventKind = "cleaned"
	EventUpdated           EventKind = "updated"
	EventRemovedFromTracker EventKind = "removed_from_tracker"
)

// Event is an append-only audit-log row. TorrentID and MAMID may dangle
// (refer to a Torrent/mam_id that no longer exists) if the operator
// removed the row later; lookups against them must tolerate a miss.
type Event struct {
	ID        string `gorm:"primaryKey;size:36"`
	Kind      EventKind
	TorrentID *string `gorm:"index"`
	MAMID     *uint64 `gorm:"index"`
	CreatedAt time.Time `gorm:"index"`

	// Payload fields, populated per Kind; unused fields stay zero.
	Grabber       string
	Cost          TorrentCost
	Wedged        bool
	Linker        string
	LibraryPath   string
	Files         []string `gorm:"serializer:json"`
	Diff          []string `gorm:"serializer:json"`
	UpdatedSource string
}

func (Event) TableName() string { return "events" }

// ListItemStatus is the per-entry torrent status cached for a wishlist.
type ListItemStatus string

const (
	ItemWanted    ListItemStatus = "wanted"
	ItemSelected  ListItemStatus = "selected"
	ItemExisting  ListItemStatus = "existing"
	ItemNotWanted ListItemStatus = "not_wanted"
)

// List is a cached external wishlist (goodreads list, notion list, ...).
type List struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string
	Kind      string // "goodreads" | "notion" | ...
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (List) TableName() string { return "lists" }

// ListItem is one entry of a List, with its reconciliation status against
// Store.
type ListItem struct {
	ID         string `gorm:"primaryKey;size:96"`
	ListID     string `gorm:"index"`
	Title      string
	Authors    []string `gorm:"serializer:json"`
	MediaType  MediaType
	Status     ListItemStatus
	SelectedID *uint64
	TorrentID  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ListItem) TableName() string { return "list_items" }

// ProcessConfig is the single-row process state table: it persists the
// live tracker session token across restarts (see TrackerClient's session
// lifecycle).
type ProcessConfig struct {
	ID            uint `gorm:"primaryKey"`
	TrackerCookie string
	CookieSetAt   time.Time
}

func (ProcessConfig) TableName() string { return "process_config" }
