// Package workspace holds the client-side state of the enrichment workspace:
// the session gate, the login form, the catalog/schema/table selector and the
// draft/approve workflow for table and column descriptions.
//
// State changes only through Update, a pure function from (State, Event) to
// the next State plus the Commands to run. A Runner performs the commands
// against a Backend and feeds the resulting events back through a Store.
package workspace

import (
	"strings"
	"time"

	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

const (
	// DefaultPreviewLimit is the number of rows fetched for a table preview.
	DefaultPreviewLimit = 100
	// DefaultSuccessDelay is how long a success banner stays up.
	DefaultSuccessDelay = 3 * time.Second
)

// Phase is the state of the session gate.
type Phase int

const (
	PhaseChecking Phase = iota
	PhaseAnonymous
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseChecking:
		return "checking"
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Tab selects which description editor is shown.
type Tab int

const (
	TabTable Tab = iota
	TabColumns
)

// Options configure a workspace. The zero value is completed by New.
type Options struct {
	EnableColumnEnrichment bool
	PreviewLimit           int
	SuccessDelay           time.Duration
}

// Session is the session gate.
type Session struct {
	Phase Phase
	User  *models.User
}

// Login is the credential form.
type Login struct {
	Username   string
	Password   string
	Submitting bool
	Error      string
}

// Level is one level of the cascading selector.
type Level struct {
	Options  []string
	Selected string
}

// Scope identifies the selection a request was issued for. Gen increases on
// every selection change, so a result whose Scope differs from the current
// one belongs to an older selection.
type Scope struct {
	Catalog string
	Schema  string
	Table   string
	Gen     uint64
}

// Ref returns the table reference of the scope.
func (s Scope) Ref() models.TableRef {
	return models.TableRef{Catalog: s.Catalog, Schema: s.Schema, Table: s.Table}
}

// Selector is the catalog -> schema -> table chain.
type Selector struct {
	Catalog Level
	Schema  Level
	Table   Level
	Gen     uint64
}

// Scope returns the current selection.
func (s Selector) Scope() Scope {
	return Scope{
		Catalog: s.Catalog.Selected,
		Schema:  s.Schema.Selected,
		Table:   s.Table.Selected,
		Gen:     s.Gen,
	}
}

// TableDoc is the table description and its pending draft.
type TableDoc struct {
	Current    *string
	IsMissing  bool
	Loaded     bool
	Draft      string
	Generating bool
	Saving     bool
}

// Busy reports whether a generate or save is in flight.
func (d TableDoc) Busy() bool { return d.Generating || d.Saving }

// ColumnDraft is a pending description for one column.
type ColumnDraft struct {
	Name string
	Text string
}

// ColumnDoc is the column metadata of the selected table and pending drafts.
type ColumnDoc struct {
	Columns    []models.ColumnMetadata
	Loaded     bool
	Drafts     []ColumnDraft
	Generating bool
	Saving     bool
}

// Busy reports whether a generate or save is in flight.
func (d ColumnDoc) Busy() bool { return d.Generating || d.Saving }

// MissingCount returns the number of columns without a usable description.
func (d ColumnDoc) MissingCount() int {
	n := 0
	for _, c := range d.Columns {
		if c.IsMissing {
			n++
		}
	}
	return n
}

// Draft returns the draft text for a column.
func (d ColumnDoc) Draft(name string) (string, bool) {
	for _, draft := range d.Drafts {
		if draft.Name == name {
			return draft.Text, true
		}
	}
	return "", false
}

// Approvable returns the non-blank drafts keyed by column name.
func (d ColumnDoc) Approvable() map[string]string {
	out := make(map[string]string)
	for _, draft := range d.Drafts {
		if strings.TrimSpace(draft.Text) != "" {
			out[draft.Name] = draft.Text
		}
	}
	return out
}

// Banner holds the page-level error and success messages.
type Banner struct {
	Error   string
	Success string
	// SuccessToken identifies the current success message for its expiry timer.
	SuccessToken uint64
}

// State is the whole workspace.
type State struct {
	Options  Options
	Session  Session
	Login    Login
	Selector Selector
	// Loading is shared by the selector fetches and the preview. Concurrent
	// loads clear it as each finishes.
	Loading bool
	Preview *models.TablePreview
	Table   TableDoc
	Columns ColumnDoc
	Tab     Tab
	Banner  Banner
}

// New returns the initial state for opts.
func New(opts Options) State {
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = DefaultPreviewLimit
	}
	if opts.SuccessDelay <= 0 {
		opts.SuccessDelay = DefaultSuccessDelay
	}
	return State{
		Options: opts,
		Session: Session{Phase: PhaseChecking},
	}
}

// Scope returns the current selection.
func (s State) Scope() Scope { return s.Selector.Scope() }

// TableSelected reports whether a table is selected.
func (s State) TableSelected() bool { return s.Selector.Table.Selected != "" }
