package workspace

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

// Update applies ev to s and returns the next state and the commands to run.
// It performs no I/O.
func Update(s State, ev Event) (State, []Command) {
	switch ev := ev.(type) {
	case Init:
		next := New(s.Options)
		// Results issued before the remount must never match a new scope.
		next.Selector.Gen = s.Selector.Gen + 1
		return next, []Command{CheckSession{}}
	case SessionChecked:
		return sessionChecked(s, ev)
	case LogoutRequested:
		if s.Session.Phase != PhaseAuthenticated {
			return s, nil
		}
		return s, []Command{Logout{}}
	case LoggedOut:
		return s, []Command{Reload{}}
	}

	if s.Session.Phase == PhaseAnonymous {
		return updateLogin(s, ev)
	}
	if s.Session.Phase != PhaseAuthenticated {
		return s, nil
	}

	switch ev := ev.(type) {
	case CatalogsLoaded:
		return catalogsLoaded(s, ev)
	case SchemasLoaded:
		return schemasLoaded(s, ev)
	case TablesLoaded:
		return tablesLoaded(s, ev)
	case CatalogSelected:
		return selectCatalog(s, ev.Name)
	case SchemaSelected:
		return selectSchema(s, ev.Name)
	case TableSelected:
		return selectTable(s, ev.Name)
	case PreviewLoaded:
		return previewLoaded(s, ev)
	case TableDescriptionLoaded:
		return tableDescriptionLoaded(s, ev)
	case ColumnMetadataLoaded:
		return columnMetadataLoaded(s, ev)
	case GenerateTableRequested:
		return generateTable(s)
	case TableGenerated:
		return tableGenerated(s, ev)
	case GenerateColumnsRequested:
		return generateColumns(s)
	case ColumnsGenerated:
		return columnsGenerated(s, ev)
	case TableDraftEdited:
		if s.TableSelected() && !s.Table.Saving {
			s.Table.Draft = ev.Text
		}
		return s, nil
	case ColumnDraftEdited:
		return editColumnDraft(s, ev)
	case ApproveTableRequested:
		return approveTable(s)
	case TableApproved:
		return tableApproved(s, ev)
	case ApproveColumnsRequested:
		return approveColumns(s)
	case ColumnsApproved:
		return columnsApproved(s, ev)
	case TabSelected:
		if ev.Tab == TabColumns && !s.Options.EnableColumnEnrichment {
			return s, nil
		}
		s.Tab = ev.Tab
		return s, nil
	case ErrorDismissed:
		s.Banner.Error = ""
		return s, nil
	case SuccessDismissed:
		s.Banner.Success = ""
		return s, nil
	case SuccessExpired:
		if ev.Token == s.Banner.SuccessToken {
			s.Banner.Success = ""
		}
		return s, nil
	}
	return s, nil
}

func sessionChecked(s State, ev SessionChecked) (State, []Command) {
	if s.Session.Phase != PhaseChecking {
		return s, nil
	}
	if ev.Err != nil || ev.User == nil {
		s.Session = Session{Phase: PhaseAnonymous}
		return s, nil
	}
	s.Session = Session{Phase: PhaseAuthenticated, User: ev.User}
	s.Loading = true
	return s, []Command{FetchCatalogs{Scope: s.Scope()}}
}

func updateLogin(s State, ev Event) (State, []Command) {
	switch ev := ev.(type) {
	case UsernameChanged:
		s.Login.Username = ev.Value
	case PasswordChanged:
		s.Login.Password = ev.Value
	case LoginSubmitted:
		if s.Login.Submitting {
			return s, nil
		}
		if strings.TrimSpace(s.Login.Username) == "" || s.Login.Password == "" {
			s.Login.Error = msgBlankCredentials
			return s, nil
		}
		s.Login.Submitting = true
		s.Login.Error = ""
		return s, []Command{SubmitLogin{Username: strings.TrimSpace(s.Login.Username), Password: s.Login.Password}}
	case LoginSucceeded:
		s.Login.Submitting = false
		s.Login.Password = ""
		return s, []Command{Reload{}}
	case LoginFailed:
		s.Login.Submitting = false
		s.Login.Error = loginErrorMessage(ev.Err)
	}
	return s, nil
}

// clearBelowCatalog resets everything that depends on the catalog.
func clearBelowCatalog(s State) State {
	s.Selector.Schema = Level{}
	return clearBelowSchema(s)
}

func clearBelowSchema(s State) State {
	s.Selector.Table = Level{}
	return clearTable(s)
}

// clearTable drops the preview, descriptions, drafts and banners of the selected table.
func clearTable(s State) State {
	s.Selector.Table.Selected = ""
	s.Selector.Gen++
	s.Preview = nil
	s.Table = TableDoc{}
	s.Columns = ColumnDoc{}
	s.Banner.Error = ""
	s.Banner.Success = ""
	return s
}

func selectCatalog(s State, name string) (State, []Command) {
	s = clearBelowCatalog(s)
	s.Selector.Catalog.Selected = name
	if name == "" {
		return s, nil
	}
	s.Loading = true
	return s, []Command{FetchSchemas{Scope: s.Scope()}}
}

func selectSchema(s State, name string) (State, []Command) {
	if s.Selector.Catalog.Selected == "" {
		return s, nil
	}
	s = clearBelowSchema(s)
	s.Selector.Schema.Selected = name
	if name == "" {
		return s, nil
	}
	s.Loading = true
	return s, []Command{FetchTables{Scope: s.Scope()}}
}

func selectTable(s State, name string) (State, []Command) {
	if s.Selector.Schema.Selected == "" {
		return s, nil
	}
	s = clearTable(s)
	s.Selector.Table.Selected = name
	if name == "" {
		return s, nil
	}
	if !s.Options.EnableColumnEnrichment {
		s.Tab = TabTable
	}
	scope := s.Scope()
	s.Loading = true
	cmds := []Command{
		FetchPreview{Scope: scope, Limit: s.Options.PreviewLimit},
		FetchTableDescription{Scope: scope},
	}
	if s.Options.EnableColumnEnrichment {
		cmds = append(cmds, FetchColumnMetadata{Scope: scope})
	}
	return s, cmds
}

func catalogsLoaded(s State, ev CatalogsLoaded) (State, []Command) {
	s.Loading = false
	if ev.Scope != s.Scope() {
		return s, nil
	}
	if ev.Err != nil {
		s.Selector.Catalog = Level{}
		s.Banner.Error = loadFailed("catalogs", ev.Err)
		return s, nil
	}
	s.Selector.Catalog.Options = ev.Catalogs
	if len(ev.Catalogs) == 0 {
		return s, nil
	}
	return selectCatalog(s, ev.Catalogs[0])
}

func schemasLoaded(s State, ev SchemasLoaded) (State, []Command) {
	s.Loading = false
	if ev.Scope != s.Scope() {
		return s, nil
	}
	if ev.Err != nil {
		s.Selector.Schema = Level{}
		s.Banner.Error = loadFailed("schemas", ev.Err)
		return s, nil
	}
	s.Selector.Schema.Options = ev.Schemas
	if len(ev.Schemas) == 0 {
		return s, nil
	}
	return selectSchema(s, ev.Schemas[0])
}

// tablesLoaded never auto-selects; the table stays on the placeholder.
func tablesLoaded(s State, ev TablesLoaded) (State, []Command) {
	s.Loading = false
	if ev.Scope != s.Scope() {
		return s, nil
	}
	if ev.Err != nil {
		s.Selector.Table = Level{}
		s.Banner.Error = loadFailed("tables", ev.Err)
		return s, nil
	}
	s.Selector.Table.Options = ev.Tables
	return s, nil
}

func previewLoaded(s State, ev PreviewLoaded) (State, []Command) {
	s.Loading = false
	if ev.Scope != s.Scope() {
		return s, nil
	}
	if ev.Err != nil {
		s.Preview = nil
		s.Banner.Error = loadFailed("preview", ev.Err)
		return s, nil
	}
	s.Preview = ev.Preview
	return s, nil
}

func tableDescriptionLoaded(s State, ev TableDescriptionLoaded) (State, []Command) {
	if ev.Scope != s.Scope() {
		return s, nil
	}
	if ev.Err != nil {
		s.Banner.Error = loadFailed("table description", ev.Err)
		return s, nil
	}
	s.Table.Loaded = true
	s.Table.Current = nil
	s.Table.IsMissing = true
	if ev.Description != nil {
		s.Table.Current = ev.Description.CurrentDescription
		s.Table.IsMissing = ev.Description.IsMissing
	}
	return s, nil
}

func columnMetadataLoaded(s State, ev ColumnMetadataLoaded) (State, []Command) {
	if ev.Scope != s.Scope() {
		return s, nil
	}
	if ev.Err != nil {
		s.Banner.Error = loadFailed("column metadata", ev.Err)
		return s, nil
	}
	s.Columns.Loaded = true
	s.Columns.Columns = ev.Columns
	return s, nil
}

func generateTable(s State) (State, []Command) {
	if !s.TableSelected() {
		s.Banner.Error = msgSelectTable
		return s, nil
	}
	if s.Table.Busy() {
		return s, nil
	}
	s.Table.Generating = true
	s.Banner.Error = ""
	return s, []Command{GenerateTable{Scope: s.Scope()}}
}

func tableGenerated(s State, ev TableGenerated) (State, []Command) {
	if ev.Scope != s.Scope() {
		return s, nil
	}
	s.Table.Generating = false
	if ev.Err != nil {
		s.Banner.Error = ErrorMessage(ev.Err)
		return s, nil
	}
	s.Table.Draft = ev.Description
	return s, nil
}

func generateColumns(s State) (State, []Command) {
	if !s.Options.EnableColumnEnrichment {
		return s, nil
	}
	if !s.TableSelected() {
		s.Banner.Error = msgSelectTable
		return s, nil
	}
	if s.Columns.Busy() {
		return s, nil
	}
	if s.Columns.MissingCount() == 0 {
		s.Banner.Error = msgNoMissingColumns
		return s, nil
	}
	s.Columns.Generating = true
	s.Banner.Error = ""
	return s, []Command{GenerateColumns{Scope: s.Scope()}}
}

func columnsGenerated(s State, ev ColumnsGenerated) (State, []Command) {
	if ev.Scope != s.Scope() {
		return s, nil
	}
	s.Columns.Generating = false
	if ev.Err != nil {
		s.Banner.Error = ErrorMessage(ev.Err)
		return s, nil
	}
	seen := make(map[string]bool, len(ev.Columns))
	drafts := make([]ColumnDraft, 0, len(ev.Columns))
	for _, col := range ev.Columns {
		if seen[col.Name] {
			s.Banner.Error = fmt.Sprintf(msgDuplicateGenerated, col.Name)
			return s, nil
		}
		seen[col.Name] = true
		drafts = append(drafts, ColumnDraft{Name: col.Name, Text: col.Description})
	}
	s.Columns.Drafts = drafts
	return s, nil
}

// editColumnDraft updates a column's draft, starting one for a known column
// that has none yet.
func editColumnDraft(s State, ev ColumnDraftEdited) (State, []Command) {
	if !s.TableSelected() {
		return s, nil
	}
	drafts := make([]ColumnDraft, len(s.Columns.Drafts), len(s.Columns.Drafts)+1)
	copy(drafts, s.Columns.Drafts)
	for i := range drafts {
		if drafts[i].Name == ev.Name {
			drafts[i].Text = ev.Text
			s.Columns.Drafts = drafts
			return s, nil
		}
	}
	if !hasColumn(s.Columns.Columns, ev.Name) {
		return s, nil
	}
	s.Columns.Drafts = append(drafts, ColumnDraft{Name: ev.Name, Text: ev.Text})
	return s, nil
}

func hasColumn(cols []models.ColumnMetadata, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}

func approveTable(s State) (State, []Command) {
	if !s.TableSelected() {
		s.Banner.Error = msgSelectTable
		return s, nil
	}
	if s.Table.Busy() {
		return s, nil
	}
	if strings.TrimSpace(s.Table.Draft) == "" {
		s.Banner.Error = msgEmptyDescription
		return s, nil
	}
	if models.IsMissingDescription(&s.Table.Draft) {
		s.Banner.Error = msgPlaceholderDescription
		return s, nil
	}
	s.Table.Saving = true
	s.Banner.Error = ""
	return s, []Command{SaveTableDescription{Scope: s.Scope(), Text: s.Table.Draft}}
}

func tableApproved(s State, ev TableApproved) (State, []Command) {
	if ev.Scope != s.Scope() {
		return s, nil
	}
	s.Table.Saving = false
	if ev.Err != nil {
		s.Banner.Error = ErrorMessage(ev.Err)
		return s, nil
	}
	text := ev.Text
	s.Table.Current = &text
	s.Table.IsMissing = models.IsMissingDescription(&text)
	if s.Table.Draft == ev.Text {
		s.Table.Draft = ""
	}
	return showSuccess(s, msgTableUpdated)
}

func approveColumns(s State) (State, []Command) {
	if !s.Options.EnableColumnEnrichment {
		return s, nil
	}
	if !s.TableSelected() {
		s.Banner.Error = msgSelectTable
		return s, nil
	}
	if s.Columns.Busy() {
		return s, nil
	}
	descriptions := s.Columns.Approvable()
	if len(descriptions) == 0 {
		s.Banner.Error = msgNoColumnDrafts
		return s, nil
	}
	for _, draft := range s.Columns.Drafts {
		text, ok := descriptions[draft.Name]
		if ok && models.IsMissingDescription(&text) {
			s.Banner.Error = fmt.Sprintf(msgPlaceholderColumn, draft.Name)
			return s, nil
		}
	}
	s.Columns.Saving = true
	s.Banner.Error = ""
	return s, []Command{SaveColumnDescriptions{Scope: s.Scope(), Descriptions: descriptions}}
}

func columnsApproved(s State, ev ColumnsApproved) (State, []Command) {
	if ev.Scope != s.Scope() {
		return s, nil
	}
	s.Columns.Saving = false
	if ev.Err != nil {
		s.Banner.Error = ErrorMessage(ev.Err)
		return s, nil
	}
	s.Columns.Drafts = unsavedDrafts(s.Columns.Drafts, ev.Descriptions)
	s, cmds := showSuccess(s, msgColumnsUpdated)
	return s, append(cmds, FetchColumnMetadata{Scope: s.Scope()})
}

func showSuccess(s State, msg string) (State, []Command) {
	s.Banner.Error = ""
	s.Banner.Success = msg
	s.Banner.SuccessToken++
	return s, []Command{ClearSuccessAfter{Token: s.Banner.SuccessToken, Delay: s.Options.SuccessDelay}}
}

// unsavedDrafts keeps the non-blank drafts whose text differs from what was saved.
func unsavedDrafts(drafts []ColumnDraft, saved map[string]string) []ColumnDraft {
	var kept []ColumnDraft
	for _, d := range drafts {
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		if text, ok := saved[d.Name]; ok && text == d.Text {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}
