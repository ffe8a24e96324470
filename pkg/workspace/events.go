package workspace

import "github.com/ekaya-inc/ekaya-enrich/pkg/models"

// Event is an input to Update: a user action or the result of a Command.
type Event interface {
	isEvent()
}

// Init mounts the workspace. It resets the state and checks the session.
type Init struct{}

// SessionChecked carries the result of CheckSession.
type SessionChecked struct {
	User *models.User
	Err  error
}

type UsernameChanged struct{ Value string }

type PasswordChanged struct{ Value string }

type LoginSubmitted struct{}

type LoginSucceeded struct{ User *models.User }

type LoginFailed struct{ Err error }

type LogoutRequested struct{}

// LoggedOut carries the result of Logout. The workspace reloads either way.
type LoggedOut struct{ Err error }

type CatalogsLoaded struct {
	Scope    Scope
	Catalogs []string
	Err      error
}

type SchemasLoaded struct {
	Scope   Scope
	Schemas []string
	Err     error
}

type TablesLoaded struct {
	Scope  Scope
	Tables []string
	Err    error
}

// CatalogSelected selects a catalog. An empty Name clears the selection.
type CatalogSelected struct{ Name string }

type SchemaSelected struct{ Name string }

type TableSelected struct{ Name string }

type PreviewLoaded struct {
	Scope   Scope
	Preview *models.TablePreview
	Err     error
}

type TableDescriptionLoaded struct {
	Scope       Scope
	Description *models.TableDescription
	Err         error
}

type ColumnMetadataLoaded struct {
	Scope   Scope
	Columns []models.ColumnMetadata
	Err     error
}

type GenerateTableRequested struct{}

type TableGenerated struct {
	Scope       Scope
	Description string
	Err         error
}

type GenerateColumnsRequested struct{}

type ColumnsGenerated struct {
	Scope   Scope
	Columns []models.GeneratedColumnDescription
	Err     error
}

type TableDraftEdited struct{ Text string }

type ColumnDraftEdited struct {
	Name string
	Text string
}

type ApproveTableRequested struct{}

type TableApproved struct {
	Scope Scope
	Text  string
	Err   error
}

type ApproveColumnsRequested struct{}

type ColumnsApproved struct {
	Scope        Scope
	Descriptions map[string]string
	Err          error
}

type TabSelected struct{ Tab Tab }

type ErrorDismissed struct{}

type SuccessDismissed struct{}

// SuccessExpired is fired by the ClearSuccessAfter timer.
type SuccessExpired struct{ Token uint64 }

func (Init) isEvent()                     {}
func (SessionChecked) isEvent()           {}
func (UsernameChanged) isEvent()          {}
func (PasswordChanged) isEvent()          {}
func (LoginSubmitted) isEvent()           {}
func (LoginSucceeded) isEvent()           {}
func (LoginFailed) isEvent()              {}
func (LogoutRequested) isEvent()          {}
func (LoggedOut) isEvent()                {}
func (CatalogsLoaded) isEvent()           {}
func (SchemasLoaded) isEvent()            {}
func (TablesLoaded) isEvent()             {}
func (CatalogSelected) isEvent()          {}
func (SchemaSelected) isEvent()           {}
func (TableSelected) isEvent()            {}
func (PreviewLoaded) isEvent()            {}
func (TableDescriptionLoaded) isEvent()   {}
func (ColumnMetadataLoaded) isEvent()     {}
func (GenerateTableRequested) isEvent()   {}
func (TableGenerated) isEvent()           {}
func (GenerateColumnsRequested) isEvent() {}
func (ColumnsGenerated) isEvent()         {}
func (TableDraftEdited) isEvent()         {}
func (ColumnDraftEdited) isEvent()        {}
func (ApproveTableRequested) isEvent()    {}
func (TableApproved) isEvent()            {}
func (ApproveColumnsRequested) isEvent()  {}
func (ColumnsApproved) isEvent()          {}
func (TabSelected) isEvent()              {}
func (ErrorDismissed) isEvent()           {}
func (SuccessDismissed) isEvent()         {}
func (SuccessExpired) isEvent()           {}
