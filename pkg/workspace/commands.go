package workspace

import "time"

// Command is a side effect requested by Update.
type Command interface {
	isCommand()
}

type CheckSession struct{}

type SubmitLogin struct {
	Username string
	Password string
}

type Logout struct{}

// Reload re-mounts the workspace so the session is derived again.
type Reload struct{}

type FetchCatalogs struct{ Scope Scope }

type FetchSchemas struct{ Scope Scope }

type FetchTables struct{ Scope Scope }

type FetchPreview struct {
	Scope Scope
	Limit int
}

type FetchTableDescription struct{ Scope Scope }

type FetchColumnMetadata struct{ Scope Scope }

type GenerateTable struct{ Scope Scope }

type GenerateColumns struct{ Scope Scope }

type SaveTableDescription struct {
	Scope Scope
	Text  string
}

type SaveColumnDescriptions struct {
	Scope        Scope
	Descriptions map[string]string
}

// ClearSuccessAfter fires SuccessExpired{Token} after Delay.
type ClearSuccessAfter struct {
	Token uint64
	Delay time.Duration
}

func (CheckSession) isCommand()           {}
func (SubmitLogin) isCommand()            {}
func (Logout) isCommand()                 {}
func (Reload) isCommand()                 {}
func (FetchCatalogs) isCommand()          {}
func (FetchSchemas) isCommand()           {}
func (FetchTables) isCommand()            {}
func (FetchPreview) isCommand()           {}
func (FetchTableDescription) isCommand()  {}
func (FetchColumnMetadata) isCommand()    {}
func (GenerateTable) isCommand()          {}
func (GenerateColumns) isCommand()        {}
func (SaveTableDescription) isCommand()   {}
func (SaveColumnDescriptions) isCommand() {}
func (ClearSuccessAfter) isCommand()      {}
