package workspace

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

// Backend is the API the workspace talks to. *client.Client implements it.
type Backend interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	ListCatalogs(ctx context.Context) ([]string, error)
	ListSchemas(ctx context.Context, catalog string) ([]string, error)
	ListTables(ctx context.Context, catalog, schema string) ([]models.TableInfo, error)
	PreviewTable(ctx context.Context, ref models.TableRef, limit int) (*models.TablePreview, error)
	GetTableDescription(ctx context.Context, ref models.TableRef) (*models.TableDescription, error)
	GetColumnMetadata(ctx context.Context, ref models.TableRef) ([]models.ColumnMetadata, error)
	GenerateTableDescription(ctx context.Context, ref models.TableRef) (string, error)
	GenerateColumnDescriptions(ctx context.Context, ref models.TableRef) ([]models.GeneratedColumnDescription, error)
	UpdateTableDescription(ctx context.Context, ref models.TableRef, description string) error
	UpdateColumnDescriptions(ctx context.Context, ref models.TableRef, descriptions map[string]string) error
}

// CommandRunner performs the commands returned by Update.
type CommandRunner interface {
	Run(cmd Command)
}

// Runner runs each command on its own goroutine against a Backend and
// dispatches the resulting event. Commands are never cancelled individually;
// cancelling ctx abandons all of them.
type Runner struct {
	ctx      context.Context
	backend  Backend
	dispatch func(Event)
	logger   *zap.Logger
}

// NewRunner creates a Runner that reports results through dispatch.
func NewRunner(ctx context.Context, backend Backend, dispatch func(Event), logger *zap.Logger) *Runner {
	return &Runner{
		ctx:      ctx,
		backend:  backend,
		dispatch: dispatch,
		logger:   logger.Named("workspace-runner"),
	}
}

// Run starts cmd and returns immediately.
func (r *Runner) Run(cmd Command) {
	if timer, ok := cmd.(ClearSuccessAfter); ok {
		time.AfterFunc(timer.Delay, func() {
			r.dispatch(SuccessExpired{Token: timer.Token})
		})
		return
	}
	go func() {
		ev := r.execute(r.ctx, cmd)
		if ev == nil {
			return
		}
		if r.ctx.Err() != nil {
			r.logger.Debug("Dropping result after shutdown")
			return
		}
		r.dispatch(ev)
	}()
}

// execute performs cmd synchronously and returns the event describing its outcome.
func (r *Runner) execute(ctx context.Context, cmd Command) Event {
	switch cmd := cmd.(type) {
	case CheckSession:
		user, err := r.backend.Me(ctx)
		return SessionChecked{User: user, Err: err}
	case SubmitLogin:
		user, err := r.backend.Login(ctx, cmd.Username, cmd.Password)
		if err != nil {
			r.logger.Info("Login failed", zap.String("username", cmd.Username), zap.Error(err))
			return LoginFailed{Err: err}
		}
		return LoginSucceeded{User: user}
	case Logout:
		err := r.backend.Logout(ctx)
		if err != nil {
			r.logger.Warn("Logout failed", zap.Error(err))
		}
		return LoggedOut{Err: err}
	case Reload:
		return Init{}
	case FetchCatalogs:
		catalogs, err := r.backend.ListCatalogs(ctx)
		r.logFailure("List catalogs", cmd.Scope, err)
		return CatalogsLoaded{Scope: cmd.Scope, Catalogs: catalogs, Err: err}
	case FetchSchemas:
		schemas, err := r.backend.ListSchemas(ctx, cmd.Scope.Catalog)
		r.logFailure("List schemas", cmd.Scope, err)
		return SchemasLoaded{Scope: cmd.Scope, Schemas: schemas, Err: err}
	case FetchTables:
		tables, err := r.backend.ListTables(ctx, cmd.Scope.Catalog, cmd.Scope.Schema)
		r.logFailure("List tables", cmd.Scope, err)
		return TablesLoaded{Scope: cmd.Scope, Tables: tableNames(tables), Err: err}
	case FetchPreview:
		preview, err := r.backend.PreviewTable(ctx, cmd.Scope.Ref(), cmd.Limit)
		r.logFailure("Preview table", cmd.Scope, err)
		return PreviewLoaded{Scope: cmd.Scope, Preview: preview, Err: err}
	case FetchTableDescription:
		desc, err := r.backend.GetTableDescription(ctx, cmd.Scope.Ref())
		r.logFailure("Get table description", cmd.Scope, err)
		return TableDescriptionLoaded{Scope: cmd.Scope, Description: desc, Err: err}
	case FetchColumnMetadata:
		cols, err := r.backend.GetColumnMetadata(ctx, cmd.Scope.Ref())
		r.logFailure("Get column metadata", cmd.Scope, err)
		return ColumnMetadataLoaded{Scope: cmd.Scope, Columns: cols, Err: err}
	case GenerateTable:
		desc, err := r.backend.GenerateTableDescription(ctx, cmd.Scope.Ref())
		r.logFailure("Generate table description", cmd.Scope, err)
		return TableGenerated{Scope: cmd.Scope, Description: desc, Err: err}
	case GenerateColumns:
		cols, err := r.backend.GenerateColumnDescriptions(ctx, cmd.Scope.Ref())
		r.logFailure("Generate column descriptions", cmd.Scope, err)
		return ColumnsGenerated{Scope: cmd.Scope, Columns: cols, Err: err}
	case SaveTableDescription:
		err := r.backend.UpdateTableDescription(ctx, cmd.Scope.Ref(), cmd.Text)
		r.logFailure("Update table description", cmd.Scope, err)
		return TableApproved{Scope: cmd.Scope, Text: cmd.Text, Err: err}
	case SaveColumnDescriptions:
		err := r.backend.UpdateColumnDescriptions(ctx, cmd.Scope.Ref(), cmd.Descriptions)
		r.logFailure("Update column descriptions", cmd.Scope, err)
		return ColumnsApproved{Scope: cmd.Scope, Descriptions: cmd.Descriptions, Err: err}
	default:
		r.logger.Error("Unknown command", zap.Any("command", cmd))
		return nil
	}
}

func (r *Runner) logFailure(op string, scope Scope, err error) {
	if err == nil {
		return
	}
	r.logger.Warn(op+" failed",
		zap.String("catalog", scope.Catalog),
		zap.String("schema", scope.Schema),
		zap.String("table", scope.Table),
		zap.Error(err))
}

func tableNames(tables []models.TableInfo) []string {
	if tables == nil {
		return nil
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}
