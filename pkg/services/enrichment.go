package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/ekaya-enrich/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-enrich/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-enrich/pkg/llm"
	"github.com/ekaya-inc/ekaya-enrich/pkg/logging"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
	"github.com/ekaya-inc/ekaya-enrich/pkg/prompts"
)

const (
	// sampleFetchRows is how many rows are read to build generation context.
	sampleFetchRows = 20
	// sampleUseRows is how many of those rows feed sample values.
	sampleUseRows = 5
	// otherTablesLimit bounds the sibling tables shown as style context.
	otherTablesLimit = 10
)

// EnrichmentService reads, drafts and saves table and column descriptions.
type EnrichmentService interface {
	GetTableDescription(ctx context.Context, ref models.TableRef) (*models.TableDescription, error)
	GetColumnMetadata(ctx context.Context, ref models.TableRef) ([]models.ColumnMetadata, error)
	// GenerateTableDescription drafts a table description. Nothing is saved.
	GenerateTableDescription(ctx context.Context, ref models.TableRef) (string, error)
	// GenerateColumnDescriptions drafts descriptions for columns whose description is missing.
	// Nothing is saved. Returns an empty slice when no column is missing a description.
	GenerateColumnDescriptions(ctx context.Context, ref models.TableRef) ([]models.GeneratedColumnDescription, error)
	UpdateTableDescription(ctx context.Context, ref models.TableRef, description string) error
	// UpdateColumnDescriptions saves descriptions keyed by column name.
	UpdateColumnDescriptions(ctx context.Context, ref models.TableRef, descriptions map[string]string) error
}

// EnrichmentServiceConfig tunes generation and bounds each class of call.
type EnrichmentServiceConfig struct {
	Temperature     float64
	ReadTimeout     time.Duration
	GenerateTimeout time.Duration
	UpdateTimeout   time.Duration
}

// enrichmentTables is what the enrichment service needs from the warehouse.
type enrichmentTables interface {
	datasource.TableReader
	datasource.CommentWriter
}

type enrichmentService struct {
	tables    enrichmentTables
	llmClient llm.LLMClient
	cfg       EnrichmentServiceConfig
	logger    *zap.Logger
}

// NewEnrichmentService creates an enrichment service.
func NewEnrichmentService(tables datasource.Catalog, llmClient llm.LLMClient, cfg EnrichmentServiceConfig, logger *zap.Logger) EnrichmentService {
	return &enrichmentService{
		tables:    tables,
		llmClient: llmClient,
		cfg:       cfg,
		logger:    logger.Named("enrichment-service"),
	}
}

func (s *enrichmentService) GetTableDescription(ctx context.Context, ref models.TableRef) (*models.TableDescription, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	comment, err := withTimeout(ctx, s.cfg.ReadTimeout, func(ctx context.Context) (*string, error) {
		return s.tables.GetTableComment(ctx, ref)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read description of %s: %w", ref.FullName(), err)
	}

	return &models.TableDescription{
		CurrentDescription: comment,
		IsMissing:          models.IsMissingDescription(comment),
	}, nil
}

func (s *enrichmentService) GetColumnMetadata(ctx context.Context, ref models.TableRef) ([]models.ColumnMetadata, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	columns, err := withTimeout(ctx, s.cfg.ReadTimeout, func(ctx context.Context) ([]models.ColumnInfo, error) {
		return s.tables.DescribeColumns(ctx, ref)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", ref.FullName(), err)
	}

	metadata := make([]models.ColumnMetadata, 0, len(columns))
	for _, col := range columns {
		metadata = append(metadata, models.ColumnMetadata{
			Name:        col.Name,
			Type:        col.Type,
			Description: col.Comment,
			IsMissing:   models.IsMissingDescription(col.Comment),
		})
	}
	return metadata, nil
}

// tableContext is the warehouse context gathered before prompting.
type tableContext struct {
	columns      []models.ColumnInfo
	sampleRows   []map[string]any
	otherTables  []datasource.TableComment
	tableComment *string
}

// gatherContext reads columns and sample rows, plus sibling table comments when
// withSiblings is set and the table comment when withComment is set.
// Sibling and comment lookups are best effort.
func (s *enrichmentService) gatherContext(ctx context.Context, ref models.TableRef, withSiblings, withComment bool) (*tableContext, error) {
	tc := &tableContext{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		columns, err := s.tables.DescribeColumns(gctx, ref)
		if err != nil {
			return fmt.Errorf("failed to describe table: %w", err)
		}
		tc.columns = columns
		return nil
	})

	g.Go(func() error {
		rows, err := s.tables.SelectRows(gctx, ref, sampleFetchRows)
		if err != nil {
			return fmt.Errorf("failed to read sample rows: %w", err)
		}
		tc.sampleRows = rows.Rows
		if len(tc.sampleRows) > sampleUseRows {
			tc.sampleRows = tc.sampleRows[:sampleUseRows]
		}
		return nil
	})

	if withSiblings {
		g.Go(func() error {
			others, err := s.tables.ListTableComments(gctx, ref, otherTablesLimit)
			if err != nil {
				s.logger.Warn("Could not load other tables for context",
					zap.String("table", ref.FullName()),
					zap.String("error", logging.SanitizeError(err)))
				return nil
			}
			tc.otherTables = others
			return nil
		})
	}

	if withComment {
		g.Go(func() error {
			comment, err := s.tables.GetTableComment(gctx, ref)
			if err != nil {
				s.logger.Warn("Could not load table description for context",
					zap.String("table", ref.FullName()),
					zap.String("error", logging.SanitizeError(err)))
				return nil
			}
			tc.tableComment = comment
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tc, nil
}

func (s *enrichmentService) GenerateTableDescription(ctx context.Context, ref models.TableRef) (string, error) {
	if err := validateRef(ref); err != nil {
		return "", err
	}

	return withTimeout(ctx, s.cfg.GenerateTimeout, func(ctx context.Context) (string, error) {
		tc, err := s.gatherContext(ctx, ref, true, false)
		if err != nil {
			return "", err
		}

		others := make([]prompts.TableContext, 0, len(tc.otherTables))
		for _, t := range tc.otherTables {
			others = append(others, prompts.TableContext{Table: t.Table, Description: t.Description})
		}
		columns := make([]prompts.ColumnContext, 0, len(tc.columns))
		for _, col := range tc.columns {
			columns = append(columns, prompts.ColumnContext{
				Name:         col.Name,
				Type:         col.Type,
				Description:  col.Comment,
				SampleValues: prompts.SampleValues(tc.sampleRows, col.Name),
			})
		}

		prompt := prompts.BuildTableDescriptionPrompt(prompts.TableDescriptionInput{
			Catalog:     ref.Catalog,
			Schema:      ref.Schema,
			Table:       ref.Table,
			OtherTables: others,
			Columns:     columns,
		})

		result, err := s.llmClient.GenerateResponse(ctx, prompt, prompts.SystemMessage, s.cfg.Temperature)
		if err != nil {
			return "", s.llmError(err)
		}

		parsed, err := llm.ParseJSONResponse[prompts.TableDescriptionResponse](result.Content)
		if err == nil && strings.TrimSpace(parsed.TableDescription) != "" {
			return strings.TrimSpace(parsed.TableDescription), nil
		}

		// Models sometimes answer with plain prose; use it as the draft.
		raw := strings.TrimSpace(llm.CleanResponse(result.Content))
		if raw == "" {
			return "", fmt.Errorf("model returned an empty description")
		}
		s.logger.Debug("Table description response was not JSON, using raw text",
			zap.String("table", ref.FullName()),
			zap.String("response_preview", logging.TruncateString(result.Content, 200)))
		return raw, nil
	})
}

func (s *enrichmentService) GenerateColumnDescriptions(ctx context.Context, ref models.TableRef) ([]models.GeneratedColumnDescription, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	return withTimeout(ctx, s.cfg.GenerateTimeout, func(ctx context.Context) ([]models.GeneratedColumnDescription, error) {
		tc, err := s.gatherContext(ctx, ref, false, true)
		if err != nil {
			return nil, err
		}

		var documented, missing []prompts.ColumnContext
		missingNames := make(map[string]bool)
		for _, col := range tc.columns {
			if models.IsMissingDescription(col.Comment) {
				missingNames[col.Name] = true
				missing = append(missing, prompts.ColumnContext{
					Name:         col.Name,
					Type:         col.Type,
					SampleValues: prompts.SampleValues(tc.sampleRows, col.Name),
				})
				continue
			}
			documented = append(documented, prompts.ColumnContext{Name: col.Name, Type: col.Type, Description: col.Comment})
		}
		if len(missing) == 0 {
			return []models.GeneratedColumnDescription{}, nil
		}

		tableDescription := ""
		if tc.tableComment != nil {
			tableDescription = *tc.tableComment
		}
		prompt := prompts.BuildColumnDescriptionsPrompt(prompts.ColumnDescriptionInput{
			Catalog:          ref.Catalog,
			Schema:           ref.Schema,
			Table:            ref.Table,
			TableDescription: tableDescription,
			Documented:       documented,
			Missing:          missing,
		})

		result, err := s.llmClient.GenerateResponse(ctx, prompt, prompts.SystemMessage, s.cfg.Temperature)
		if err != nil {
			return nil, s.llmError(err)
		}

		parsed, err := llm.ParseJSONResponse[prompts.ColumnDescriptionResponse](result.Content)
		if err != nil {
			s.logger.Error("Failed to parse column descriptions",
				zap.String("table", ref.FullName()),
				zap.String("response_preview", logging.TruncateString(result.Content, 200)),
				zap.Error(err))
			return nil, fmt.Errorf("failed to parse column descriptions: %w", err)
		}

		generated := make([]models.GeneratedColumnDescription, 0, len(parsed.Columns))
		seen := make(map[string]bool)
		for _, col := range parsed.Columns {
			name := strings.TrimSpace(col.Name)
			description := strings.TrimSpace(string(col.Description))
			if !missingNames[name] || description == "" {
				s.logger.Debug("Dropping generated description",
					zap.String("table", ref.FullName()),
					zap.String("column", name))
				continue
			}
			if seen[name] {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateColumn, name)
			}
			seen[name] = true
			generated = append(generated, models.GeneratedColumnDescription{Name: name, Description: description})
		}

		s.logger.Info("Generated column descriptions",
			zap.String("table", ref.FullName()),
			zap.Int("missing", len(missing)),
			zap.Int("generated", len(generated)),
			zap.Int("total_tokens", result.TotalTokens))
		return generated, nil
	})
}

// llmError marks model timeouts as upstream timeouts.
func (s *enrichmentService) llmError(err error) error {
	if llm.IsTimeout(err) {
		return fmt.Errorf("%w: %w", apperrors.ErrUpstreamTimeout, err)
	}
	s.logger.Error("LLM request failed",
		zap.String("model", s.llmClient.GetModel()),
		zap.String("error_type", string(llm.GetErrorType(err))),
		zap.String("error", logging.SanitizeError(err)))
	return fmt.Errorf("LLM request failed: %w", err)
}

func (s *enrichmentService) UpdateTableDescription(ctx context.Context, ref models.TableRef, description string) error {
	if err := validateRef(ref); err != nil {
		return err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return apperrors.ErrEmptyDescription
	}
	if models.IsMissingDescription(&description) {
		return apperrors.ErrWeakDescription
	}

	_, err := withTimeout(ctx, s.cfg.UpdateTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.tables.SetTableComment(ctx, ref, description)
	})
	if err != nil {
		return fmt.Errorf("failed to update description of %s: %w", ref.FullName(), err)
	}

	s.logger.Info("Updated table description", zap.String("table", ref.FullName()))
	return nil
}

func (s *enrichmentService) UpdateColumnDescriptions(ctx context.Context, ref models.TableRef, descriptions map[string]string) error {
	if err := validateRef(ref); err != nil {
		return err
	}
	if len(descriptions) == 0 {
		return fmt.Errorf("%w: no column descriptions provided", apperrors.ErrInvalidRequest)
	}

	names := make([]string, 0, len(descriptions))
	for name, text := range descriptions {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: column %s", apperrors.ErrEmptyDescription, name)
		}
		if models.IsMissingDescription(&text) {
			return fmt.Errorf("%w: column %s", apperrors.ErrWeakDescription, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	_, err := withTimeout(ctx, s.cfg.UpdateTimeout, func(ctx context.Context) (struct{}, error) {
		columns, err := s.tables.DescribeColumns(ctx, ref)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to describe table: %w", err)
		}
		known := make(map[string]bool, len(columns))
		for _, col := range columns {
			known[col.Name] = true
		}
		var unknown []string
		for _, name := range names {
			if !known[name] {
				unknown = append(unknown, name)
			}
		}
		if len(unknown) > 0 {
			return struct{}{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownColumn, strings.Join(unknown, ", "))
		}

		for _, name := range names {
			if err := s.tables.SetColumnComment(ctx, ref, name, strings.TrimSpace(descriptions[name])); err != nil {
				return struct{}{}, fmt.Errorf("failed to update column %s: %w", name, err)
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownColumn) {
			return err
		}
		return fmt.Errorf("failed to update column descriptions of %s: %w", ref.FullName(), err)
	}

	s.logger.Info("Updated column descriptions",
		zap.String("table", ref.FullName()),
		zap.Int("columns", len(names)))
	return nil
}
