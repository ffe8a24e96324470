package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ekaya-inc/ekaya-enrich/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
	sqlutil "github.com/ekaya-inc/ekaya-enrich/pkg/sql"
)

// withTimeout runs fn under a deadline of d (none when d <= 0).
// An error caused by the deadline is wrapped with apperrors.ErrUpstreamTimeout.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	result, err := fn(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, apperrors.ErrUpstreamTimeout) {
		return result, fmt.Errorf("%w: %w", apperrors.ErrUpstreamTimeout, err)
	}
	return result, err
}

// validateRef checks all three parts of a table reference.
func validateRef(ref models.TableRef) error {
	if err := sqlutil.ValidateIdentifier("catalog", ref.Catalog); err != nil {
		return err
	}
	if err := sqlutil.ValidateIdentifier("schema", ref.Schema); err != nil {
		return err
	}
	return sqlutil.ValidateIdentifier("table", ref.Table)
}
