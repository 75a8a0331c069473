// package repositories provides persistence layer implementations for the reference store.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/tdx/internal/shared"
)

// checkAffected turns a zero row count into [shared.ErrItemNotFound].
func checkAffected(result sql.Result, id int) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %d", shared.ErrItemNotFound, id)
	}
	return nil
}

// notFound maps [sql.ErrNoRows] to [shared.ErrItemNotFound] and wraps everything else.
func notFound(err error, id int, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %d", shared.ErrItemNotFound, id)
	}
	return fmt.Errorf("failed to %s item: %w", action, err)
}
