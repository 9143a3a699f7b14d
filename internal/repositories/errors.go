package repositories

import (
	"errors"
	"fmt"

	apperrors "stagepay/internal/errors"

	"gorm.io/gorm"
)

// translate maps a gorm error onto the domain sentinel for a missing row and
// wraps everything else with the failing operation.
func translate(op string, err error, notFound *apperrors.DomainError) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
