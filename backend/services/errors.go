package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is reserved for uniqueness violations.
	ErrConflict = errors.New("conflict")
	ErrStore    = errors.New("store error")
)

// storeError classifies a persistence failure. Driver text is kept in the
// chain for logs; callers only ever see the sentinel.
func storeError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStore, err)
}
