package db

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

// IsIntegrityViolation reports whether err is a Postgres unique/foreign-key
// constraint failure. Identifier minting relies on this to drive its retry
// loop: the unique index is the source of truth.
func IsIntegrityViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.IntegrityViolation()
	}
	return false
}
