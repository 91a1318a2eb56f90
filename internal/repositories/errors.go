package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrIntegrityViolation = errors.New("referential integrity violation")
	ErrDuplicateKey       = errors.New("duplicate key")
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// translate maps driver and gorm errors onto the package sentinels, keeping
// the driver error in the chain.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %w", ErrIntegrityViolation, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	}
	return err
}

// IsForeignKeyViolation recognises foreign key failures from gorm's error
// translation, from pgx, and from sqlite's message text.
func IsForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
