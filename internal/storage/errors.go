package storage

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write violates a unique or foreign key constraint.
	ErrConflict = errors.New("record conflicts with existing data")

	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid record")

	// ErrInvalidState is returned when a workspace cannot make the requested
	// lifecycle transition.
	ErrInvalidState = errors.New("invalid workspace state")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// translateError maps driver constraint errors onto ErrConflict.
func translateError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %s", ErrConflict, sqliteErr.Error())
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: referenced record does not exist", ErrConflict)
	}
	return err
}
