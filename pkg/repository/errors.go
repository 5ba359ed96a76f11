package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Errors holds the domain errors a repository substitutes for driver errors.
// A nil field leaves the corresponding driver error unchanged.
type Errors struct {
	NotFound   error
	Duplicate  error
	ForeignKey error
	Check      error
}

// Map translates sql.ErrNoRows and PostgreSQL constraint violations
// (23505 unique, 23503 foreign key, 23514 check) to domain errors.
// Other errors are returned unchanged.
func (e Errors) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return substitute(e.NotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return substitute(e.Duplicate, err)
		case pgForeignKeyViolation:
			return substitute(e.ForeignKey, err)
		case pgCheckViolation:
			return substitute(e.Check, err)
		}
	}

	return err
}

func substitute(domain, err error) error {
	if domain == nil {
		return err
	}
	return domain
}
