package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// isCheckViolation verifica si un error viene de un CHECK (p. ej. stock_quantity >= 0).
func isCheckViolation(err error) bool {
	return hasCode(err, codeCheckViolation)
}

func isForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// limitOrAll traduce limit <= 0 a LIMIT NULL (sin límite).
func limitOrAll(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
