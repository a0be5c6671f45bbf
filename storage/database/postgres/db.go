// Package pgrepos implements the repositories on PostgreSQL with sqlx.
//
// Shared mutable fields (likes, comments, joined clubs, registrations, feedback) are only ever
// changed by a read-modify-write inside a transaction that holds the row lock (SELECT ... FOR UPDATE).
package pgrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
)

const uniqueViolation = "23505"

// jsonColumn scans and stores a jsonb column.
type jsonColumn[T any] struct {
	V T
}

func (c *jsonColumn[T]) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, &c.V)
	case string:
		return json.Unmarshal([]byte(v), &c.V)
	}
	return errors.Errorf("unsupported jsonb source %T", src)
}

func (c jsonColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(c.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// trapNoRowsErr maps psql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

// withTx runs fn in a transaction, committing when it returns nil.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// orderBy renders an ORDER BY clause. orderings hold column names already filtered by core.FilterOrderings.
func orderBy(orderings []core.DBOrdering, fallback string) string {
	if len(orderings) == 0 {
		return " ORDER BY " + fallback
	}
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

// add appends cond, where each %s is replaced by the next placeholder.
func (w *whereBuilder) add(cond string, args ...interface{}) {
	placeholders := make([]interface{}, 0, len(args))
	for _, arg := range args {
		w.args = append(w.args, arg)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(w.args)))
	}
	w.conds = append(w.conds, fmt.Sprintf(cond, placeholders...))
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
