// Package sqlxrepos implements the core repositories with jmoiron/sqlx.
// Queries use ? placeholders and are rebound for the driver in use.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/signquick/signquick/core"
)

type repo struct {
	exec core.DBExecutor
}

func (r repo) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return r.exec
}

// trapNoRowsErr maps sql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func get(ctx context.Context, exec core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	return exec.GetContext(ctx, dest, exec.Rebind(query), args...)
}

func query(ctx context.Context, exec core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	return exec.SelectContext(ctx, dest, exec.Rebind(query), args...)
}

// insert runs an INSERT ... RETURNING id.
func insert(ctx context.Context, exec core.DBExecutor, query string, args ...interface{}) (int64, error) {
	var id int64
	err := exec.GetContext(ctx, &id, exec.Rebind(query+" RETURNING id"), args...)
	return id, err
}

// execOne runs an UPDATE or DELETE that must touch a row, notFound otherwise.
func execOne(ctx context.Context, exec core.DBExecutor, notFound error, msg, query string, args ...interface{}) error {
	res, err := exec.ExecContext(ctx, exec.Rebind(query), args...)
	if err != nil {
		return errors.Wrap(err, msg)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func count(ctx context.Context, exec core.DBExecutor, query string, args ...interface{}) (int, error) {
	var n int
	err := exec.GetContext(ctx, &n, exec.Rebind(query), args...)
	return n, err
}

// orderBy renders orderings restricted to the allowed columns, or def when none is usable.
func orderBy(ordering []core.DBOrdering, allowed map[string]string, def string) string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(clauses) == 0 {
		return def
	}
	return strings.Join(clauses, ", ")
}
