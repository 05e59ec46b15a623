package subject

import (
	"context"
	"errors"
	"strings"

	"github.com/uptrace/bun"
)

// ShareCounter maintains a denormalized share counter on the subject's own
// table. Implementations must use server-side relative updates and run on the
// supplied handle so the change commits with the activity.
type ShareCounter interface {
	IncrementShareCount(ctx context.Context, db bun.IDB, id string) error
	// DecrementShareCount reports clamped=true when the counter was already
	// at or below zero; the counter is left at zero.
	DecrementShareCount(ctx context.Context, db bun.IDB, id string) (clamped bool, err error)
}

// TableShareCounter updates an integer column on a SQL table.
type TableShareCounter struct {
	Table    string
	Column   string
	IDColumn string
}

// NewTableShareCounter returns a counter for table.share_count keyed by id.
func NewTableShareCounter(table string) TableShareCounter {
	return TableShareCounter{Table: table}
}

func (c TableShareCounter) names() (table, column, idColumn string, err error) {
	table = strings.TrimSpace(c.Table)
	if table == "" {
		return "", "", "", errors.New("subject: share counter table required")
	}
	column = strings.TrimSpace(c.Column)
	if column == "" {
		column = "share_count"
	}
	idColumn = strings.TrimSpace(c.IDColumn)
	if idColumn == "" {
		idColumn = "id"
	}
	return table, column, idColumn, nil
}

// IncrementShareCount implements ShareCounter.
func (c TableShareCounter) IncrementShareCount(ctx context.Context, db bun.IDB, id string) error {
	table, column, idColumn, err := c.names()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, "UPDATE ? SET ? = ? + 1 WHERE ? = ?",
		bun.Ident(table), bun.Ident(column), bun.Ident(column), bun.Ident(idColumn), id)
	return err
}

// DecrementShareCount implements ShareCounter. A counter at or below zero is
// reset to zero and reported as clamped.
func (c TableShareCounter) DecrementShareCount(ctx context.Context, db bun.IDB, id string) (bool, error) {
	table, column, idColumn, err := c.names()
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, "UPDATE ? SET ? = ? - 1 WHERE ? = ? AND ? > 0",
		bun.Ident(table), bun.Ident(column), bun.Ident(column), bun.Ident(idColumn), id, bun.Ident(column))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return false, nil
	}
	_, err = db.ExecContext(ctx, "UPDATE ? SET ? = 0 WHERE ? = ? AND ? < 0",
		bun.Ident(table), bun.Ident(column), bun.Ident(idColumn), id, bun.Ident(column))
	return true, err
}
