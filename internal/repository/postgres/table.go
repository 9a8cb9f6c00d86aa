package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/modulehub/internal/model"
)

const (
	uniqueViolation  = "23505"
	notNullViolation = "23502"
)

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Schema maps a record type onto a table.
type Schema[T any, ID comparable] struct {
	Table string
	// Key is the primary key column.
	Key string
	// Fields maps public field names to columns. Only these can be filtered on.
	Fields map[string]string
	// Columns are the writable columns in Values order.
	Columns []string
	// ReadOnly columns are selected after Columns and never written.
	ReadOnly []string
	// InsertKey makes Create write KeyOf(record) instead of using the column default.
	InsertKey bool
	// Touch is set to NOW() by every update when not empty.
	Touch string

	Values func(record T) []any
	KeyOf  func(record T) ID
	// Scan reads Key, Columns and ReadOnly in that order.
	Scan func(row Scanner) (T, error)
}

// Table implements model.Store over a single Postgres table.
type Table[T any, ID comparable] struct {
	db       *Connection
	schema   Schema[T, ID]
	writable map[string]bool
	selected string
}

// NewTable creates Table for schema.
func NewTable[T any, ID comparable](db *Connection, schema Schema[T, ID]) *Table[T, ID] {
	writable := make(map[string]bool, len(schema.Columns))
	for _, c := range schema.Columns {
		writable[c] = true
	}

	cols := append([]string{schema.Key}, schema.Columns...)
	cols = append(cols, schema.ReadOnly...)

	return &Table[T, ID]{
		db:       db,
		schema:   schema,
		writable: writable,
		selected: strings.Join(cols, ", "),
	}
}

func (t *Table[T, ID]) Create(ctx context.Context, record T) (T, error) {
	cols := t.schema.Columns
	args := t.schema.Values(record)
	if t.schema.InsertKey {
		cols = append([]string{t.schema.Key}, cols...)
		args = append([]any{t.schema.KeyOf(record)}, args...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.schema.Table, strings.Join(cols, ", "), placeholders(1, len(cols)), t.selected)

	saved, err := t.schema.Scan(t.db.executor(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		var zero T
		return zero, mapError(err, "insert into "+t.schema.Table)
	}

	return saved, nil
}

func (t *Table[T, ID]) Find(ctx context.Context, filter model.Filter) ([]T, error) {
	where, args, err := t.where(filter.Where, 1)
	if err != nil {
		return nil, err
	}
	order, err := t.order(filter.Order)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s%s%s", t.selected, t.schema.Table, where, order)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	rows, err := t.db.executor(ctx).QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, mapError(err, "query "+t.schema.Table)
	}
	defer rows.Close()

	records := make([]T, 0)
	for rows.Next() {
		record, err := t.schema.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.schema.Table, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", t.schema.Table, err)
	}

	return records, nil
}

func (t *Table[T, ID]) FindByID(ctx context.Context, id ID) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", t.selected, t.schema.Table, t.schema.Key)

	record, err := t.schema.Scan(t.db.executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		var zero T
		return zero, mapError(err, "get "+t.schema.Table+" by id")
	}

	return record, nil
}

func (t *Table[T, ID]) Count(ctx context.Context, where model.Where) (int64, error) {
	clause, args, err := t.where(where, 1)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", t.schema.Table, clause)

	var n int64
	if err := t.db.executor(ctx).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapError(err, "count "+t.schema.Table)
	}

	return n, nil
}

func (t *Table[T, ID]) UpdateByID(ctx context.Context, id ID, patch model.Patch) error {
	set, args, err := t.set(patch)
	if err != nil {
		return err
	}
	if set == "" {
		_, err := t.FindByID(ctx, id)
		return err
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d", t.schema.Table, set, t.schema.Key, len(args))

	return t.execOne(ctx, query, args, "update "+t.schema.Table)
}

func (t *Table[T, ID]) ReplaceByID(ctx context.Context, id ID, record T) error {
	values := t.schema.Values(record)
	assignments := make([]string, 0, len(t.schema.Columns)+1)
	for i, col := range t.schema.Columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, i+1))
	}
	if t.schema.Touch != "" {
		assignments = append(assignments, t.schema.Touch+" = NOW()")
	}

	args := append(values, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		t.schema.Table, strings.Join(assignments, ", "), t.schema.Key, len(args))

	return t.execOne(ctx, query, args, "replace "+t.schema.Table)
}

func (t *Table[T, ID]) DeleteByID(ctx context.Context, id ID) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.schema.Table, t.schema.Key)
	return t.execOne(ctx, query, []any{id}, "delete from "+t.schema.Table)
}

func (t *Table[T, ID]) UpdateAll(ctx context.Context, patch model.Patch, where model.Where) (int64, error) {
	set, args, err := t.set(patch)
	if err != nil {
		return 0, err
	}
	if set == "" {
		return t.Count(ctx, where)
	}

	clause, whereArgs, err := t.where(where, len(args)+1)
	if err != nil {
		return 0, err
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s%s", t.schema.Table, set, clause)

	res, err := t.db.executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, "update "+t.schema.Table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return n, nil
}

func (t *Table[T, ID]) execOne(ctx context.Context, query string, args []any, op string) error {
	res, err := t.db.executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// where renders an equality WHERE clause with placeholders starting at first.
func (t *Table[T, ID]) where(where model.Where, first int) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(where))
	args := make([]any, 0, len(where))
	for _, field := range sortedKeys(where) {
		col, ok := t.schema.Fields[field]
		if !ok {
			return "", nil, model.NewInputError(fmt.Sprintf("unknown field %q", field))
		}
		value := where[field]
		if value == nil {
			conds = append(conds, col+" IS NULL")
			continue
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, first+len(args)-1))
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (t *Table[T, ID]) set(patch model.Patch) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, nil
	}

	assignments := make([]string, 0, len(patch)+1)
	args := make([]any, 0, len(patch))
	for _, field := range sortedKeys(patch) {
		col, ok := t.schema.Fields[field]
		if !ok || !t.writable[col] {
			return "", nil, model.NewInputError(fmt.Sprintf("field %q cannot be updated", field))
		}
		if patch[field] == nil {
			return "", nil, model.NewInputError(fmt.Sprintf("field %q cannot be null", field))
		}
		args = append(args, patch[field])
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if t.schema.Touch != "" {
		assignments = append(assignments, t.schema.Touch+" = NOW()")
	}

	return strings.Join(assignments, ", "), args, nil
}

func (t *Table[T, ID]) order(order []string) (string, error) {
	if len(order) == 0 {
		return "", nil
	}

	terms := make([]string, 0, len(order))
	for _, o := range order {
		parts := strings.Fields(o)
		if len(parts) == 0 || len(parts) > 2 {
			return "", model.NewInputError(fmt.Sprintf("invalid order %q", o))
		}
		col, ok := t.schema.Fields[parts[0]]
		if !ok {
			return "", model.NewInputError(fmt.Sprintf("unknown field %q", parts[0]))
		}
		dir := "ASC"
		if len(parts) == 2 {
			dir = strings.ToUpper(parts[1])
			if dir != "ASC" && dir != "DESC" {
				return "", model.NewInputError(fmt.Sprintf("invalid order direction %q", parts[1]))
			}
		}
		terms = append(terms, col+" "+dir)
	}

	return " ORDER BY " + strings.Join(terms, ", "), nil
}

func placeholders(first, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", first+i)
	}
	return strings.Join(ps, ", ")
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mapError(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("failed to %s: %w", op, model.ErrConflict)
		case notNullViolation:
			return fmt.Errorf("failed to %s: %w", op, model.NewInputError("required field is missing"))
		}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

// assertFields panics when a schema references an unknown column. Used by the
// schema constructors at package init.
func assertFields[T any, ID comparable](s Schema[T, ID]) Schema[T, ID] {
	known := append([]string{s.Key}, s.Columns...)
	known = append(known, s.ReadOnly...)
	for field, col := range s.Fields {
		if !slices.Contains(known, col) {
			panic(fmt.Sprintf("postgres: field %q maps to unknown column %q of %s", field, col, s.Table))
		}
	}
	return s
}
