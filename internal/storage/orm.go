// Package storage provides a lightweight mini-ORM for wsadmin.
//
// Design Philosophy:
//   - Explicit SQL over implicit magic
//   - Type-safe query building with generics
//   - SQLite optimized
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// executor is satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ORM wraps the connection or transaction shared by a set of repositories.
type ORM struct {
	db executor
}

// NewORM creates a new ORM instance over a database or transaction.
func NewORM(db executor) *ORM {
	return &ORM{db: db}
}

// Clause is a single WHERE condition with its arguments.
type Clause struct {
	Condition string
	Args      []any
}

// Where builds a Clause. Conditions containing OR must be parenthesized by
// the caller since clauses are joined with AND.
func Where(condition string, args ...any) Clause {
	return Clause{Condition: condition, Args: args}
}

// SelectBuilder provides a fluent interface for building SELECT queries.
type SelectBuilder[T any] struct {
	orm       *ORM
	tableName string
	where     []Clause
	orderBy   string
	limit     int
	offset    int
}

// NewSelectBuilderFrom creates a SELECT query builder over tableName.
func NewSelectBuilderFrom[T any](orm *ORM, tableName string) *SelectBuilder[T] {
	return &SelectBuilder[T]{
		orm:       orm,
		tableName: tableName,
	}
}

// Where adds a WHERE condition to the query.
//
// Multiple WHERE conditions are combined with AND.
// Use SQL placeholders (?) for parameters to prevent SQL injection.
func (sb *SelectBuilder[T]) Where(condition string, args ...any) *SelectBuilder[T] {
	sb.where = append(sb.where, Where(condition, args...))
	return sb
}

// WhereClauses adds several prepared clauses.
func (sb *SelectBuilder[T]) WhereClauses(clauses ...Clause) *SelectBuilder[T] {
	sb.where = append(sb.where, clauses...)
	return sb
}

// OrderBy sets the ORDER BY clause for the query.
func (sb *SelectBuilder[T]) OrderBy(orderBy string) *SelectBuilder[T] {
	sb.orderBy = orderBy
	return sb
}

// Limit sets the maximum number of rows to return.
func (sb *SelectBuilder[T]) Limit(limit int) *SelectBuilder[T] {
	sb.limit = limit
	return sb
}

// Offset sets the number of rows to skip before returning results.
func (sb *SelectBuilder[T]) Offset(offset int) *SelectBuilder[T] {
	sb.offset = offset
	return sb
}

// Execute runs the built query and returns the results.
func (sb *SelectBuilder[T]) Execute(ctx context.Context) ([]T, error) {
	query, args := sb.buildQuery()

	log.Debug().
		Str("query", query).
		Interface("args", args).
		Msg("Executing SELECT query")

	rows, err := sb.orm.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	return scanRows[T](rows)
}

// First executes the query and returns only the first result.
//
// Returns ErrNotFound if no results are found.
func (sb *SelectBuilder[T]) First(ctx context.Context) (T, error) {
	sb.limit = 1
	results, err := sb.Execute(ctx)

	var zero T
	if err != nil {
		return zero, err
	}
	if len(results) == 0 {
		return zero, ErrNotFound
	}
	return results[0], nil
}

// Count executes a COUNT query and returns the number of matching rows.
// Limit and offset are ignored.
func (sb *SelectBuilder[T]) Count(ctx context.Context) (int64, error) {
	query, args := sb.buildCountQuery()

	log.Debug().
		Str("query", query).
		Interface("args", args).
		Msg("Executing COUNT query")

	var count int64
	if err := sb.orm.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return count, nil
}

func (sb *SelectBuilder[T]) writeWhere(query *strings.Builder) []any {
	if len(sb.where) == 0 {
		return nil
	}

	var args []any
	conditions := make([]string, len(sb.where))
	for i, w := range sb.where {
		conditions[i] = w.Condition
		args = append(args, w.Args...)
	}
	query.WriteString(" WHERE ")
	query.WriteString(strings.Join(conditions, " AND "))
	return args
}

// buildQuery constructs the final SQL query string and parameter list.
func (sb *SelectBuilder[T]) buildQuery() (string, []any) {
	var query strings.Builder

	query.WriteString("SELECT * FROM ")
	query.WriteString(sb.tableName)

	args := sb.writeWhere(&query)

	if sb.orderBy != "" {
		query.WriteString(" ORDER BY ")
		query.WriteString(sb.orderBy)
	}

	if sb.limit > 0 {
		fmt.Fprintf(&query, " LIMIT %d", sb.limit)
		if sb.offset > 0 {
			fmt.Fprintf(&query, " OFFSET %d", sb.offset)
		}
	}

	return query.String(), args
}

// buildCountQuery constructs a COUNT query based on the current builder state.
func (sb *SelectBuilder[T]) buildCountQuery() (string, []any) {
	var query strings.Builder

	query.WriteString("SELECT COUNT(*) FROM ")
	query.WriteString(sb.tableName)

	args := sb.writeWhere(&query)
	return query.String(), args
}

// scanRows scans database rows into values of T.
func scanRows[T any](rows *sql.Rows) ([]T, error) {
	results := []T{}

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var item T
		if err := populateStruct(&item, columns, values); err != nil {
			return nil, fmt.Errorf("failed to populate struct: %w", err)
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return results, nil
}

// columnName returns the column a struct field maps to, or "" if the field is
// excluded with `db:"-"`.
func columnName(field reflect.StructField) string {
	tag := field.Tag.Get("db")
	if tag == "-" {
		return ""
	}
	if tag == "" {
		return strings.ToLower(field.Name)
	}
	return strings.Split(tag, ",")[0]
}

// populateStruct maps database values to struct fields using reflection.
func populateStruct(item any, columns []string, values []any) error {
	v := reflect.ValueOf(item).Elem()
	t := v.Type()

	fieldMap := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name := columnName(t.Field(i)); name != "" {
			fieldMap[name] = i
		}
	}

	for i, column := range columns {
		fieldIndex, exists := fieldMap[column]
		if !exists {
			continue
		}
		field := v.Field(fieldIndex)
		if !field.CanSet() {
			continue
		}
		if err := setFieldValue(field, values[i]); err != nil {
			return fmt.Errorf("failed to set field %s: %w", column, err)
		}
	}

	return nil
}

// sqliteTimeLayouts are the formats the driver writes and CURRENT_TIMESTAMP
// produces, for columns read back as text.
var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format: %q", s)
}

// setFieldValue assigns a database value to a struct field using reflection.
//
// Design notes:
//   - If the database value is NULL and the field is a pointer, the field is set to nil.
//   - If the database value is NULL and the field is not a pointer, the field is left untouched.
//   - Pointer fields are allocated only when a non-NULL value is present.
func setFieldValue(field reflect.Value, value any) error {
	if field.Kind() == reflect.Ptr {
		if value == nil {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}

		elem := reflect.New(field.Type().Elem())
		if err := setFieldValue(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if value == nil {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		switch v := value.(type) {
		case string:
			field.SetString(v)
		case []byte:
			field.SetString(string(v))
		default:
			return fmt.Errorf("cannot assign %T to string field", value)
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case float64:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("cannot assign %T to int field", value)
		}

	case reflect.Float32, reflect.Float64:
		switch v := value.(type) {
		case float64:
			field.SetFloat(v)
		case int64:
			field.SetFloat(float64(v))
		default:
			return fmt.Errorf("cannot assign %T to float field", value)
		}

	case reflect.Bool:
		switch v := value.(type) {
		case bool:
			field.SetBool(v)
		case int64:
			field.SetBool(v != 0)
		default:
			return fmt.Errorf("cannot assign %T to bool field", value)
		}

	case reflect.Struct:
		if field.Type() != reflect.TypeOf(time.Time{}) {
			return fmt.Errorf("unsupported struct type: %s", field.Type())
		}
		switch v := value.(type) {
		case time.Time:
			field.Set(reflect.ValueOf(v.UTC()))
		case string:
			t, err := parseTime(v)
			if err != nil {
				return err
			}
			field.Set(reflect.ValueOf(t.UTC()))
		case []byte:
			t, err := parseTime(string(v))
			if err != nil {
				return err
			}
			field.Set(reflect.ValueOf(t.UTC()))
		default:
			return fmt.Errorf("cannot assign %T to time.Time field", value)
		}

	default:
		return fmt.Errorf("unsupported field kind: %s", field.Kind())
	}

	return nil
}
