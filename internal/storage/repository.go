// Package storage provides repository implementations for wsadmin data models.
package storage

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Entity interface that all models must implement
type Entity interface {
	TableName() string
}

// ListOptions selects one page of a filtered listing.
type ListOptions struct {
	Where   []Clause
	OrderBy string
	Limit   int
	Offset  int
}

// Repository provides generic CRUD operations for any entity type.
type Repository[T Entity] struct {
	orm       *ORM
	tableName string
}

// NewRepository creates a new repository for type T.
func NewRepository[T Entity](orm *ORM) *Repository[T] {
	var zero T
	return &Repository[T]{
		orm:       orm,
		tableName: zero.TableName(),
	}
}

// Create inserts entity and sets its ID. CreatedAt and UpdatedAt are stamped
// with the current UTC time when zero.
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	v := reflect.ValueOf(entity).Elem()
	t := v.Type()

	now := time.Now().UTC()
	var columns []string
	var placeholders []string
	var values []any

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		dbTag := field.Tag.Get("db")
		if dbTag == "" || dbTag == "-" || strings.Contains(dbTag, "auto_increment") {
			continue
		}

		fieldValue := v.Field(i)
		if (field.Name == "CreatedAt" || field.Name == "UpdatedAt") && fieldValue.Interface().(time.Time).IsZero() {
			fieldValue.Set(reflect.ValueOf(now))
		}

		columns = append(columns, columnName(field))
		placeholders = append(placeholders, "?")
		values = append(values, fieldValue.Interface())
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		r.tableName,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	result, err := r.orm.db.ExecContext(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", r.tableName, translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get %s ID: %w", r.tableName, err)
	}

	if idField := v.FieldByName("ID"); idField.IsValid() && idField.CanSet() {
		idField.SetInt(id)
	}

	log.Debug().
		Int64("id", id).
		Str("table", r.tableName).
		Msg("Entity created")

	return nil
}

// GetByID retrieves an entity by its ID.
func (r *Repository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	entity, err := r.First(ctx, Where("id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", r.tableName, id, err)
	}
	return entity, nil
}

// First returns the first entity matching all clauses.
func (r *Repository[T]) First(ctx context.Context, clauses ...Clause) (*T, error) {
	entity, err := NewSelectBuilderFrom[T](r.orm, r.tableName).
		WhereClauses(clauses...).
		OrderBy("id ASC").
		First(ctx)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Last returns the most recently inserted entity matching all clauses.
func (r *Repository[T]) Last(ctx context.Context, clauses ...Clause) (*T, error) {
	entity, err := NewSelectBuilderFrom[T](r.orm, r.tableName).
		WhereClauses(clauses...).
		OrderBy("id DESC").
		First(ctx)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Find returns every entity matching all clauses, ordered by orderBy.
func (r *Repository[T]) Find(ctx context.Context, orderBy string, clauses ...Clause) ([]T, error) {
	if orderBy == "" {
		orderBy = "id ASC"
	}
	return NewSelectBuilderFrom[T](r.orm, r.tableName).
		WhereClauses(clauses...).
		OrderBy(orderBy).
		Execute(ctx)
}

// Count returns the number of entities matching all clauses.
func (r *Repository[T]) Count(ctx context.Context, clauses ...Clause) (int64, error) {
	return NewSelectBuilderFrom[T](r.orm, r.tableName).
		WhereClauses(clauses...).
		Count(ctx)
}

// List returns one page of entities and the total number matching opts.Where.
func (r *Repository[T]) List(ctx context.Context, opts ListOptions) ([]T, int64, error) {
	total, err := r.Count(ctx, opts.Where...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", r.tableName, err)
	}

	items, err := r.Page(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Page returns the entities selected by opts without counting them. Results
// default to newest first.
func (r *Repository[T]) Page(ctx context.Context, opts ListOptions) ([]T, error) {
	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = "id DESC"
	}

	items, err := NewSelectBuilderFrom[T](r.orm, r.tableName).
		WhereClauses(opts.Where...).
		OrderBy(orderBy).
		Limit(opts.Limit).
		Offset(opts.Offset).
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.tableName, err)
	}
	return items, nil
}

// Update writes every column of entity and stamps UpdatedAt.
func (r *Repository[T]) Update(ctx context.Context, entity *T) error {
	v := reflect.ValueOf(entity).Elem()
	t := v.Type()

	var setParts []string
	var values []any
	var id int64

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		dbTag := field.Tag.Get("db")
		if dbTag == "" || dbTag == "-" {
			continue
		}

		column := columnName(field)
		fieldValue := v.Field(i)

		if column == "id" {
			id = fieldValue.Int()
			continue
		}

		if field.Name == "UpdatedAt" {
			fieldValue.Set(reflect.ValueOf(time.Now().UTC()))
		}

		setParts = append(setParts, column+" = ?")
		values = append(values, fieldValue.Interface())
	}

	values = append(values, id)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = ?",
		r.tableName,
		strings.Join(setParts, ", "),
	)

	result, err := r.orm.db.ExecContext(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", r.tableName, translateError(err))
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %d: %w", r.tableName, id, ErrNotFound)
	}

	return nil
}

// Delete deletes an entity by ID.
func (r *Repository[T]) Delete(ctx context.Context, id int64) error {
	return r.DeleteWhere(ctx, Where("id = ?", id))
}

// DeleteWhere deletes every entity matching all clauses and fails with
// ErrNotFound when none matched.
func (r *Repository[T]) DeleteWhere(ctx context.Context, clauses ...Clause) error {
	n, err := r.deleteWhere(ctx, clauses)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", r.tableName, ErrNotFound)
	}
	return nil
}

func (r *Repository[T]) deleteWhere(ctx context.Context, clauses []Clause) (int64, error) {
	if len(clauses) == 0 {
		return 0, fmt.Errorf("refusing to delete from %s without conditions", r.tableName)
	}

	conditions := make([]string, len(clauses))
	var args []any
	for i, c := range clauses {
		conditions[i] = c.Condition
		args = append(args, c.Args...)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", r.tableName, strings.Join(conditions, " AND "))
	result, err := r.orm.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", r.tableName, translateError(err))
	}
	return result.RowsAffected()
}

// Repositories provides access to all repository instances.
type Repositories struct {
	Users              *Repository[User]
	Teams              *Repository[Team]
	TeamMembers        *Repository[TeamMember]
	Projects           *Repository[Project]
	Workspaces         *Repository[Workspace]
	WorkspaceInstances *Repository[WorkspaceInstance]
	Tokens             *Repository[PersonalAccessToken]
}

// NewRepositories creates and initializes all repository instances.
func NewRepositories(orm *ORM) *Repositories {
	return &Repositories{
		Users:              NewRepository[User](orm),
		Teams:              NewRepository[Team](orm),
		TeamMembers:        NewRepository[TeamMember](orm),
		Projects:           NewRepository[Project](orm),
		Workspaces:         NewRepository[Workspace](orm),
		WorkspaceInstances: NewRepository[WorkspaceInstance](orm),
		Tokens:             NewRepository[PersonalAccessToken](orm),
	}
}
