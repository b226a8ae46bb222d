package postgres

import (
	"context"
	"reflect"
	"strings"
	"time"

	"market/internal/domain/entity"
	"market/internal/domain/repository"
	"market/internal/infra/persistence"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultOrder = "created_at, id"

// table describes how one entity maps onto its GORM model.
type table[T any, M any] struct {
	name       string
	fields     *persistence.FieldSet
	fromEntity func(*T) *M
	toEntity   func(*M) *T
	base       func(*T) *entity.Base
}

// gormRepository implements repository.Repository for any entity with a GORM model.
type gormRepository[T any, M any] struct {
	db    *gorm.DB
	table *table[T, M]
	now   func() time.Time
}

func newGormRepository[T any, M any](db *gorm.DB, t *table[T, M], now func() time.Time) *gormRepository[T, M] {
	return &gormRepository[T, M]{db: db, table: t, now: now}
}

// Create assigns the identifier and timestamps, then inserts the row.
func (repo *gormRepository[T, M]) Create(ctx context.Context, e *T) error {
	repo.table.base(e).Stamp(repo.now().UTC())

	if err := repo.db.WithContext(ctx).Create(repo.table.fromEntity(e)).Error; err != nil {
		return translateError(err, "failed to create "+repo.table.name)
	}

	return nil
}

// FindByID retrieves a single row by its identifier.
func (repo *gormRepository[T, M]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var m M
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}

		return nil, translateError(err, "failed to find "+repo.table.name)
	}

	return repo.table.toEntity(&m), nil
}

func (repo *gormRepository[T, M]) List(ctx context.Context, page repository.Page) ([]*T, error) {
	return repo.find(repo.paginate(repo.db.WithContext(ctx), page))
}

// Update writes only the given fields and returns the stored row.
func (repo *gormRepository[T, M]) Update(ctx context.Context, id uuid.UUID, fields repository.Fields) (*T, error) {
	keys, err := repo.table.fields.CheckWritable(fields)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any, len(keys)+1)
	for _, k := range keys {
		values[k] = columnValue(fields[k])
	}
	values["updated_at"] = repo.now().UTC()

	result := repo.db.WithContext(ctx).Model(new(M)).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return nil, translateError(result.Error, "failed to update "+repo.table.name)
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}

	return repo.FindByID(ctx, id)
}

// Delete removes the row. Referencing rows follow the schema's foreign keys;
// a restricting reference fails with ErrResourceInUse.
func (repo *gormRepository[T, M]) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(new(M))
	if result.Error != nil {
		return false, translateDeleteError(result.Error, "failed to delete "+repo.table.name)
	}

	return result.RowsAffected > 0, nil
}

// FilterBy matches every field exactly. A nil value matches NULL.
func (repo *gormRepository[T, M]) FilterBy(ctx context.Context, fields repository.Fields) ([]*T, error) {
	keys, err := repo.table.fields.CheckWritable(fields)
	if err != nil {
		return nil, err
	}

	q := repo.db.WithContext(ctx)
	for _, k := range keys {
		v := columnValue(fields[k])
		if v == nil {
			q = q.Where(k + " IS NULL")

			continue
		}
		q = q.Where(k+" = ?", v)
	}

	return repo.find(q.Order(defaultOrder))
}

func (repo *gormRepository[T, M]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := repo.db.WithContext(ctx).Model(new(M)).Count(&n).Error; err != nil {
		return 0, translateError(err, "failed to count "+repo.table.name)
	}

	return n, nil
}

// Search matches query as a case-insensitive substring of any of the fields.
func (repo *gormRepository[T, M]) Search(ctx context.Context, query string, fields []string, page repository.Page) ([]*T, error) {
	if err := repo.table.fields.CheckSearchable(fields); err != nil {
		return nil, err
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	conds := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		conds = append(conds, "LOWER("+f+") LIKE ? ESCAPE '\\'")
		args = append(args, pattern)
	}

	q := repo.db.WithContext(ctx).Where(strings.Join(conds, " OR "), args...)

	return repo.find(repo.paginate(q, page))
}

func (repo *gormRepository[T, M]) paginate(q *gorm.DB, page repository.Page) *gorm.DB {
	q = q.Order(defaultOrder)
	if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}

	return q
}

func (repo *gormRepository[T, M]) find(q *gorm.DB) ([]*T, error) {
	var rows []*M
	if err := q.Find(&rows).Error; err != nil {
		return nil, translateError(err, "failed to query "+repo.table.name)
	}

	out := make([]*T, 0, len(rows))
	for _, m := range rows {
		out = append(out, repo.table.toEntity(m))
	}

	return out, nil
}

// columnValue converts domain values into something every SQL driver accepts.
func columnValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		return datatypes.JSONSlice[string](val)
	case time.Time:
		return val.UTC()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}

		return columnValue(rv.Elem().Interface())
	}
	// Named string types such as entity.Role.
	if rv.Kind() == reflect.String && rv.Type() != reflect.TypeOf("") {
		return rv.String()
	}

	return v
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
