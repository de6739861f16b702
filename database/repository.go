package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// BaseRepository implements the CRUD every table needs. Errors are translated
// to ErrRecordNotFound, ErrDuplicateKey or ErrQueryFailed.
type BaseRepository[T any] struct {
	db *gorm.DB
}

func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db}
}

func (r *BaseRepository[T]) DB() *gorm.DB {
	return r.db
}

func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return translate(r.db.WithContext(ctx).Create(entity).Error, "create")
}

func (r *BaseRepository[T]) FindByID(ctx context.Context, id interface{}) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("find id=%v", id))
	}
	return &entity, nil
}

// FindAll returns every row ordered by order ("" keeps the database order).
func (r *BaseRepository[T]) FindAll(ctx context.Context, order string) ([]T, error) {
	var entities []T
	q := r.db.WithContext(ctx)
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Find(&entities).Error; err != nil {
		return nil, translate(err, "find all")
	}
	return entities, nil
}

// UpdateColumns writes columns on the row with id, zero values included.
// It returns the number of affected rows.
func (r *BaseRepository[T]) UpdateColumns(ctx context.Context, id interface{}, columns map[string]interface{}) (int64, error) {
	var entity T
	res := r.db.WithContext(ctx).Model(&entity).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return 0, translate(res.Error, fmt.Sprintf("update id=%v", id))
	}
	return res.RowsAffected, nil
}

// Delete removes the row with id and returns the number of affected rows.
func (r *BaseRepository[T]) Delete(ctx context.Context, id interface{}) (int64, error) {
	var entity T
	res := r.db.WithContext(ctx).Delete(&entity, id)
	if res.Error != nil {
		return 0, translate(res.Error, fmt.Sprintf("delete id=%v", id))
	}
	return res.RowsAffected, nil
}

func (r *BaseRepository[T]) Exists(ctx context.Context, id interface{}) (bool, error) {
	var count int64
	var entity T
	if err := r.db.WithContext(ctx).Model(&entity).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate(err, fmt.Sprintf("exists id=%v", id))
	}
	return count > 0, nil
}

func (r *BaseRepository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var entity T
	if err := r.db.WithContext(ctx).Model(&entity).Count(&count).Error; err != nil {
		return 0, translate(err, "count")
	}
	return count, nil
}

func (r *BaseRepository[T]) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
