package vehicle

import (
	"context"

	"github.com/KOMKZ/yogan-vehicle-api/database"
	"gorm.io/gorm"
)

// Repository is the durable vehicle store used by the cache coordinator.
// Update and Delete of a missing id succeed without touching any row.
type Repository struct {
	base *database.BaseRepository[Vehicle]
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: database.NewBaseRepository[Vehicle](db)}
}

// Migrate creates or updates the vehicle table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Vehicle{})
}

// ListAll returns every vehicle ordered by id.
func (r *Repository) ListAll(ctx context.Context) ([]*Vehicle, error) {
	rows, err := r.base.FindAll(ctx, "id")
	if err != nil {
		return nil, err
	}
	out := make([]*Vehicle, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

// Create inserts a copy of v and returns the assigned id. v itself is not modified.
func (r *Repository) Create(ctx context.Context, v *Vehicle) (int64, error) {
	row := *v
	row.ID = 0
	if err := r.base.Create(ctx, &row); err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *Repository) Update(ctx context.Context, id int64, v *Vehicle) error {
	_, err := r.base.UpdateColumns(ctx, id, map[string]interface{}{
		"brand": v.Brand,
		"model": v.Model,
		"year":  v.Year,
		"plate": v.Plate,
		"color": v.Color,
	})
	return err
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.base.Delete(ctx, id)
	return err
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*Vehicle, error) {
	return r.base.FindByID(ctx, id)
}
