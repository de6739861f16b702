package vehicle

import (
	"context"
	"testing"

	"github.com/KOMKZ/yogan-vehicle-api/database"
	"github.com/KOMKZ/yogan-vehicle-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	db, _ := testutil.SetupSQLite(t)
	require.NoError(t, Migrate(db))
	repo := NewRepository(db)

	empty, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	in := validVehicle()
	in.ID = 99
	id, err := repo.Create(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.EqualValues(t, 99, in.ID)

	_, err = repo.Create(ctx, &Vehicle{Brand: "Honda", Model: "Civic", Plate: "XYZ-9"})
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, id, all[0].ID)
	assert.Equal(t, "Toyota", all[0].Brand)
	assert.Equal(t, "Honda", all[1].Brand)

	upd := validVehicle()
	upd.Color = ""
	upd.Year = 0
	require.NoError(t, repo.Update(ctx, id, upd))
	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", got.Color)
	assert.Equal(t, 0, got.Year)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.FindByID(ctx, id)
	assert.ErrorIs(t, err, database.ErrRecordNotFound)
}

func TestRepository_MissingIDIsNoop(t *testing.T) {
	ctx := context.Background()
	db, _ := testutil.SetupSQLite(t, &Vehicle{})
	repo := NewRepository(db)

	assert.NoError(t, repo.Update(ctx, 404, validVehicle()))
	assert.NoError(t, repo.Delete(ctx, 404))

	n, err := testutil.NewDBHelper(db).Count("vehicle")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepository_ClosedDatabase(t *testing.T) {
	ctx := context.Background()
	db, m := testutil.SetupSQLite(t, &Vehicle{})
	repo := NewRepository(db)
	require.NoError(t, m.Close())

	_, err := repo.ListAll(ctx)
	assert.ErrorIs(t, err, database.ErrQueryFailed)
}
