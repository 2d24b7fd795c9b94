package dao

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "car-catalog/pkg/common/errors"
	"car-catalog/pkg/core/car/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.AutoMigrate(db))
	return db
}

func TestGormCarRepository_CreateAndFindRoundTrip(t *testing.T) {
	repo := NewGormCarRepository(newTestDB(t))
	ctx := context.Background()

	car := &model.Car{
		UserID:      "u-ana",
		Title:       "Civic",
		Description: "2020 model",
		Tags:        datatypes.JSONSlice[string]{"sedan", "used"},
		Images:      datatypes.JSONSlice[string]{"https://blob.test/2.png", "https://blob.test/1.png"},
	}
	require.NoError(t, repo.Create(ctx, car))
	require.NotEmpty(t, car.ID)

	got, err := repo.FindByID(ctx, car.ID)
	require.NoError(t, err)

	want := struct {
		UserID, Title, Description string
		Tags, Images               []string
	}{car.UserID, car.Title, car.Description, car.Tags, car.Images}
	gotView := struct {
		UserID, Title, Description string
		Tags, Images               []string
	}{got.UserID, got.Title, got.Description, got.Tags, got.Images}
	if diff := cmp.Diff(want, gotView); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGormCarRepository_EmptySlicesPersistAsEmpty(t *testing.T) {
	repo := NewGormCarRepository(newTestDB(t))
	ctx := context.Background()

	car := &model.Car{UserID: "u", Title: "t", Description: "d"}
	require.NoError(t, repo.Create(ctx, car))

	got, err := repo.FindByID(ctx, car.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
	assert.NotNil(t, got.Images)
	assert.Empty(t, got.Images)
}

func TestGormCarRepository_ListByOwnerScopedAndOrdered(t *testing.T) {
	repo := NewGormCarRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := &model.Car{UserID: "u-ana", Title: "old", Description: "d", CreatedAt: base}
	newer := &model.Car{UserID: "u-ana", Title: "new", Description: "d", CreatedAt: base.Add(time.Hour)}
	other := &model.Car{UserID: "u-bob", Title: "bob", Description: "d", CreatedAt: base}
	for _, c := range []*model.Car{older, newer, other} {
		require.NoError(t, repo.Create(ctx, c))
	}

	cars, err := repo.ListByOwner(ctx, "u-ana")
	require.NoError(t, err)
	require.Len(t, cars, 2)
	assert.Equal(t, "new", cars[0].Title)
	assert.Equal(t, "old", cars[1].Title)

	none, err := repo.ListByOwner(ctx, "u-nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGormCarRepository_Delete(t *testing.T) {
	repo := NewGormCarRepository(newTestDB(t))
	ctx := context.Background()

	car := &model.Car{UserID: "u", Title: "t", Description: "d"}
	require.NoError(t, repo.Create(ctx, car))

	require.NoError(t, repo.DeleteByID(ctx, car.ID))
	assert.ErrorIs(t, repo.DeleteByID(ctx, car.ID), apperrors.ErrRecordNotFound)

	_, err := repo.FindByID(ctx, car.ID)
	assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)
}
