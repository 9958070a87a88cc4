package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var perfumeRowColumns = []string{
	"id", "brand", "name", "capacity_ml", "description", "image_url", "created_at", "updated_at",
}

func TestPerfumeRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPerfumeRepository(db)
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO perfumes`).
			WithArgs(sqlmock.AnyArg(), "Dior", "Sauvage", 100, nil, nil).
			WillReturnRows(sqlmock.NewRows(perfumeRowColumns).
				AddRow(id.String(), "Dior", "Sauvage", 100, nil, nil, now, now))

		perfume, err := repo.Create(models.PerfumeInput{Brand: "Dior", Name: "Sauvage", CapacityML: 100})
		require.NoError(t, err)
		assert.Equal(t, id, perfume.ID)
		assert.Equal(t, "Dior - Sauvage (100ml)", perfume.String())
		assert.False(t, perfume.Description.Valid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Negative capacity never reaches the database", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPerfumeRepository(db)

		_, err := repo.Create(models.PerfumeInput{Brand: "Dior", Name: "Sauvage", CapacityML: -5})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPerfumeRepository(db)

		mock.ExpectQuery(`INSERT INTO perfumes`).WillReturnError(fmt.Errorf("database error"))

		_, err := repo.Create(models.PerfumeInput{Brand: "Dior", Name: "Sauvage", CapacityML: 100})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create perfume")
	})
}

func TestPerfumeRepository_List(t *testing.T) {
	tests := []struct {
		name    string
		order   models.PerfumeOrder
		orderBy string
	}{
		{"By brand and name", models.PerfumeOrderByBrandName, `ORDER BY brand ASC, name ASC`},
		{"Newest first", models.PerfumeOrderByNewest, `ORDER BY created_at DESC`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewPerfumeRepository(db)
			now := time.Now()

			mock.ExpectQuery(`SELECT .* FROM perfumes ` + tt.orderBy).
				WillReturnRows(sqlmock.NewRows(perfumeRowColumns).
					AddRow(uuid.New().String(), "Chanel", "No. 5", 50, "Classic", nil, now, now).
					AddRow(uuid.New().String(), "Dior", "Sauvage", 100, nil, nil, now, now))

			perfumes, err := repo.List(tt.order)
			require.NoError(t, err)
			require.Len(t, perfumes, 2)
			assert.Equal(t, "Classic", perfumes[0].Description.String)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPerfumeRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPerfumeRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM perfumes WHERE id`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(perfumeRowColumns))

	_, err := repo.GetByID(id)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerfumeRepository_Update(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPerfumeRepository(db)
		id := uuid.New()
		created := time.Now().Add(-time.Hour)
		now := time.Now()

		mock.ExpectQuery(`UPDATE perfumes`).
			WithArgs(id, "Dior", "Sauvage Elixir", 60, "Intense", nil).
			WillReturnRows(sqlmock.NewRows(perfumeRowColumns).
				AddRow(id.String(), "Dior", "Sauvage Elixir", 60, "Intense", nil, created, now))

		perfume, err := repo.Update(id, models.PerfumeInput{
			Brand: "Dior", Name: "Sauvage Elixir", CapacityML: 60, Description: "Intense",
		})
		require.NoError(t, err)
		assert.Equal(t, created, perfume.CreatedAt)
		assert.Equal(t, 60, perfume.CapacityML)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPerfumeRepository(db)

		mock.ExpectQuery(`UPDATE perfumes`).WillReturnRows(sqlmock.NewRows(perfumeRowColumns))

		_, err := repo.Update(uuid.New(), models.PerfumeInput{Brand: "Dior", Name: "Sauvage", CapacityML: 100})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("Check violation", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPerfumeRepository(db)

		mock.ExpectQuery(`UPDATE perfumes`).WillReturnError(&pq.Error{Code: "23514"})

		_, err := repo.Update(uuid.New(), models.PerfumeInput{Brand: "Dior", Name: "Sauvage", CapacityML: 100})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestPerfumeRepository_Delete(t *testing.T) {
	t.Run("Deletes logs then perfume", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPerfumeRepository(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM usage_logs WHERE perfume_id`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM perfumes WHERE id`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown id rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPerfumeRepository(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM usage_logs WHERE perfume_id`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM perfumes WHERE id`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(id)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Log delete failure rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPerfumeRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM usage_logs`).WillReturnError(fmt.Errorf("connection reset"))
		mock.ExpectRollback()

		err := repo.Delete(uuid.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete usage logs")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
