package database

import (
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var staffRowColumns = []string{"id", "name", "user_id", "created_at"}

func TestStaffRepository_Create(t *testing.T) {
	t.Run("Unlinked", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewStaffRepository(db)
		id := uuid.New()

		mock.ExpectQuery(`INSERT INTO staff`).
			WithArgs(sqlmock.AnyArg(), "Alice", nil).
			WillReturnRows(sqlmock.NewRows(staffRowColumns).AddRow(id.String(), "Alice", nil, time.Now()))

		staff, err := repo.Create("Alice", nil)
		require.NoError(t, err)
		assert.Equal(t, id, staff.ID)
		assert.False(t, staff.UserID.Valid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Second profile for the same user", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewStaffRepository(db)
		userID := uuid.New()

		mock.ExpectQuery(`INSERT INTO staff`).
			WithArgs(sqlmock.AnyArg(), "Alice", userID).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "staff_user_id_key"})

		_, err := repo.Create("Alice", &userID)
		require.Error(t, err)
		assert.True(t, apperrors.IsConstraint(err))
	})

	t.Run("Name too long", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewStaffRepository(db)

		mock.ExpectQuery(`INSERT INTO staff`).
			WillReturnError(&pq.Error{Code: "22001"})

		_, err := repo.Create(strings.Repeat("a", 200), nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestStaffRepository_GetOrCreateForUser(t *testing.T) {
	t.Run("Creates on first call", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewStaffRepository(db)
		userID := uuid.New()
		staffID := uuid.New()

		mock.ExpectExec(`INSERT INTO staff .* ON CONFLICT \(user_id\) DO NOTHING`).
			WithArgs(sqlmock.AnyArg(), "alice", userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT .* FROM staff WHERE user_id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(staffRowColumns).AddRow(staffID.String(), "alice", userID.String(), time.Now()))

		staff, created, err := repo.GetOrCreateForUser(userID, "alice")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, staffID, staff.ID)
		assert.Equal(t, userID, staff.UserID.UUID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Returns the existing profile", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewStaffRepository(db)
		userID := uuid.New()
		staffID := uuid.New()

		mock.ExpectExec(`INSERT INTO staff`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT .* FROM staff WHERE user_id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(staffRowColumns).AddRow(staffID.String(), "alice", userID.String(), time.Now()))

		staff, created, err := repo.GetOrCreateForUser(userID, "alice")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, staffID, staff.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Name too long", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewStaffRepository(db)

		mock.ExpectExec(`INSERT INTO staff`).WillReturnError(&pgconn.PgError{Code: "22001"})

		_, _, err := repo.GetOrCreateForUser(uuid.New(), strings.Repeat("a", 200))
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "Staff name is too long.", apperrors.Message(err, ""))
	})
}

func TestStaffRepository_GetByUserID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStaffRepository(db)

	mock.ExpectQuery(`SELECT .* FROM staff WHERE user_id`).WillReturnRows(sqlmock.NewRows(staffRowColumns))

	_, err := repo.GetByUserID(uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
