package implementation

import (
	"context"
	"testing"
	"time"

	"notekeeper-be/internal/repository/specification"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "full_name", "password_hash", "created_at", "updated_at", "deleted_at"}

func TestUserFindOneByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "a@x.com", "A", "$2a$hash", now, now, nil))

	user, err := repo.FindOne(context.Background(), specification.ByEmail{Email: "a@x.com"})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.Id)
	assert.Equal(t, "A", user.FullName)
	assert.Equal(t, "$2a$hash", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindOneMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindOne(context.Background(), specification.ByID{ID: uuid.New()})
	assert.NoError(t, err)
	assert.Nil(t, user)
}
