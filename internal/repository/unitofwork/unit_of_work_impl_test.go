package unitofwork

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockFactory(t *testing.T) (RepositoryFactory, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewRepositoryFactory(db), mock
}

func TestUnitOfWorkCommit(t *testing.T) {
	factory, mock := newMockFactory(t)
	uow := factory.NewUnitOfWork(context.Background())

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, uow.Begin(context.Background()))
	assert.ErrorIs(t, uow.Begin(context.Background()), ErrTxAlreadyStarted)
	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.NoteRepository())
	require.NoError(t, uow.Commit())

	// deferred Rollback after Commit is a no-op
	assert.ErrorIs(t, uow.Rollback(), ErrNoTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWorkRollback(t *testing.T) {
	factory, mock := newMockFactory(t)
	uow := factory.NewUnitOfWork(context.Background())

	mock.ExpectBegin()
	mock.ExpectRollback()

	require.NoError(t, uow.Begin(context.Background()))
	require.NoError(t, uow.Rollback())
	assert.ErrorIs(t, uow.Commit(), ErrNoTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}
