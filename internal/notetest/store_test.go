package notetest

import (
	"context"
	"testing"
	"time"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNoteRepositoryScopesByOwner(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	note := store.SeedNote(entity.Note{Title: "T", Content: "C", UserId: owner})

	repo := store.Factory().NewUnitOfWork(ctx).NoteRepository()

	found, err := repo.FindOne(ctx, specification.OwnedNote(note.Id, owner)...)
	require.NoError(t, err)
	require.NotNil(t, found)

	found, err = repo.FindOne(ctx, specification.OwnedNote(note.Id, other)...)
	require.NoError(t, err)
	assert.Nil(t, found)

	removed, err := repo.Delete(ctx, specification.OwnedNote(note.Id, other)...)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, 1, store.NoteCount())
}

func TestFindAllOrdersByCreation(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	owner := uuid.New()
	base := time.Now()
	second := store.SeedNote(entity.Note{Title: "2", UserId: owner, CreatedAt: base.Add(time.Second)})
	first := store.SeedNote(entity.Note{Title: "1", UserId: owner, CreatedAt: base})

	notes, err := store.Factory().NewUnitOfWork(ctx).NoteRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: owner},
		specification.OrderBy{Field: "created_at"},
	)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, first.Id, notes[0].Id)
	assert.Equal(t, second.Id, notes[1].Id)
}

func TestUserRepositoryRejectsDuplicateEmail(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repo := store.Factory().NewUnitOfWork(ctx).UserRepository()

	require.NoError(t, repo.Create(ctx, &entity.User{Email: "a@x.com"}))
	err := repo.Create(ctx, &entity.User{Email: "a@x.com"})

	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Equal(t, 1, store.UserCount())
}
