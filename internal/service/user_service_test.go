package service

import (
	"context"
	"testing"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/notetest"
	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	store := notetest.NewStore()
	user := store.SeedUser(entity.User{Email: "a@x.com", FullName: "A", PasswordHash: "hash"})
	svc := NewUserService(store.Factory(), logger.NewNopLogger())

	res, err := svc.GetProfile(context.Background(), user.Id)
	require.NoError(t, err)

	assert.Equal(t, user.Id, res.Id)
	assert.Equal(t, "a@x.com", res.Email)
	assert.Equal(t, "A", res.FullName)
	assert.True(t, user.CreatedAt.Equal(res.CreatedOn))
}

func TestGetProfileUnknownUser(t *testing.T) {
	svc := NewUserService(notetest.NewStore().Factory(), logger.NewNopLogger())

	_, err := svc.GetProfile(context.Background(), uuid.New())
	requireKind(t, err, apperror.KindUnauthorized, "User Not Found!")
}
