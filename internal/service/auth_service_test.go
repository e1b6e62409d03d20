package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/notetest"
	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/token"
	"notekeeper-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	store    *notetest.Store
	tokens   *token.Manager
	mailbox  *notetest.Mailbox
	activity *notetest.ActivityRecorder
	svc      IAuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	tokens, err := token.NewManager("test-secret", time.Hour, nil)
	require.NoError(t, err)

	f := &authFixture{
		store:    notetest.NewStore(),
		tokens:   tokens,
		mailbox:  &notetest.Mailbox{},
		activity: &notetest.ActivityRecorder{},
	}
	f.svc = NewAuthService(f.store.Factory(), tokens, f.mailbox, f.activity, logger.NewNopLogger(), bcrypt.MinCost)
	return f
}

func requireKind(t *testing.T, err error, kind apperror.Kind, message string) {
	t.Helper()
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, kind, appErr.Kind)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "  Ada Lovelace ",
		Email:    " Ada@X.com ",
		Password: "secret1",
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@x.com", res.User.Email)
	assert.Equal(t, "Ada Lovelace", res.User.FullName)
	assert.False(t, res.User.CreatedOn.IsZero())

	userID, err := f.tokens.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.Id, userID)

	assert.Equal(t, 1, f.store.UserCount())
	assert.Equal(t, 1, f.store.Commits)
	assert.Equal(t, []string{events.UserRegistered}, f.activity.Types())
	assert.Eventually(t, func() bool {
		return len(f.mailbox.Sent()) == 1 && f.mailbox.Sent()[0] == "ada@x.com"
	}, time.Second, 10*time.Millisecond)
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, &dto.RegisterRequest{FullName: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	stored, err := f.store.Factory().NewUnitOfWork(ctx).UserRepository().FindOne(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, res.User.Id, stored.Id)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, &dto.RegisterRequest{FullName: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, &dto.RegisterRequest{FullName: "B", Email: "A@x.com", Password: "other-secret"})
	requireKind(t, err, apperror.KindConflict, "user with this email already exists")
	assert.Equal(t, 1, f.store.UserCount())
	assert.Equal(t, 1, f.store.Rollbacks)
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name string
		req  dto.RegisterRequest
		msg  string
	}{
		{"blank name", dto.RegisterRequest{FullName: "   ", Email: "a@x.com", Password: "secret1"}, "fullName is required"},
		{"blank email", dto.RegisterRequest{FullName: "A", Email: " ", Password: "secret1"}, "email is required"},
		{"short password", dto.RegisterRequest{FullName: "A", Email: "a@x.com", Password: "12345"}, "password must be at least 6 characters"},
		{"empty password", dto.RegisterRequest{FullName: "A", Email: "a@x.com"}, "password must be at least 6 characters"},
		{"password over bcrypt limit", dto.RegisterRequest{FullName: "A", Email: "a@x.com", Password: strings.Repeat("é", 40)}, "password must be at most 72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), &tt.req)
			requireKind(t, err, apperror.KindValidation, tt.msg)
		})
	}
	assert.Zero(t, f.store.UserCount())
}

func TestRegisterStoreFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.store.FailWith(errors.New("connection reset"))

	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{FullName: "A", Email: "a@x.com", Password: "secret1"})

	requireKind(t, err, apperror.KindInternal, "Internal Server Error!")
	assert.Empty(t, f.activity.Types())
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, &dto.RegisterRequest{FullName: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "  A@X.COM", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", res.Email)
	userID, err := f.tokens.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.Id, userID)
	assert.Equal(t, []string{events.UserRegistered, events.UserLogin}, f.activity.Types())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, &dto.RegisterRequest{FullName: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: "secret2"})
	_, unknownEmail := f.svc.Login(ctx, &dto.LoginRequest{Email: "nobody@x.com", Password: "secret1"})

	requireKind(t, wrongPassword, apperror.KindNotFound, "Invalid Credentials!")
	requireKind(t, unknownEmail, apperror.KindNotFound, "Invalid Credentials!")
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginRejectsPasswordExtendingStoredOne(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	password := strings.Repeat("a", 72)
	_, err := f.svc.Register(ctx, &dto.RegisterRequest{FullName: "A", Email: "a@x.com", Password: password})
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: password + "WRONG"})
	assert.Nil(t, res)
	requireKind(t, err, apperror.KindNotFound, "Invalid Credentials!")

	res, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: password})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", res.Email)
}
