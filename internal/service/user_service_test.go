package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/repository"
)

// racingUsers 预检查总说“未占用”，模拟两个注册请求同时通过预检查
type racingUsers struct {
	repository.UserRepository
}

func (racingUsers) UsernameTaken(context.Context, string) (bool, error) { return false, nil }
func (racingUsers) EmailTaken(context.Context, string) (bool, error)    { return false, nil }

func TestRegister_StoresHashNotPassword(t *testing.T) {
	e := setupEnv(t, nil)
	u := e.register(t, "susan")

	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "pw-susan", u.PasswordHash)
	assert.True(t, e.users.passwords.CheckPassword(u.PasswordHash, "pw-susan"))
	assert.False(t, e.users.passwords.CheckPassword(u.PasswordHash, "dog"))
	assert.False(t, u.Joined.IsZero())
}

func TestRegister_DuplicateUsernameIgnoresCase(t *testing.T) {
	e := setupEnv(t, nil)
	e.register(t, "Susan")

	in := validInput("sUSAN")
	in.Email = "other@example.com"
	_, err := e.users.Register(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "username", apperror.FieldOf(err))
}

func TestRegister_DuplicateEmailIgnoresCase(t *testing.T) {
	e := setupEnv(t, nil)
	e.register(t, "susan")

	in := validInput("someone")
	in.Email = "SUSAN@EXAMPLE.com"
	_, err := e.users.Register(context.Background(), in)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "email", apperror.FieldOf(err))
}

func TestRegister_UniqueIndexConflictNotBlamedOnUsername(t *testing.T) {
	e := setupEnv(t, nil)
	e.register(t, "susan")
	e.users.users = racingUsers{UserRepository: e.users.users}

	in := validInput("someone")
	in.Email = "SUSAN@example.com"
	_, err := e.users.Register(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Empty(t, apperror.FieldOf(err))
}

func TestValidUsername(t *testing.T) {
	for _, ok := range []string{"susan", "bob.smith-2_x", "Zoë", "a"} {
		assert.True(t, ValidUsername(ok), ok)
	}
	for _, bad := range []string{"bob/x", ".", "..", "a b", "x?y", "%2F", "-_."} {
		assert.False(t, ValidUsername(bad), bad)
	}
}

func TestRegister_RejectsUnroutableUsername(t *testing.T) {
	e := setupEnv(t, nil)
	for _, name := range []string{"bob/x", ".."} {
		in := validInput("valid")
		in.Username = name
		_, err := e.users.Register(context.Background(), in)
		assert.ErrorIs(t, err, apperror.ErrValidation, name)
		assert.Equal(t, "username", apperror.FieldOf(err), name)
	}
}

func TestRegister_FieldValidation(t *testing.T) {
	e := setupEnv(t, nil)
	ctx := context.Background()

	cases := map[string]func(in *RegisterInput){
		"username":   func(in *RegisterInput) { in.Username = "  " },
		"first_name": func(in *RegisterInput) { in.FirstName = "" },
		"email":      func(in *RegisterInput) { in.Email = "not-an-email" },
		"birthday":   func(in *RegisterInput) { in.Birthday = nil },
		"password":   func(in *RegisterInput) { in.Password = strings.Repeat("p", 80) },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			in := validInput("valid")
			mutate(&in)
			_, err := e.users.Register(ctx, in)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, field, apperror.FieldOf(err))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	e := setupEnv(t, nil)
	ctx := context.Background()
	u := e.register(t, "susan")

	got, err := e.users.Authenticate(ctx, "susan", "pw-susan")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, wrongPass := e.users.Authenticate(ctx, "susan", "dog")
	_, unknown := e.users.Authenticate(ctx, "nobody", "pw-susan")
	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestTouchUpdatesLastSeen(t *testing.T) {
	e := setupEnv(t, nil)
	ctx := context.Background()
	u := e.register(t, "susan")

	require.NoError(t, e.users.Touch(ctx, u.ID))
	got, err := e.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.LastSeen.After(got.Joined))
}

func TestGetByUsername(t *testing.T) {
	e := setupEnv(t, nil)
	ctx := context.Background()
	u := e.register(t, "susan")

	got, err := e.users.GetByUsername(ctx, "susan")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = e.users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
