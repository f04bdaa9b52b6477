package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testdb"
	"github.com/pageza/foodgram/backend/internal/types"
)

func registerRequest(username string) *types.RegisterRequest {
	return &types.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Ann",
		LastName:  "Lee",
		Password:  "long-enough-pass",
	}
}

func TestRegister(t *testing.T) {
	db := testdb.NewSQLite(t)
	users := service.NewUserService(db).WithHashCost(bcrypt.MinCost)
	ctx := context.Background()

	req := registerRequest("ann")
	req.Email = "  Ann@Example.com "
	got, err := users.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, "ann", got.Username)
	assert.False(t, got.IsSubscribed)

	var stored models.User
	require.NoError(t, db.First(&stored, got.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("long-enough-pass")))

	t.Run("duplicate email and username", func(t *testing.T) {
		_, err := users.Register(ctx, registerRequest("ann"))
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "email")
		assert.Contains(t, verr.Fields, "username")
	})

	t.Run("reserved username", func(t *testing.T) {
		_, err := users.Register(ctx, registerRequest("me"))
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "username")
	})

	t.Run("invalid username characters", func(t *testing.T) {
		_, err := users.Register(ctx, registerRequest("no spaces"))
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "username")
	})
}

func TestUserGetAndList(t *testing.T) {
	db := testdb.NewSQLite(t)
	users := service.NewUserService(db)
	ctx := context.Background()

	viewer := testdb.CreateUser(t, db, "viewer")
	followed := testdb.CreateUser(t, db, "followed")
	testdb.CreateUser(t, db, "stranger")
	testdb.Subscribe(t, db, viewer, followed)

	got, err := users.Get(ctx, followed.ID, &viewer.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSubscribed)

	got, err = users.Get(ctx, followed.ID, nil)
	require.NoError(t, err)
	assert.False(t, got.IsSubscribed)

	_, err = users.Get(ctx, 999, nil)
	assert.ErrorIs(t, err, service.ErrNotFound)

	list, total, err := users.List(ctx, &viewer.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 3)
	assert.Equal(t, []bool{false, true, false}, []bool{list[0].IsSubscribed, list[1].IsSubscribed, list[2].IsSubscribed})

	list, _, err = users.List(ctx, nil, 2, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "stranger", list[0].Username)
}

func TestSetPassword(t *testing.T) {
	db := testdb.NewSQLite(t)
	users := service.NewUserService(db).WithHashCost(bcrypt.MinCost)
	ctx := context.Background()
	user := testdb.CreateUser(t, db, "user")

	err := users.SetPassword(ctx, user.ID, &types.SetPasswordRequest{NewPassword: "brand-new-pass", CurrentPassword: "wrong"})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "current_password")

	require.NoError(t, users.SetPassword(ctx, user.ID, &types.SetPasswordRequest{
		NewPassword:     "brand-new-pass",
		CurrentPassword: testdb.Password,
	}))

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("brand-new-pass")))
}
