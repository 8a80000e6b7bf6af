package service

import (
	"context"
	"errors"
	"testing"

	"ecommerce-platform/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		userID      int64
		mockReturn  *model.User
		mockError   error
		expectError error
	}{
		{
			name:       "Success",
			userID:     7,
			mockReturn: &testUser,
		},
		{
			name:        "User not found",
			userID:      99,
			expectError: model.ErrUserNotFound,
		},
		{
			name:      "Repository error",
			userID:    7,
			mockError: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			repo.On("GetByID", ctx, tt.userID).Return(tt.mockReturn, tt.mockError)

			svc := NewUserService(repo, zerolog.Nop())

			user, err := svc.Get(ctx, tt.userID)

			switch {
			case tt.expectError != nil:
				require.Error(t, err)
				assert.Equal(t, tt.expectError, err)
			case tt.mockError != nil:
				require.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.mockReturn, user)
			}
		})
	}
}

func TestUserService_Delete_Idempotence(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)

	repo.On("Delete", ctx, int64(7)).Return(true, nil).Once()
	repo.On("Delete", ctx, int64(7)).Return(false, nil).Once()

	svc := NewUserService(repo, zerolog.Nop())

	require.NoError(t, svc.Delete(ctx, 7))

	err := svc.Delete(ctx, 7)
	require.Error(t, err)
	assert.Equal(t, model.ErrUserNotFound, err)
}

func TestUserService_UpdateName(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)

	renamed := testUser
	renamed.Name = "Grace"
	repo.On("UpdateName", ctx, int64(7), "Grace").Return(&renamed, nil)

	svc := NewUserService(repo, zerolog.Nop())

	user, err := svc.UpdateName(ctx, 7, "Grace")
	require.NoError(t, err)
	assert.Equal(t, "Grace", user.Name)
}
