package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/utils"
)

func TestAuthService_Login(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "agent@crm.test", constants.RoleEmployee, nil)

	got, tokens, err := env.auth.Login("Agent@CRM.test", "password123")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	claims, err := utils.ParseToken("test-secret", tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, constants.RoleEmployee, claims.Role)

	// Successful login records the timestamp.
	got, err = env.userRepo.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
}

func TestAuthService_LoginRejections(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "agent@crm.test", constants.RoleEmployee, nil)

	_, _, err := env.auth.Login("nobody@crm.test", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = env.auth.Login("agent@crm.test", "wrongpassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	user.IsActive = false
	require.NoError(t, env.userRepo.Update(user))
	_, _, err = env.auth.Login("agent@crm.test", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RefreshKeepsTokenRole(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "agent@crm.test", constants.RoleEmployee, nil)

	_, tokens, err := env.auth.Login("agent@crm.test", "password123")
	require.NoError(t, err)

	// A role change after issuance does not affect tokens minted from the
	// old refresh token; the new access token carries the claims as signed.
	user.Role = constants.RoleManager
	require.NoError(t, env.userRepo.Update(user))

	accessToken, err := env.auth.Refresh(tokens.RefreshToken)
	require.NoError(t, err)

	claims, err := utils.ParseToken("test-secret", accessToken)
	require.NoError(t, err)
	require.Equal(t, constants.RoleEmployee, claims.Role)
}

func TestAuthService_RefreshRejectsGarbage(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.auth.Refresh("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
