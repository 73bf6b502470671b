package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	svc, err := NewJWTService("test-secret", "15m")
	require.NoError(t, err)

	employeeID := "emp-1"
	token, expiresAt, err := svc.GenerateAccessToken(AccessClaims{
		SessionID:  "sess-1",
		UserID:     "user-1",
		Email:      "john@demo.com",
		EmployeeID: &employeeID,
		Role:       user.RoleEmployee,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Positive(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "sess-1", ClaimString(claims, "sid"))
	assert.Equal(t, "user-1", ClaimString(claims, "user_id"))
	assert.Equal(t, "emp-1", ClaimString(claims, "employee_id"))
	assert.Equal(t, "employee", ClaimString(claims, "role"))
	assert.Equal(t, "access", ClaimString(claims, "type"))
}

func TestNewJWTService_InvalidDuration(t *testing.T) {
	_, err := NewJWTService("secret", "fifteen minutes")
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	svc, err := NewJWTService("secret", "1h")
	require.NoError(t, err)

	assert.False(t, svc.IsTokenRevoked("abc"))
	svc.RevokeToken("abc")
	assert.True(t, svc.IsTokenRevoked("abc"))
}

func TestCallerFromContext(t *testing.T) {
	svc, err := NewJWTService("secret", "1h")
	require.NoError(t, err)

	employeeID := "emp-1"
	ctx, err := svc.NewContext(context.Background(), AccessClaims{
		SessionID:  "sess-1",
		UserID:     "user-1",
		Email:      "john@demo.com",
		EmployeeID: &employeeID,
		Role:       user.RoleEmployee,
	})
	require.NoError(t, err)

	caller, err := CallerFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", caller.SessionID)
	assert.Equal(t, "user-1", caller.UserID)
	require.NotNil(t, caller.EmployeeID)
	assert.Equal(t, "emp-1", *caller.EmployeeID)
	assert.False(t, caller.IsAdmin())
	assert.True(t, caller.CanAccessEmployee("emp-1"))
	assert.False(t, caller.CanAccessEmployee("emp-2"))
}

func TestCallerFromContext_Missing(t *testing.T) {
	_, err := CallerFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoCaller)
}
