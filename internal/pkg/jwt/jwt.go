package jwt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// AccessClaims is the payload carried by an access token.
type AccessClaims struct {
	SessionID  string
	UserID     string
	Email      string
	EmployeeID *string
	Role       user.Role
}

type Service interface {
	GenerateAccessToken(claims AccessClaims) (token string, expiresAt int64, err error)
	AccessTokenTTL() time.Duration
	JWTAuth() *jwtauth.JWTAuth
	NewContext(ctx context.Context, claims AccessClaims) (context.Context, error)
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenTTL time.Duration
	tokenAuth      *jwtauth.JWTAuth
	revokedTokens  map[string]int64
	mu             sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) AccessTokenTTL() time.Duration {
	return j.accessTokenTTL
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	ttl, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("parse access token expiration: %w", err)
	}
	return &JWTService{
		accessTokenTTL: ttl,
		tokenAuth:      jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:  make(map[string]int64),
	}, nil
}

func (j *JWTService) GenerateAccessToken(c AccessClaims) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenTTL).Unix()

	claims := map[string]interface{}{
		"sid":         c.SessionID,
		"user_id":     c.UserID,
		"email":       c.Email,
		"employee_id": j.returnValueOrNil(c.EmployeeID),
		"role":        string(c.Role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = time.Now().Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

func (j *JWTService) returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

// ErrNoCaller is returned when the context carries no access token.
var ErrNoCaller = errors.New("no authenticated caller in context")

// Caller is the authenticated principal of a request.
type Caller struct {
	SessionID  string
	UserID     string
	Email      string
	EmployeeID *string
	Role       user.Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == user.RoleAdmin
}

// CanAccessEmployee mirrors user.User.CanAccessEmployee for token claims.
func (c Caller) CanAccessEmployee(employeeID string) bool {
	u := user.User{Role: c.Role, EmployeeID: c.EmployeeID}
	return u.CanAccessEmployee(employeeID)
}

// CallerFromContext reads the verified access token placed in ctx by the
// jwtauth verifier.
func CallerFromContext(ctx context.Context) (Caller, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Caller{}, fmt.Errorf("%w: %v", ErrNoCaller, err)
	}
	userID := ClaimString(claims, "user_id")
	if userID == "" {
		return Caller{}, ErrNoCaller
	}
	c := Caller{
		SessionID: ClaimString(claims, "sid"),
		UserID:    userID,
		Email:     ClaimString(claims, "email"),
		Role:      user.Role(ClaimString(claims, "role")),
	}
	if id := ClaimString(claims, "employee_id"); id != "" {
		c.EmployeeID = &id
	}
	return c, nil
}

// NewContext returns ctx carrying a freshly signed token for claims, as the
// verifier middleware would leave it.
func (j *JWTService) NewContext(ctx context.Context, claims AccessClaims) (context.Context, error) {
	tokenString, _, err := j.GenerateAccessToken(claims)
	if err != nil {
		return nil, err
	}
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	return jwtauth.NewContext(ctx, token, nil), nil
}

// ClaimString reads a string claim, returning "" when absent or mistyped.
func ClaimString(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}
