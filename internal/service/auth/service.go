package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	user.UserRepository
	employee.EmployeeRepository
	auth.SessionStore
	jwt.Service
}

func NewAuthService(userRepository user.UserRepository, employeeRepository employee.EmployeeRepository, sessionStore auth.SessionStore, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository:     userRepository,
		EmployeeRepository: employeeRepository,
		SessionStore:       sessionStore,
		Service:            jwtService,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(loginReq.Email))

	userData, err := a.UserRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, user.ErrUserInactive
	}

	now := time.Now().UTC()
	session := auth.Session{
		ID: uuid.Must(uuid.NewV7()).String(),
		Principal: auth.Principal{
			UserID:     userData.ID,
			EmployeeID: userData.EmployeeID,
			Role:       userData.Role,
		},
		IPAddress: sessionTrackReq.IPAddress,
		UserAgent: sessionTrackReq.UserAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(a.Service.AccessTokenTTL()),
	}
	if err := a.SessionStore.Create(ctx, session); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create session: %w", err)
	}

	token, expiresAt, err := a.Service.GenerateAccessToken(jwt.AccessClaims{
		SessionID:  session.ID,
		UserID:     userData.ID,
		Email:      userData.Email,
		EmployeeID: userData.EmployeeID,
		Role:       userData.Role,
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	me, err := a.buildMe(ctx, userData)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return auth.TokenResponse{
		AccessToken:          token,
		AccessTokenExpiresIn: expiresAt,
		TokenType:            "Bearer",
		User:                 me,
	}, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context) error {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return auth.ErrInvalidToken
	}
	if caller.SessionID == "" {
		return auth.ErrInvalidToken
	}
	if err := a.SessionStore.Revoke(ctx, caller.SessionID); err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (auth.MeResponse, error) {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return auth.MeResponse{}, auth.ErrInvalidToken
	}
	userData, err := a.UserRepository.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.MeResponse{}, auth.ErrUserNotFound
		}
		return auth.MeResponse{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return a.buildMe(ctx, userData)
}

func (a *AuthServiceImpl) buildMe(ctx context.Context, userData user.User) (auth.MeResponse, error) {
	me := auth.MeResponse{
		ID:         userData.ID,
		Email:      userData.Email,
		Role:       string(userData.Role),
		EmployeeID: userData.EmployeeID,
	}
	if userData.EmployeeID == nil {
		return me, nil
	}
	emp, err := a.EmployeeRepository.GetByID(ctx, *userData.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return me, nil
		}
		return auth.MeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	me.FullName = &emp.FullName
	return me, nil
}
