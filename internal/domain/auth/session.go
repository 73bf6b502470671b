package auth

import (
	"context"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/user"
)

// Principal is what a bearer credential resolves to.
type Principal struct {
	UserID     string
	EmployeeID *string
	Role       user.Role
}

type Session struct {
	ID        string
	Principal Principal
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session can still authenticate requests at now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// SessionStore keeps login sessions. The local implementation lives in memory
// for demo mode; the remote one persists to the database.
type SessionStore interface {
	Create(ctx context.Context, session Session) error
	// Resolve returns the principal of an active session.
	Resolve(ctx context.Context, sessionID string) (Principal, error)
	Revoke(ctx context.Context, sessionID string) error
	// DeleteExpired removes sessions that expired before the given time.
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}
