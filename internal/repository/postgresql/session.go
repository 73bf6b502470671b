package postgresql

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// SessionRepository is the remote auth.SessionStore. Session IDs travel inside
// access tokens, so only their hash is stored.
type SessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// hashSessionID hashes the input string using SHA256 and encodes the result in base64.
func hashSessionID(id string) string {
	hash := sha256.Sum256([]byte(id))
	return base64.StdEncoding.EncodeToString(hash[:])
}

func (r *SessionRepository) Create(ctx context.Context, session auth.Session) error {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO sessions (id_hash, user_id, ip_address, user_agent, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := q.Exec(ctx, query,
		hashSessionID(session.ID),
		session.Principal.UserID,
		session.IPAddress,
		session.UserAgent,
		createdAt.UTC(),
		session.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Resolve reads the role and employee link from the user row, so a role change
// or deactivation applies to sessions that are already open.
func (r *SessionRepository) Resolve(ctx context.Context, sessionID string) (auth.Principal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT s.revoked_at, s.expires_at, u.id, u.employee_id, u.role, u.is_active
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id_hash = $1
	`
	var (
		revokedAt *time.Time
		expiresAt time.Time
		active    bool
		p         auth.Principal
	)
	err := q.QueryRow(ctx, query, hashSessionID(sessionID)).Scan(&revokedAt, &expiresAt, &p.UserID, &p.EmployeeID, &p.Role, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Principal{}, auth.ErrSessionNotFound
		}
		return auth.Principal{}, err
	}

	if revokedAt != nil || !active {
		return auth.Principal{}, auth.ErrSessionRevoked
	}
	if !expiresAt.After(time.Now()) {
		return auth.Principal{}, auth.ErrSessionExpired
	}
	return p, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, sessionID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE sessions
		SET revoked_at = COALESCE(revoked_at, NOW())
		WHERE id_hash = $1
	`
	tag, err := q.Exec(ctx, query, hashSessionID(sessionID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

var _ auth.SessionStore = (*SessionRepository)(nil)
