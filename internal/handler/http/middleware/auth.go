package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired accepts requests carrying a verified access token whose
// session is still live in the store. A role change or deactivation since
// login invalidates the token.
func AuthRequired(sessions auth.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if jwt.ClaimString(claims, "type") != "access" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			caller, err := jwt.CallerFromContext(r.Context())
			if err != nil || caller.SessionID == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			principal, err := sessions.Resolve(r.Context(), caller.SessionID)
			if err != nil {
				response.HandleError(w, err)
				return
			}
			if principal.UserID != caller.UserID || principal.Role != caller.Role {
				response.HandleError(w, auth.ErrSessionRevoked)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
