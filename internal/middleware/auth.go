package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const ActorContextKey contextKey = "actor"

// ActorContext is the resolved caller identity the pipeline consumes for
// scoping and audit logging. Authentication itself happens upstream; this
// middleware only unpacks the already-issued token.
type ActorContext struct {
	UserID        uint
	UserType      string // "beneficiary" | "admin"
	BeneficiaryID uint   // set for beneficiary callers
	CompanyScope  []uint // admin callers may be restricted to these companies
	IP            string
	UserAgent     string
}

// IsAdmin reports whether the caller uses the administrative channel
func (a *ActorContext) IsAdmin() bool {
	return a.UserType == "admin"
}

// Channel returns the access channel recorded in audit rows
func (a *ActorContext) Channel() string {
	if a.IsAdmin() {
		return "admin"
	}
	return "beneficiary"
}

// Auth verifies the bearer JWT and stores an ActorContext on the request
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			// Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := validateToken(parts[1], jwtSecret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			actor := actorFromClaims(claims)
			actor.IP = ClientIP(r)
			actor.UserAgent = r.UserAgent()

			ctx := context.WithValue(r.Context(), ActorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom extracts the actor stored by Auth
func ActorFrom(ctx context.Context) (*ActorContext, bool) {
	actor, ok := ctx.Value(ActorContextKey).(*ActorContext)
	return actor, ok
}

// ClientIP resolves the originating client IP, honoring X-Forwarded-For
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.Index(fwd, ","); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// validateToken parses and validates a token
func validateToken(tokenString string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// actorFromClaims maps token claims onto the actor context
func actorFromClaims(claims jwt.MapClaims) *ActorContext {
	actor := &ActorContext{}
	if v, ok := claims["id"].(float64); ok {
		actor.UserID = uint(v)
	}
	if v, ok := claims["userType"].(string); ok {
		actor.UserType = v
	}
	if v, ok := claims["beneficiaryId"].(float64); ok {
		actor.BeneficiaryID = uint(v)
	}
	if scope, ok := claims["companyScope"].([]interface{}); ok {
		for _, entry := range scope {
			if id, ok := entry.(float64); ok {
				actor.CompanyScope = append(actor.CompanyScope, uint(id))
			}
		}
	}
	return actor
}
