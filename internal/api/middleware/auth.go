package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"loan-origination/internal/config"
	"loan-origination/internal/domain/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Headers read in place of a token when auth is disabled.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
	HeaderBranchID = "X-Branch-ID"
)

// ActorClaims carries the caller identity. Subject holds the user id.
type ActorClaims struct {
	Role     string `json:"role"`
	BranchID string `json:"branch_id,omitempty"`
	jwt.RegisteredClaims
}

func NewActorToken(secret string, actor identity.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ActorClaims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if actor.BranchID != uuid.Nil {
		claims.BranchID = actor.BranchID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// AuthMiddleware resolves the caller into an identity.Actor on the request context.
func AuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("component", "AuthMiddleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				actor identity.Actor
				err   error
			)
			if cfg.Enabled {
				actor, err = actorFromToken(r, cfg.JWTSecret)
			} else {
				actor, err = actorFromHeaders(r)
			}
			if err != nil {
				logger.WarnContext(r.Context(), "Rejected unauthenticated request", "path", r.URL.Path, "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Unauthorized"}}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithActor(r.Context(), actor)))
		})
	}
}

func actorFromToken(r *http.Request, secret string) (identity.Actor, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return identity.Actor{}, fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return identity.Actor{}, fmt.Errorf("invalid Authorization header format")
	}

	var claims ActorClaims
	token, err := jwt.ParseWithClaims(parts[1], &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return identity.Actor{}, fmt.Errorf("invalid token: %w", err)
	}

	return buildActor(claims.Subject, claims.Role, claims.BranchID)
}

func actorFromHeaders(r *http.Request) (identity.Actor, error) {
	return buildActor(r.Header.Get(HeaderUserID), r.Header.Get(HeaderUserRole), r.Header.Get(HeaderBranchID))
}

func buildActor(userID, role, branchID string) (identity.Actor, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return identity.Actor{}, fmt.Errorf("invalid user id: %w", err)
	}
	parsedRole, err := identity.ParseRole(role)
	if err != nil {
		return identity.Actor{}, err
	}
	actor := identity.Actor{UserID: uid, Role: parsedRole}
	if branchID != "" {
		if actor.BranchID, err = uuid.Parse(branchID); err != nil {
			return identity.Actor{}, fmt.Errorf("invalid branch id: %w", err)
		}
	}
	return actor, nil
}
