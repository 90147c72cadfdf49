package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"triviarooms/internal/roomcode"
	"triviarooms/internal/service"
)

type contextKey string

const (
	CuratorIDKey contextKey = "curatorId"
	PlayerIDKey  contextKey = "playerId"
	RoomCodeKey  contextKey = "roomCode"
	IsHostKey    contextKey = "isHost"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireCurator validates curator JWT from Authorization header
func (m *AuthMiddleware) RequireCurator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			deny(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		claims, err := m.authSvc.ValidateCuratorToken(token)
		if err != nil {
			deny(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), CuratorIDKey, claims.CuratorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePlayer validates a player JWT from the Authorization header or the
// token query param, and checks it was issued for the room in the path.
func (m *AuthMiddleware) RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			// Try query param for WebSocket
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			deny(w, http.StatusUnauthorized, "missing authorization")
			return
		}

		claims, err := m.authSvc.ValidatePlayerToken(token)
		if err != nil {
			deny(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if code, ok := mux.Vars(r)["code"]; ok && roomcode.Normalize(code) != claims.RoomCode {
			deny(w, http.StatusForbidden, "token is for another room")
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, PlayerIDKey, claims.PlayerID)
		ctx = context.WithValue(ctx, RoomCodeKey, claims.RoomCode)
		ctx = context.WithValue(ctx, IsHostKey, claims.IsHost)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireHost is RequirePlayer restricted to the room's host token. The
// services check host identity again against the stored room.
func (m *AuthMiddleware) RequireHost(next http.Handler) http.Handler {
	return m.RequirePlayer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsHost(r.Context()) {
			deny(w, http.StatusForbidden, "only the host may do this")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// GetCuratorID extracts curator ID from context
func GetCuratorID(ctx context.Context) string {
	if v, ok := ctx.Value(CuratorIDKey).(string); ok {
		return v
	}
	return ""
}

// GetPlayerID extracts player ID from context
func GetPlayerID(ctx context.Context) string {
	if v, ok := ctx.Value(PlayerIDKey).(string); ok {
		return v
	}
	return ""
}

// GetRoomCode extracts room code from context
func GetRoomCode(ctx context.Context) string {
	if v, ok := ctx.Value(RoomCodeKey).(string); ok {
		return v
	}
	return ""
}

func IsHost(ctx context.Context) bool {
	v, _ := ctx.Value(IsHostKey).(bool)
	return v
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
