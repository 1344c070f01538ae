package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/barberkas/api/internal/auth"
	"github.com/barberkas/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const claimsKey contextKey = "claims"

// Authenticate verifies the bearer access token and stores its claims in the
// request context. The user, role and branch are added to the request logger
// so the access log line of RequestLogger carries them.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, msg := bearerToken(r)
			if msg != "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": msg})
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, token)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("reject token")
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token tidak valid"})
				return
			}

			// No-op when RequestLogger is not in the chain.
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.
					Str("user_id", claims.UserID.String()).
					Str("role", claims.Role).
					Str("user_branch_id", claims.BranchID.String())
			})

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (token, msg string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "header Authorization wajib diisi"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", "format Authorization tidak valid"
	}
	return strings.TrimSpace(token), ""
}

// RequireBranch guards routes under /branches/{bid}. OWNER may open any
// branch; ADMIN and CASHIER only the branch their token was issued for.
func RequireBranch(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "belum login"})
			return
		}

		bid, err := uuid.Parse(chi.URLParam(r, "bid"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ID cabang tidak valid"})
			return
		}

		if claims.Role != enum.UserRoleOwner && claims.BranchID != bid {
			deny(r, "branch", "branch_id", bid.String())
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "akses ke cabang ini ditolak"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRole lets through only the listed roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	want := strings.Join(roles, ",")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "belum login"})
				return
			}

			if _, ok := allowed[claims.Role]; !ok {
				deny(r, "role", "required_roles", want)
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "hak akses tidak mencukupi"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func deny(r *http.Request, reason, key, value string) {
	lg := zerolog.Ctx(r.Context())
	if lg.GetLevel() == zerolog.Disabled {
		lg = &log.Logger
	}
	lg.Warn().Str("reason", reason).Str(key, value).Str("path", r.URL.Path).Msg("access denied")
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode middleware response")
	}
}
