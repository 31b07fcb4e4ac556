package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-todo-list/internal/auth"
	"go-todo-list/internal/model"
	"go-todo-list/pkg/apierror"
)

type tokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

// tokenCookies are checked in order when no bearer header is sent.
var tokenCookies = []string{"token", "jwt"}

type AuthMiddleware struct {
	verifier tokenVerifier
}

func NewAuthMiddleware(verifier tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth accepts the token from the Authorization header or from a
// session cookie. The header wins when both are present.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return m.require(TokenFromRequest, next)
}

// RequireBearer only looks at the Authorization header.
func (m *AuthMiddleware) RequireBearer(next http.Handler) http.Handler {
	return m.require(bearerToken, next)
}

func (m *AuthMiddleware) require(locate func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := locate(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, apierror.CodeUnauthenticated, model.ErrMissingToken.Error())
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, apierror.CodeInvalidToken, model.ErrInvalidToken.Error())
			return
		}

		recordUser(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (m *AuthMiddleware) RequireRoles(allowedRoles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, apierror.CodeUnauthenticated, model.ErrUnauthenticated.Error())
				return
			}

			if !auth.HasRole(claims.Identity(), allowedRoles...) {
				writeError(w, http.StatusForbidden, apierror.CodeForbidden, model.ErrForbidden.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return model.Identity{}, false
	}
	return claims.Identity(), true
}

func TokenFromRequest(r *http.Request) string {
	if token := bearerToken(r); token != "" {
		return token
	}

	for _, name := range tokenCookies {
		if cookie, err := r.Cookie(name); err == nil && strings.TrimSpace(cookie.Value) != "" {
			return strings.TrimSpace(cookie.Value)
		}
	}

	return ""
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}

	return strings.TrimSpace(header[7:])
}
