package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/parrilla/backoffice/access"
)

// Auth issues and checks HS256 bearer tokens carrying a user and a role.
// A nil *Auth disables authentication; every request then acts as admin.
type Auth struct {
	ja  *jwtauth.JWTAuth
	ttl time.Duration
}

func NewAuth(secret string, ttl time.Duration) *Auth {
	return &Auth{
		ja:  jwtauth.New("HS256", []byte(secret), nil, jwt.WithAcceptableSkew(30*time.Second)),
		ttl: ttl,
	}
}

// IssueToken signs a token for user with role.
func (a *Auth) IssueToken(user string, role access.Role) (string, error) {
	if _, err := access.ParseRole(string(role)); err != nil {
		return "", err
	}
	claims := map[string]interface{}{
		"sub":  user,
		"role": string(role),
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, a.ttl)
	_, token, err := a.ja.Encode(claims)
	return token, err
}

// verify loads the bearer token into the request context.
func (a *Auth) verify(next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	return jwtauth.Verifier(a.ja)(next)
}

// authenticated rejects requests without a valid token.
func (a *Auth) authenticated(next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid token", errDetails(err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// require gates a route group on a module of the caller's role.
func (a *Auth) require(m access.Module) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if a == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := principal(r)
			if !access.For(role).Allows(m) {
				writeError(w, http.StatusForbidden, "forbidden", "Role "+string(role)+" cannot use "+string(m), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// principal returns the caller's role and user name. Without a token in the
// context the caller is an anonymous admin.
func principal(r *http.Request) (access.Role, string) {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return access.RoleAdmin, ""
	}
	role, _ := claims["role"].(string)
	user, _ := claims["sub"].(string)
	return access.Role(role), user
}

// actor names who performed a write: the token's user, else fallback.
func actor(r *http.Request, fallback string) string {
	if _, user := principal(r); user != "" {
		return user
	}
	return fallback
}

var errNoToken = errors.New("no token")

func errDetails(err error) any {
	if err == nil {
		err = errNoToken
	}
	return err.Error()
}
