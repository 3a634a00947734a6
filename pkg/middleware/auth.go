package middleware

import (
	"context"
	"net/http"
	"strings"

	"condobook/pkg/logger"
	"condobook/pkg/model"
)

const identityKey contextKey = "identity"

type TokenParser interface {
	Parse(token string) (model.Identity, error)
}

// Authenticate resolves the bearer token into an identity stored on the
// request context. Paths listed in public skip authentication.
func Authenticate(tokens TokenParser, log *logger.Logger, public ...string) func(http.Handler) http.Handler {
	open := make(map[string]struct{}, len(public))
	for _, p := range public {
		open[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := open[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
				return
			}

			identity, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				log.Warn("Rejected bearer token",
					"request_id", requestIDFrom(r),
					"path", r.URL.Path,
					"error", err,
				)
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid bearer token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	return identity, ok && identity.ID != ""
}
