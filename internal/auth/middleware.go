package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// SecurityScheme is the name of the bearer scheme declared in the OpenAPI
// document and referenced by protected operations.
const SecurityScheme = "bearer"

type userKey struct{}

// Username returns the authenticated username stored in ctx, if any.
func Username(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(userKey{}).(string)
	return u, ok
}

// Middleware verifies bearer tokens. A valid token always puts the username
// in the context. When enforce is set, operations that declare
// SecurityScheme reject requests without a valid token.
func Middleware(api huma.API, tokens *Tokens, enforce bool) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token, hasToken := bearerToken(ctx.Header("Authorization"))

		if hasToken {
			if username, err := tokens.Verify(token); err == nil {
				next(huma.WithValue(ctx, userKey{}, username))
				return
			}
		}

		if enforce && requiresAuth(ctx.Operation()) {
			ctx.SetHeader("WWW-Authenticate", "Bearer")
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing or invalid access token")
			return
		}

		next(ctx)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func requiresAuth(op *huma.Operation) bool {
	if op == nil {
		return false
	}
	for _, requirement := range op.Security {
		if _, ok := requirement[SecurityScheme]; ok {
			return true
		}
	}
	return false
}
