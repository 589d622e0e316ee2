package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gamehouse/services"
	"github.com/cppla/gamehouse/utils"
)

const (
	// ContextIdentityKey is the key used to store the authenticated services.Identity in Gin context.
	ContextIdentityKey = "identity"
	// ContextTokenKey stores the raw bearer token so logout can revoke it.
	ContextTokenKey = "token"
)

// Authenticator resolves a bearer token to the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Identity, error)
}

// AuthRequired ensures the request carries a valid, unrevoked bearer token.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortError(ctx, http.StatusUnauthorized, 40100, "authorization header missing")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.AbortError(ctx, http.StatusUnauthorized, 40106, "invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.AbortError(ctx, http.StatusUnauthorized, 40107, "empty bearer token")
			return
		}

		identity, err := auth.Authenticate(ctx.Request.Context(), tokenString)
		if err != nil {
			var svcErr *services.Error
			if errors.As(err, &svcErr) {
				utils.AbortError(ctx, http.StatusUnauthorized, svcErr.Code, svcErr.Message)
				return
			}
			utils.AbortError(ctx, http.StatusInternalServerError, 50001, "failed to verify token")
			return
		}

		ctx.Set(ContextIdentityKey, identity)
		ctx.Set(ContextTokenKey, tokenString)
		ctx.Next()
	}
}

// CurrentIdentity returns the identity stored by AuthRequired.
func CurrentIdentity(ctx *gin.Context) (services.Identity, bool) {
	v, ok := ctx.Get(ContextIdentityKey)
	if !ok {
		return services.Identity{}, false
	}
	identity, ok := v.(services.Identity)
	return identity, ok
}
