package middleware

import (
	"errors"
	"strings"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/identity"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/auth"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/logger"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	ActorKey      = "actor"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

var errMissingCredentials = errors.New("missing credentials")

// TokenValidator validates a bearer token
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// JWTAuth authenticates the bearer token and stores the actor in the gin
// context and on the request's logger.
func JWTAuth(tokens TokenValidator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			rejectToken(c, log, errMissingCredentials, "Missing authorization header")
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			rejectToken(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			rejectToken(c, log, err, "Token validation failed")
			return
		}
		actor, err := claims.Actor()
		if err != nil {
			rejectToken(c, log, err, "Token does not identify an actor")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(ActorKey, actor)

		ctx, _ := logger.WithActor(c.Request.Context(), logger.FromContext(c.Request.Context()),
			actor.ID.String(), string(actor.Role))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func rejectToken(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("reason", message),
		zap.String("path", c.Request.URL.Path),
	)

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, msg = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingUserID),
		errors.Is(err, auth.ErrInvalidRole):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	abortWithError(c, code, msg)
}

// GetActor returns the actor stored by JWTAuth
func GetActor(c *gin.Context) (identity.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return identity.Actor{}, false
	}
	actor, ok := v.(identity.Actor)
	return actor, ok
}

// RequireRoles rejects actors holding none of roles. The services enforce
// the same rules; this keeps forbidden requests away from the database.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !actor.HasAnyRole(roles...) {
			abortWithError(c, dto.ErrCodeForbidden, "Role "+string(actor.Role)+" may not perform this action")
			return
		}
		c.Next()
	}
}
