package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client's key for a mutating request
const IdempotencyKeyHeader = "Idempotency-Key"

// maxIdempotencyKeyLength bounds the header before it reaches the store
const maxIdempotencyKeyLength = 200

// Idempotency reserves the Idempotency-Key of POST requests for ttl. A
// second request with a held key is refused with 409; a request that fails
// releases its key so the client can retry it. Requests without the header
// pass through, and store outages fail open.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithError(c, dto.ErrCodeBadRequest, "Idempotency-Key is too long")
			return
		}

		scoped := idempotencyScope(c, key)
		ctx := c.Request.Context()
		reserved, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			log.Error("Idempotency store unavailable, processing request without a reservation",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			abortWithError(c, dto.ErrCodeDuplicateRequest, "A request with this Idempotency-Key was already received")
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			// the request context may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := store.Release(releaseCtx, scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

// idempotencyScope keys a reservation by actor and route so two clients
// cannot collide on the same header value
func idempotencyScope(c *gin.Context, key string) string {
	actorID := "anonymous"
	if actor, ok := GetActor(c); ok {
		actorID = actor.ID.String()
	}
	return actorID + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key
}
