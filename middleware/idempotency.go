package middleware

import (
	"bytes"
	"net/http"

	"github.com/Govind-619/CampusDine/services"
	"github.com/Govind-619/CampusDine/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyHeader carries the client-supplied key on mutating payment
// endpoints. The header is advisory by convention: absence is tolerated
// with a warning.
const IdempotencyHeader = "Idempotency-Key"

// CachedHeader marks replayed responses.
const CachedHeader = "X-Idempotency-Cached"

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware deduplicates mutating requests by client key. The
// first request with a key runs normally and its response is cached; any
// replay gets the cached status and body back with X-Idempotency-Cached
// set. A key whose first request is still in flight answers 409.
func IdempotencyMiddleware(idem *services.IdempotencyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			utils.LogWarn("Missing %s header on %s %s", IdempotencyHeader, c.Request.Method, c.Request.URL.Path)
			c.Next()
			return
		}

		if _, err := uuid.Parse(key); err != nil {
			utils.LogWarn("Malformed idempotency key %q: %v", key, err)
			utils.BadRequest(c, "Idempotency-Key must be a UUID", nil)
			c.Abort()
			return
		}

		scope := c.Request.Method + " " + c.FullPath()
		ctx := c.Request.Context()

		isNew, record, err := idem.Register(ctx, scope, key, services.DefaultIdempotencyTTL)
		if err != nil {
			// Store unavailability degrades to non-idempotent processing
			// rather than failing the request.
			utils.LogWarn("Idempotency store unavailable, proceeding without dedup: %v", err)
			c.Next()
			return
		}

		if !isNew {
			if !record.Completed {
				utils.LogInfo("Idempotency key %s still in flight", key)
				utils.Conflict(c, "A request with this idempotency key is still being processed", nil)
				c.Abort()
				return
			}
			utils.LogInfo("Replaying cached response for idempotency key %s", key)
			c.Header(CachedHeader, "true")
			c.Data(record.StatusCode, "application/json; charset=utf-8", []byte(record.Response))
			c.Abort()
			return
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			// Do not cache outcomes the client should retry.
			if rerr := idem.Release(ctx, scope, key); rerr != nil {
				utils.LogError("Failed to release idempotency key %s: %v", key, rerr)
			}
			return
		}
		if cerr := idem.Complete(ctx, scope, key, status, writer.body.Bytes(), services.DefaultIdempotencyTTL); cerr != nil {
			utils.LogError("Failed to complete idempotency key %s: %v", key, cerr)
		}
	}
}
