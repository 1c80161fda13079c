package handlers

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"

	"restaurant_pos/internal/apperrors"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
)

// bodyCaptureWriter tees the response so a successful result can be cached
// for replay under the request's idempotency key.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware implements the Idempotency-Key header contract for
// mutating routes:
//   - header absent: processed normally, no dedup, no caching
//   - prior record, matching fingerprint: cached response replayed verbatim,
//     handler not executed
//   - prior record, mismatched fingerprint: 409 IDEMPOTENCY_CONFLICT
//   - otherwise: handler runs and a 2xx response is cached for 24h
func IdempotencyMiddleware(guard services.IdempotencyGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidation, "error": "unreadable request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		endpoint := c.Request.Method + " " + c.FullPath()
		result, err := guard.Check(key, endpoint, body)
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"code": apperrors.CodeConflict, "key": key})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "idempotency check failed"})
			return
		}
		if result.IsDuplicate {
			c.Data(result.CachedStatus, "application/json", result.CachedBody)
			c.Abort()
			return
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			if err := guard.Store(key, endpoint, body, writer.body.Bytes(), status); err != nil {
				// A lost store race is a no-op inside the repository; anything
				// surfacing here is a real storage failure.
				log.Printf("Warning: failed to store idempotency record for key %s: %v", key, err)
			}
		}
	}
}
