package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"collegebank/internal/cache"
	apperrors "collegebank/internal/errors"
	"collegebank/internal/logger"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "X-Idempotent-Replayed"

	maxIdempotencyKeyLength = 255
)

// bodyRecorder keeps a copy of everything the handler writes.
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Keys are scoped to the authenticated user. Requests without the header
// are processed normally. Reusing a key with a different request body is a
// conflict, as is reusing it while the first request is still running.
// Server errors are not stored so the client may retry with the same key.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Idempotency-Key is too long"))
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "failed to read request body"))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		ctx := c.Request.Context()
		storeKey := c.GetString(UserIDKey) + ":" + key
		requestHash := hashRequest(c.Request.Method, c.FullPath(), body)

		cached, err := store.Get(ctx, storeKey)
		if err != nil {
			abortWithError(c, apperrors.Internal(err))
			return
		}
		if cached != nil {
			replay(c, cached, requestHash)
			return
		}

		reserved, err := store.Reserve(ctx, storeKey, requestHash, ttl)
		if err != nil {
			abortWithError(c, apperrors.Internal(err))
			return
		}
		if !reserved {
			abortWithError(c, apperrors.ErrRequestInProgress)
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder

		// The request context may already be cancelled; the bookkeeping
		// below must still reach the store.
		bg := context.WithoutCancel(ctx)
		release := func() {
			if err := store.Release(bg, storeKey); err != nil {
				logger.Get().Warnw("failed to release idempotency key",
					"request_id", logger.RequestID(ctx), "error", err)
			}
		}

		// A panicking handler never produces a response to replay; free the
		// key and let Recovery answer.
		defer func() {
			if r := recover(); r != nil {
				release()
				panic(r)
			}
		}()

		c.Next()

		status := recorder.Status()
		if status >= http.StatusInternalServerError {
			release()
			return
		}

		entry := &cache.Entry{RequestHash: requestHash, StatusCode: status, Body: recorder.body.Bytes()}
		if err := store.Save(bg, storeKey, entry, ttl); err != nil {
			logger.Get().Warnw("failed to store idempotent response",
				"request_id", logger.RequestID(ctx), "error", err)
		}
	}
}

func replay(c *gin.Context, cached *cache.Entry, requestHash string) {
	if cached.RequestHash != requestHash {
		abortWithError(c, apperrors.ErrIdempotencyConflict)
		return
	}
	if cached.Pending {
		abortWithError(c, apperrors.ErrRequestInProgress)
		return
	}
	c.Header(ReplayedHeader, "true")
	c.Data(cached.StatusCode, "application/json; charset=utf-8", cached.Body)
	c.Abort()
}

func hashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
