package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/trip-trio/trip-planner-api/internal/ports/out/clock"
	"github.com/trip-trio/trip-planner-api/internal/ports/out/idempotency"
)

// maxIdempotentBody bounds how much request body the middleware will buffer
// for hashing.
const maxIdempotentBody = 1 << 20

// NewIdempotencyMiddleware replays stored responses for retried unsafe
// requests carrying an Idempotency-Key header.
//
// Matching is per user, method, path, and body hash:
//   - same key + same payload: the first response is replayed verbatim
//   - same key + different payload: 409 IDEMPOTENCY_KEY_REUSE
//
// Requests without the header pass through untouched. Only 2xx responses
// are recorded; a failed request may be retried under the same key.
func NewIdempotencyMiddleware(store idempotency.Store, clk clock.Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if store == nil || key == "" || !isUnsafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			u, ok := UserFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody))
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "unreadable request body", nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sum := sha256.Sum256(body)
			bodyHash := hex.EncodeToString(sum[:])

			ctx := r.Context()
			metaFP := idempotency.Fingerprint{
				Key:    idempotency.Key(key),
				User:   u.ID,
				Method: r.Method,
				Path:   r.URL.Path,
			}
			if meta, ok, err := store.Get(ctx, metaFP); err != nil {
				writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
				return
			} else if ok {
				if string(meta.Body) != bodyHash {
					writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
					return
				}
			} else {
				_ = store.Put(ctx, metaFP, idempotency.Record{
					ContentType: "text/plain",
					Body:        []byte(bodyHash),
					CreatedAt:   clk.Now().UTC(),
				})
			}

			respFP := metaFP
			respFP.BodyHash = bodyHash
			if rec, ok, err := store.Get(ctx, respFP); err != nil {
				writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
				return
			} else if ok {
				if rec.ContentType != "" {
					w.Header().Set("Content-Type", rec.ContentType)
				}
				w.WriteHeader(rec.StatusCode)
				_, _ = w.Write(rec.Body)
				return
			}

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= 200 && rec.status < 300 {
				_ = store.Put(ctx, respFP, idempotency.Record{
					StatusCode:  rec.status,
					ContentType: rec.Header().Get("Content-Type"),
					Body:        rec.buf.Bytes(),
					CreatedAt:   clk.Now().UTC(),
				})
			}
		})
	}
}

func isUnsafeMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// responseRecorder tees the response so a successful body can be stored for
// replay while still being written to the client.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	buf         bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}
