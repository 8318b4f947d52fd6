package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RequestLogger logs every request as it arrives, before authentication
// runs, and again once the response is written.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := logger.With(
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", RequestIDFromContext(r.Context())),
			)

			log.Info("request", zap.String("remote_addr", r.RemoteAddr))

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			log.Info("request completed",
				zap.Int("status", rec.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
