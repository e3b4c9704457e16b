package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Logging records every outgoing request at debug level and transport failures at warn.
func Logging(logger *zap.Logger, next http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			logger.Warn("request failed", append(fields, zap.Error(err))...)
			return nil, err
		}
		logger.Debug("request", append(fields, zap.Int("status", resp.StatusCode))...)
		return resp, nil
	})
}
