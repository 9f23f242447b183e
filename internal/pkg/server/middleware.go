package server

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/config"
	"github.com/anicoll/home-bridge/pkg/hasher"
)

const (
	headerAPIUser = "apiuser"
	headerAPIKey  = "apikey"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer cannot be hijacked")
	}
	r.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "apiuser, apikey, content-type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks the apiuser/apikey pair, sent as headers or query parameters,
// against the bcrypt hashes of the configured users.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.users) == 0 || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		name, key := credential(r, headerAPIUser), credential(r, headerAPIKey)
		user, ok := lo.Find(s.users, func(u config.User) bool { return u.Name == name })
		if !ok || key == "" || !hasher.KeyMatches(key, user.KeyHash) {
			s.logger.Warn("rejected request", zap.String("user", name), zap.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, codeUnauthorised, "invalid api user or key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func credential(r *http.Request, name string) string {
	if value := r.Header.Get(name); value != "" {
		return value
	}
	return r.URL.Query().Get(name)
}
