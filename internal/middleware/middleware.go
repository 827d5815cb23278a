package middleware // import "github.com/Xunop/e-library/internal/middleware"

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/api/auth"
	"github.com/Xunop/e-library/internal/http/request"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/util"
)

const requestIDHeader = "X-Request-Id"

type Middleware struct {
	// secureCookies marks session cookies Secure, for deployments behind TLS.
	secureCookies bool
}

func NewMiddleware(secureCookies bool) *Middleware {
	return &Middleware{secureCookies: secureCookies}
}

func (m *Middleware) HandleCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "X-Auth-Token, Authorization, Content-Type, Accept")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Max-Age", "7200")
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestID reuses a well formed incoming X-Request-Id or assigns a new one.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if !util.IsUUID(id) {
			id = util.GenUUID()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(request.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (m *Middleware) LoggingRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Info("Request",
			zap.String("request_id", request.GetRequestID(r)),
			zap.String("client_ip", request.FindClientIP(r)),
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Session loads the session id from its cookie, starting a new session when
// the cookie is missing or malformed.
func (m *Middleware) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && util.IsUUID(cookie.Value) {
			sessionID = cookie.Value
		} else {
			sessionID = util.GenUUID()
			http.SetCookie(w, &http.Cookie{
				Name:     auth.SessionCookieName,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				Secure:   m.secureCookies,
				SameSite: http.SameSiteLaxMode,
			})
			log.Debug("Session started", zap.String("session_id", sessionID))
		}
		next.ServeHTTP(w, r.WithContext(request.WithSessionID(r.Context(), sessionID)))
	})
}
