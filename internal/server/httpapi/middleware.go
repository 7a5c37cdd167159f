package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const sessionKey ctxKey = "session"

// requireSession resolves the bearer token to a live session and stores it
// in the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}

		sess, err := s.deps.Sessions.Resolve(token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(common.AuthorizationHeaderName)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme+" ", common.BearerPrefix) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// sessionFrom returns the session stored by requireSession.
func sessionFrom(ctx context.Context) Session {
	sess, _ := ctx.Value(sessionKey).(Session)
	return sess
}

// observe records request metrics and a debug log line per request.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		timer.ObserveDuration(metrics.HTTPRequestDuration.WithLabelValues(r.Method, route))

		s.logger.Debug(r.Context(), "request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", timer.Duration(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
