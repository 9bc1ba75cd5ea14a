package server

import (
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/sirupsen/logrus"
	"github.com/tomasen/realip"

	"github.com/vidshare/vidshare/internal/auth"
)

// authenticate attaches the bearer identity to the request context. A missing
// header passes through unauthenticated, a bad token is rejected.
func (s server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeFail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id, err := s.signer.Verify(parts[1])
		if err != nil {
			writeFail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), id)))
	})
}

// bodyLimit caps the request body, reads past the limit fail and the
// connection is closed.
func bodyLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFrom(r.Context()); !ok {
			writeFail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logrus.WithFields(logrus.Fields{
			"request_id": chimiddleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"remote":     realip.FromRequest(r),
			"status":     ww.Status(),
			"duration":   time.Since(start),
		}).Info("request handled")
	})
}

// recovererMiddleware renders panics as the error envelope, stacks go to the
// log only.
func recovererMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				logrus.WithField("request_id", chimiddleware.GetReqID(r.Context())).
					Errorf("recovered from panic: %+v", rvr)

				writeJSON(w, http.StatusInternalServerError, response{
					Status:  statusError,
					Message: "internal error",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
