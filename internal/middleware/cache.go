// Package middleware contains handler-level middleware.
package middleware

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/vidshare/vidshare/internal/middleware/memory"
)

// Storage ...
type Storage interface {
	Get(key string) interface{}
	Set(key string, value interface{}, duration time.Duration)
}

type cachedResponse struct {
	code   int
	header http.Header
	body   []byte
}

// Cached wraps handler and replays its full response for ttl. Failures are
// transient, only successful responses are cached.
func Cached(ttl time.Duration, handler func(w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	storage := memory.NewStorage()

	return func(w http.ResponseWriter, r *http.Request) {
		if v := storage.Get(r.RequestURI); v != nil {
			resp := v.(*cachedResponse)

			for k, vs := range resp.header {
				w.Header()[k] = vs
			}

			w.WriteHeader(resp.code)
			_, _ = w.Write(resp.body)

			return
		}

		c := httptest.NewRecorder()
		handler(c, r)

		for k, v := range c.Header() {
			w.Header()[k] = v
		}

		w.WriteHeader(c.Code)
		body := c.Body.Bytes()
		_, _ = w.Write(body)

		if c.Code >= http.StatusOK && c.Code < http.StatusMultipleChoices {
			storage.Set(r.RequestURI, &cachedResponse{code: c.Code, header: c.Header(), body: body}, ttl)
		}
	}
}
