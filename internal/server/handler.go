package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/vidshare/vidshare/internal/auth"
)

var errInvalidRequest = errors.New("invalid request")

// multipart forms are parsed with this much memory, bigger parts spill to
// temporary files.
const maxMultipartMemory = 32 << 20

func (s server) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.s.GetStats(r.Context())
	if err != nil {
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to get stats: %s", err.Error()))
		return
	}

	writeSuccess(w, http.StatusOK, toAPIStats(stats))
}

// resolveUserID maps the {userID} path segment to an identifier. The literal
// "me" resolves to the authenticated caller. On failure the response is
// already written and false is returned.
func (s server) resolveUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	seg := chi.URLParam(r, "userID")

	if seg == "me" {
		id, ok := auth.UserIDFrom(r.Context())
		if !ok {
			writeFail(w, http.StatusUnauthorized, "Unauthorized")
			return 0, false
		}

		return id, true
	}

	id, err := strconv.ParseInt(seg, 10, 64)
	if err != nil {
		writeFail(w, http.StatusBadRequest, map[string]string{"user_id": "malformed"})
		return 0, false
	}

	return id, true
}

// parsePathID parses a numeric path segment, writing a 400 fail on malformed
// input.
func parsePathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		writeFail(w, http.StatusBadRequest, map[string]string{param: "malformed"})
		return 0, false
	}

	return id, true
}

func extractListParamsFromQuery(q url.Values) (after *int64, limit uint16, err error) {
	limit = defaultLimit

	if s := q.Get("limit"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: failed to parse limit", errInvalidRequest)
		}

		if v == 0 || v > maxLimit {
			return nil, 0, fmt.Errorf("%w: limit is out of bounds", errInvalidRequest)
		}

		limit = uint16(v)
	}

	if s := q.Get("cursor"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: failed to parse cursor", errInvalidRequest)
		}

		after = &v
	}

	return after, limit, nil
}

func isEmailValid(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// multipartValue returns a pointer to the first value of key, or nil if the
// field was not supplied at all.
func multipartValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}

	if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
		return &vs[0]
	}

	return nil
}
