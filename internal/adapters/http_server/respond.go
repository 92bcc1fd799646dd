package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"hotelbook/internal/domain"
)

type envelope struct {
	Success    bool               `json:"success"`
	Count      *int               `json:"count,omitempty"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
	Data       any                `json:"data"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func ok(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func okCount(w http.ResponseWriter, data any, n int) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Count: &n, Data: data})
}

func okPage(w http.ResponseWriter, data any, n int, p domain.Pagination) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Count: &n, Pagination: &p, Data: data})
}

func statusFor(k domain.Kind) int {
	switch k {
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the single place errors become HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(domain.KindOf(err))
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("request failed")
	}
	writeJSON(w, status, errorBody{Success: false, Error: domain.PublicMessage(err)})
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.BadRequestf("Request body is empty")
		}
		return domain.BadRequestf("Invalid JSON body")
	}
	return nil
}

// pathID reads a numeric route param. Malformed ids are reported as a
// missing resource.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NotFoundf("Resource not found")
	}
	return id, nil
}

// project reduces each item to the selected top-level JSON fields; id is
// always kept. A dotted field keeps its top-level parent.
func project[T any](items []T, fields []string) (any, error) {
	if len(fields) == 0 {
		return nonNil(items), nil
	}
	keep := map[string]bool{"id": true}
	for _, f := range fields {
		if i := strings.IndexByte(f, '.'); i > 0 {
			f = f[:i]
		}
		keep[f] = true
	}
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}
		var m map[string]json.RawMessage
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		for k := range m {
			if !keep[k] {
				delete(m, k)
			}
		}
		out = append(out, m)
	}
	return out, nil
}
