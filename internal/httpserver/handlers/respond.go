package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/socialhub/internal/auth"
	"github.com/MrSnakeDoc/socialhub/internal/domain"
	"github.com/MrSnakeDoc/socialhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	OK        bool   `json:"ok"`
	Details   string `json:"details"`
	Timestamp int64  `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, d deps.Deps, status int, details string) {
	writeJSON(w, status, errorResponse{OK: false, Details: details, Timestamp: d.Now().Unix()})
}

// writeError maps a service error to its status. Failures the client can fix
// answer 400 like the rest of the API; store faults answer 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	status := http.StatusBadRequest
	details := err.Error()

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		status, details = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInternal):
		status, details = http.StatusInternalServerError, "internal error"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrRejected):
	default:
		d.Logger.Error("unmapped handler error", logger.String("path", r.URL.Path), logger.Error(err))
		status, details = http.StatusInternalServerError, "internal error"
	}
	writeFailure(w, d, status, details)
}

// decodeJSON reads a single JSON object from the body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", domain.ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON body", domain.ErrValidation)
	}
	return nil
}

// caller returns the identity attached by the auth gate. Protected routes
// always have one; its absence means the route table is wrong.
func caller(w http.ResponseWriter, r *http.Request, d deps.Deps) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		d.Logger.Error("protected handler reached without identity", logger.String("path", r.URL.Path))
		writeFailure(w, d, http.StatusUnauthorized, "missing token")
	}
	return id, ok
}

func parseID(raw, name string) (uint, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrValidation, name)
	}
	return uint(n), nil
}

func setToken(w http.ResponseWriter, token string) {
	w.Header().Set(auth.HeaderName, token)
	w.Header().Add("Access-Control-Expose-Headers", auth.HeaderName)
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
