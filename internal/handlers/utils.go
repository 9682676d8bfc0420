// internal/handlers/utils.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jason-s-yu/uno/internal/game"
	log "github.com/sirupsen/logrus"
)

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("failed to encode response: %v", err)
	}
}

// writeError answers with {"error": ...} and the status code err maps to.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps rules engine errors onto HTTP status codes.
func statusFor(err error) int {
	var badParam *paramError
	switch {
	case errors.As(err, &badParam):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrGameNotFound), errors.Is(err, game.ErrUnknownPlayer):
		return http.StatusNotFound
	case errors.Is(err, game.ErrTurnViolation):
		return http.StatusForbidden
	case errors.Is(err, game.ErrIndexOutOfRange),
		errors.Is(err, game.ErrRuleMismatch),
		errors.Is(err, game.ErrGameAlreadyTerminal):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidPlayerCount):
		return http.StatusUnprocessableEntity
	default:
		// includes ErrDeckExhausted, the stalemate
		return http.StatusInternalServerError
	}
}

// paramError is a missing or malformed request parameter.
type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	if e.value == "" {
		return fmt.Sprintf("missing parameter %q", e.name)
	}
	return fmt.Sprintf("invalid parameter %q: %q is not an integer", e.name, e.value)
}

func parseIntParam(name, value string) (int, error) {
	if value == "" {
		return 0, &paramError{name: name}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &paramError{name: name, value: value}
	}
	return n, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	return parseIntParam(name, r.PathValue(name))
}

func queryInt(r *http.Request, name string) (int, error) {
	return parseIntParam(name, r.URL.Query().Get(name))
}
