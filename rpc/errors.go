package rpc

import (
	"encoding/json"
	"net/http"

	"treasurechain/native/common"
)

type errorBody struct {
	Error string `json:"error"`
	Class string `json:"class"`
}

// statusFor maps the failure taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch common.Classify(err) {
	case common.ErrAuthorization:
		return http.StatusForbidden
	case common.ErrValidation:
		return http.StatusBadRequest
	case common.ErrNotFound:
		return http.StatusNotFound
	case common.ErrConservation:
		return http.StatusUnprocessableEntity
	case common.ErrPaymentMismatch:
		return http.StatusPaymentRequired
	case common.ErrStateConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "route", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: msg, Class: common.ClassName(err)})
}
