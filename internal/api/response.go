package api

import (
	"encoding/json"
	"net/http"

	apperrors "lead-automation/internal/common/errors"
)

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	stdErr := apperrors.From(err)

	status := http.StatusInternalServerError
	switch apperrors.GetErrorCategory(stdErr.Code) {
	case "VALIDATION":
		status = http.StatusBadRequest
	case "TRANSPORT", "PROTOCOL", "PARSE":
		status = http.StatusBadGateway
	}

	writeJSON(w, status, errorBody{
		Error:   stdErr.Message,
		Code:    string(stdErr.Code),
		Details: stdErr.Details,
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid request body", err.Error())
	}
	return nil
}
