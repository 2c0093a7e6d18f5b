package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/receiptlens/receiptlens/internal/common"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("error encoding response", "error", err)
	}
}

// writeError answers with the `{"error": "..."}` envelope. The status comes
// from the error's mapped code; AppError messages surface as written, while
// internal details stay in the logs.
func writeError(w http.ResponseWriter, err error) {
	code := common.HTTPStatus(err)
	msg := err.Error()
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	if code == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeErrorMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
