package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dskvich/amethyst-telegram-bot/pkg/logger"
)

type JSONResponseWriter struct{}

func (j *JSONResponseWriter) WriteSuccessResponse(w http.ResponseWriter, data any) {
	j.write(w, http.StatusOK, data)
}

func (j *JSONResponseWriter) WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	j.write(w, statusCode, ErrorResponse{Error: message})
}

func (j *JSONResponseWriter) write(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Encoding response", "status", statusCode, logger.Err(err))
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
