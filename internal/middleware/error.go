package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"product-catalog/internal/service"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Timestamp string            `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Path      string            `json:"path"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	respondWithErrorBody(w, statusCode, ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    statusCode,
		Error:     message,
		Path:      r.URL.Path,
	})
}

// RespondWithValidationErrors sends a 422 carrying one entry per invalid field
func RespondWithValidationErrors(w http.ResponseWriter, r *http.Request, errs []ValidationError) {
	respondWithErrorBody(w, http.StatusUnprocessableEntity, ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    http.StatusUnprocessableEntity,
		Error:     "Invalid data",
		Path:      r.URL.Path,
		Errors:    errs,
	})
}

func respondWithErrorBody(w http.ResponseWriter, statusCode int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// RespondWithServiceError maps errors returned by the service layer to
// status codes. Unclassified errors are logged and answered with 500.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	var (
		notFound  *service.ResourceNotFoundError
		integrity *service.DatabaseError
	)

	switch {
	case errors.As(err, &notFound):
		RespondWithError(w, r, http.StatusNotFound, notFound.Message)
	case errors.As(err, &integrity):
		RespondWithError(w, r, http.StatusBadRequest, integrity.Message)
	case errors.Is(err, service.ErrCategoryAlreadyExists):
		RespondWithError(w, r, http.StatusConflict, err.Error())
	default:
		logger.Error("Unexpected service failure",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
		)
		RespondWithError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, r, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
