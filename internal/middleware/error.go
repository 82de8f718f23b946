package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"stock-ledger/internal/domain"

	"go.uber.org/zap"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithErrorDetails(w, statusCode, message, nil)
}

func respondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      http.StatusText(statusCode),
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	json.NewEncoder(w).Encode(response)
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = errors

	respondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
}

// RespondWithDomainError maps ledger errors onto HTTP statuses.
// Anything unrecognized is logged and reported as a 500.
func RespondWithDomainError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validationErr *domain.ValidationError
	var stockErr *domain.StockError

	switch {
	case errors.As(err, &validationErr):
		RespondWithValidationErrors(w, []ValidationError{{
			Field:   validationErr.Field,
			Message: validationErr.Message,
		}})

	case errors.As(err, &stockErr):
		respondWithErrorDetails(w, http.StatusConflict, "insufficient stock", map[string]interface{}{
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
			"requested":  stockErr.Requested,
		})

	case errors.Is(err, domain.ErrProductNotFound):
		RespondWithError(w, http.StatusNotFound, "product not found")

	case errors.Is(err, domain.ErrSaleNotFound):
		RespondWithError(w, http.StatusNotFound, "sale not found")

	case errors.Is(err, domain.ErrPersistence):
		logger.Error("Storage failure", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "storage unavailable")

	default:
		logger.Error("Unhandled error", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
// RespondWithPartialFailure reports a storage failure after part of a
// change was already saved. details tell the client what did persist.
func RespondWithPartialFailure(w http.ResponseWriter, err error, details map[string]interface{}, logger *zap.Logger) {
	logger.Error("Partial storage failure", zap.Error(err), zap.Any("details", details))
	respondWithErrorDetails(w, http.StatusInternalServerError, "change partially saved", details)
}

func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
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
