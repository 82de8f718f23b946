package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock-ledger/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Feature: stock-ledger, Property 8: Errors share one envelope
func TestProperty_ErrorsHaveConsistentStructure(t *testing.T) {
	properties := gopter.NewProperties(nil)

	codes := []int{
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusNotFound,
		http.StatusConflict,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
	}

	properties.Property("every error response carries code, message and timestamp", prop.ForAll(
		func(message string, pick int) bool {
			statusCode := codes[pick%len(codes)]

			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, message)

			if w.Code != statusCode || w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			if response.Error.Code != http.StatusText(statusCode) || response.Error.Message != message {
				return false
			}
			_, err := time.Parse(time.RFC3339, response.Error.Timestamp)
			return err == nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

func TestRespondWithDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domain.NewValidationError("price", "must not be negative"), http.StatusBadRequest},
		{"nothing to sell", domain.ErrNothingToSell, http.StatusBadRequest},
		{"stock", &domain.StockError{ProductID: 1, Available: 2, Requested: 3}, http.StatusConflict},
		{"product missing", fmt.Errorf("lookup: %w", domain.ErrProductNotFound), http.StatusNotFound},
		{"sale missing", domain.ErrSaleNotFound, http.StatusNotFound},
		{"storage", &domain.PersistenceError{Store: "stock", Op: "save", Err: fmt.Errorf("disk full")}, http.StatusInternalServerError},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondWithDomainError(w, tt.err, zap.NewNop())
			assert.Equal(t, tt.status, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, http.StatusText(tt.status), response.Error.Code)
		})
	}
}

func TestRespondWithDomainError_StockDetails(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithDomainError(w, &domain.StockError{ProductID: 4, Available: 1, Requested: 5}, zap.NewNop())

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(4), response.Error.Details["product_id"])
	assert.Equal(t, float64(1), response.Error.Details["available"])
	assert.Equal(t, float64(5), response.Error.Details["requested"])
}

func TestRespondWithPartialFailure(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithPartialFailure(w, domain.ErrPersistence, map[string]interface{}{"product_removed": true}, zap.NewNop())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "change partially saved", response.Error.Message)
	assert.Equal(t, true, response.Error.Details["product_removed"])
}

func TestErrorHandlingMiddleware_RecoversPanics(t *testing.T) {
	handler := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("ledger exploded")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stock", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "internal server error", response.Error.Message)
}
