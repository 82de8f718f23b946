package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProductRequest struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity int             `json:"quantity" validate:"gte=1"`
}

func decodeBody(t *testing.T, body string) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	var v testProductRequest
	return DecodeAndValidate(req, &v)
}

// Feature: stock-ledger, Property 9: Negative prices are rejected
func TestProperty_DecimalPricesAreRangeChecked(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("prices validate against gte=0", prop.ForAll(
		func(cents int64) bool {
			body, _ := json.Marshal(map[string]interface{}{
				"name":     "Pen",
				"price":    decimal.New(cents, -2),
				"quantity": 1,
			})
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(body))

			var v testProductRequest
			err := DecodeAndValidate(req, &v)
			if cents < 0 {
				return err != nil
			}
			return err == nil && v.Price.Equal(decimal.New(cents, -2))
		},
		gen.Int64Range(-100000, 100000),
	))

	properties.TestingRun(t)
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	err := decodeBody(t, `{"price": 1, "quantity": 0}`)
	require.Error(t, err)

	errs := FormatValidationErrors(err)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"name", "quantity"}, fields)
}

func TestRespondWithRequestError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithRequestError(w, decodeBody(t, `{"name": "Pen", "quantity": 0}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "validation failed", response.Error.Message)
	assert.Contains(t, response.Error.Details, "validation_errors")

	w = httptest.NewRecorder()
	RespondWithRequestError(w, decodeBody(t, `{"name": `))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "invalid request body", response.Error.Message)
}
