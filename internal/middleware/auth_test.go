package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func protected(t *testing.T) http.Handler {
	t.Helper()
	return AuthMiddleware(testSecret, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator, ok := GetOperator(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("X-Operator", operator)
		w.WriteHeader(http.StatusOK)
	}))
}

func serveWithAuth(handler http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/stock", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// Feature: stock-ledger, Property 10: Issued operator tokens are accepted
func TestProperty_IssuedTokensAreAccepted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a freshly issued token authenticates its operator", prop.ForAll(
		func(operator string) bool {
			token, err := IssueOperatorToken(testSecret, operator, time.Hour)
			if err != nil {
				return false
			}
			w := serveWithAuth(protected(t), "Bearer "+token)
			return w.Code == http.StatusOK && w.Header().Get("X-Operator") == operator
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired, err := IssueOperatorToken(testSecret, "clerk", -time.Hour)
	require.NoError(t, err)
	foreign, err := IssueOperatorToken("other-secret", "clerk", time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:  tokenIssuer,
		Subject: "clerk",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage", "Bearer not-a-token"},
		{"expired", "Bearer " + expired},
		{"wrong secret", "Bearer " + foreign},
		{"no expiry", "Bearer " + noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWithAuth(protected(t), tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestIssueOperatorToken_RequiresSecretAndOperator(t *testing.T) {
	_, err := IssueOperatorToken("", "clerk", time.Hour)
	assert.Error(t, err)

	_, err = IssueOperatorToken(testSecret, "  ", time.Hour)
	assert.Error(t, err)
}
