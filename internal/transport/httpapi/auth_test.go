package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "keepson"
)

func mintToken(t *testing.T, secret, issuer, subject string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err, "sign token")
	return token
}

func ownerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, _ := ownerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(owner))
	})
}

func callWithAuth(handler http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/api/v1/records", http.NoBody)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestJWTAuth_MissingHeader_401(t *testing.T) {
	handler := JWTAuth(testSecret, testIssuer)(ownerEcho())

	rr := callWithAuth(handler, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	var errResp errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
	require.Equal(t, codeUnauthorized, errResp.Code)
}

func TestJWTAuth_BasicScheme_401(t *testing.T) {
	handler := JWTAuth(testSecret, testIssuer)(ownerEcho())

	rr := callWithAuth(handler, "Basic dXNlcjpwYXNz")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTAuth_GarbageToken_401(t *testing.T) {
	handler := JWTAuth(testSecret, testIssuer)(ownerEcho())

	rr := callWithAuth(handler, "Bearer not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTAuth_WrongSecret_401(t *testing.T) {
	handler := JWTAuth(testSecret, testIssuer)(ownerEcho())

	token := mintToken(t, "other-secret", testIssuer, "u1", time.Hour)
	rr := callWithAuth(handler, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTAuth_ExpiredToken_401(t *testing.T) {
	handler := JWTAuth(testSecret, testIssuer)(ownerEcho())

	token := mintToken(t, testSecret, testIssuer, "u1", -time.Minute)
	rr := callWithAuth(handler, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTAuth_WrongIssuer_401(t *testing.T) {
	handler := JWTAuth(testSecret, testIssuer)(ownerEcho())

	token := mintToken(t, testSecret, "someone-else", "u1", time.Hour)
	rr := callWithAuth(handler, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTAuth_NoSubject_401(t *testing.T) {
	handler := JWTAuth(testSecret, testIssuer)(ownerEcho())

	token := mintToken(t, testSecret, testIssuer, "", time.Hour)
	rr := callWithAuth(handler, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTAuth_ValidToken_OwnerPropagated(t *testing.T) {
	handler := JWTAuth(testSecret, testIssuer)(ownerEcho())

	token := mintToken(t, testSecret, testIssuer, "user-42", time.Hour)
	rr := callWithAuth(handler, "Bearer "+token)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "user-42", rr.Body.String())
}

func TestJWTAuth_IssuerNotEnforcedWhenUnset(t *testing.T) {
	handler := JWTAuth(testSecret, "")(ownerEcho())

	token := mintToken(t, testSecret, "any-issuer", "u1", time.Hour)
	rr := callWithAuth(handler, "Bearer "+token)
	require.Equal(t, http.StatusOK, rr.Code)
}
