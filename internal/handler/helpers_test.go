package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/barberkas/api/internal/auth"
	"github.com/barberkas/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func testClaims(branchID uuid.UUID, role string) *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), BranchID: branchID, Role: role}
}

// authRouter returns a router that authenticates with testSecret, so handlers
// see real claims in the context.
func authRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testSecret))
	return r
}

func doAuthRequestWithHeader(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims, key, value string) *httptest.ResponseRecorder {
	t.Helper()
	return send(t, router, method, path, body, claims, map[string]string{key: value})
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return doAuthRequest(t, router, method, path, body, nil)
}

// doAuthRequest sends body as JSON. A nil claims sends no Authorization header.
func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()
	return send(t, router, method, path, body, claims, nil)
}

func send(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if claims != nil {
		token, err := auth.GenerateToken(testSecret, claims.UserID, claims.BranchID, claims.Role)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v; body: %s", err, rr.Body.String())
	}
	return resp
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v; body: %s", err, rr.Body.String())
	}
	return resp
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, want, rr.Body.String())
	}
}

// assertError checks the status and the "error" text of a JSON error body.
func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	assertStatus(t, rr, status)
	if got := decodeMap(t, rr)["error"]; got != msg {
		t.Errorf("error: got %v, want %q", got, msg)
	}
}
