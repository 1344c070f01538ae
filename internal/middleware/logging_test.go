package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/barberkas/api/internal/auth"
	"github.com/barberkas/api/internal/metrics"
	"github.com/barberkas/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusOK, "info"},
		{http.StatusNotFound, "warn"},
		{http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			buf := captureLog(t)
			handler := middleware.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest("GET", "/branches", nil))

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("decode log entry: %v; raw: %s", err, buf.String())
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level: got %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["path"] != "/branches" {
				t.Errorf("path: got %v", entry["path"])
			}
			if int(entry["status"].(float64)) != tt.status {
				t.Errorf("status: got %v, want %d", entry["status"], tt.status)
			}
		})
	}
}

func logEntries(t *testing.T, buf *bytes.Buffer) map[string]map[string]any {
	t.Helper()
	byMsg := map[string]map[string]any{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("decode log entry: %v; raw: %s", err, line)
		}
		byMsg[entry["message"].(string)] = entry
	}
	return byMsg
}

func TestRequestLogger_CarriesAuthenticatedUser(t *testing.T) {
	buf := captureLog(t)
	userID := uuid.New()
	token, _ := auth.GenerateToken(testSecret, userID, uuid.New(), "CASHIER")

	handler := middleware.RequestLogger(
		middleware.Authenticate(testSecret)(
			middleware.RequireRole("OWNER", "ADMIN")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("cashier must not reach the handler")
			}))))

	req := httptest.NewRequest("GET", "/branches/x/salary/periods", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}

	entries := logEntries(t, buf)
	denied, ok := entries["access denied"]
	if !ok {
		t.Fatalf("missing access denied entry: %s", buf.String())
	}
	if denied["user_id"] != userID.String() || denied["required_roles"] != "OWNER,ADMIN" {
		t.Errorf("access denied entry: %v", denied)
	}

	request := entries["request"]
	if request["user_id"] != userID.String() || request["role"] != "CASHIER" {
		t.Errorf("request entry: %v", request)
	}
	if request["level"] != "warn" {
		t.Errorf("level: got %v, want warn", request["level"])
	}
}

func TestInstrument_UsesRoutePattern(t *testing.T) {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(middleware.Instrument(m))
	r.Get("/branches/{bid}/dashboard", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/branches/abc/dashboard", nil))

	if n := testutil.CollectAndCount(m.HTTPDuration); n != 1 {
		t.Fatalf("series: got %d, want 1", n)
	}
	expected := `/branches/{bid}/dashboard`
	found := false
	mfs, _ := m.Registry().Gather()
	for _, mf := range mfs {
		if mf.GetName() != "barberpos_http_request_duration_seconds" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "route" && lp.GetValue() == expected {
					found = true
				}
			}
		}
	}
	if !found {
		t.Errorf("route label %q not recorded", expected)
	}
}
