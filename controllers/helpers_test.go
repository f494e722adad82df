package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seva-kendra/metrics"
	"seva-kendra/middleware"
	"seva-kendra/ratelimit"
	"seva-kendra/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store   *memStore
	events  *recordingPublisher
	mail    *recordingSender
	tokens  *utils.TokenManager
	metrics *metrics.Metrics
	router  *mux.Router
}

func newTestEnv(t *testing.T, limiter ratelimit.Limiter) *testEnv {
	t.Helper()
	env := &testEnv{
		store:   newMemStore(),
		events:  &recordingPublisher{},
		mail:    &recordingSender{},
		tokens:  utils.NewTokenManager("controller-test-secret", time.Hour),
		metrics: metrics.New("test"),
	}
	svc := Services{
		Tokens:     env.tokens,
		Email:      utils.NewEmailServiceWithSender(env.mail),
		Events:     env.events,
		Limiter:    limiter,
		Metrics:    env.metrics,
		Background: func(f func()) { f() },
	}
	uc := NewUserController(env.store.Users(), env.store.Vendors(), svc)
	ac := NewAdminController(env.store.Users(), env.store.Vendors(), env.store.Views(), svc)

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/register", uc.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", uc.Login).Methods(http.MethodPost)
	me := r.PathPrefix("/api/auth").Subrouter()
	me.Use(middleware.AuthMiddleware(env.tokens))
	me.HandleFunc("/me", uc.GetProfile).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/users", ac.GetUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/vendors", ac.GetVendors).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/dashboard", ac.GetDashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/vendors/{id}/status", ac.UpdateVendorStatus).Methods(http.MethodPut)
	r.HandleFunc("/api/catalog", GetCatalog).Methods(http.MethodGet)
	env.router = r
	return env
}

// do sends body as JSON and decodes the JSON response
func (env *testEnv) do(t *testing.T, method, path string, body interface{}, header ...string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr.Code, out
}

func vendorRegistration(email string) map[string]string {
	return map[string]string{
		"name":        "Ravi Kumar",
		"email":       email,
		"phone":       "9999999999",
		"password":    "s3cret!",
		"address":     "12 Temple Road",
		"userType":    "vendor",
		"serviceType": "Plumbing",
	}
}

func userRegistration(email string) map[string]string {
	return map[string]string{
		"name":     "Asha Devi",
		"email":    email,
		"phone":    "8888888888",
		"password": "pa55word",
		"address":  "4 Ganga Street",
		"userType": "user",
		"category": "senior-citizen",
	}
}
