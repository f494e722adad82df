package controllers

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"seva-kendra/events"
	"seva-kendra/models"
	"seva-kendra/ratelimit"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUser(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body := env.do(t, http.MethodPost, "/api/auth/register", userRegistration("Asha@Example.com "))
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "user", body["userType"])
	assert.NotEmpty(t, body["userId"])

	require.Len(t, env.store.users, 1)
	u := env.store.users[0]
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, "senior-citizen", u.Category)
	assert.Equal(t, models.AccountStatusActive, u.Status)
	assert.NotEqual(t, "pa55word", u.Password)
	assert.Empty(t, env.store.vendors)

	assert.Equal(t, []string{events.SubjectUserRegistered}, env.events.subjects)
	require.Len(t, env.mail.sent, 1)
	assert.Equal(t, "asha@example.com", env.mail.sent[0].to)
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.Registrations.WithLabelValues("user")))
}

func TestRegisterDefaultsCategory(t *testing.T) {
	env := newTestEnv(t, nil)
	req := userRegistration("nocat@example.com")
	delete(req, "category")

	code, _ := env.do(t, http.MethodPost, "/api/auth/register", req)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, models.DefaultCategory, env.store.users[0].Category)
}

func TestRegisterVendorCreatesPendingApplication(t *testing.T) {
	env := newTestEnv(t, nil)
	req := vendorRegistration("ravi@example.com")
	req["businessName"] = "Ravi Plumbing Works"

	code, body := env.do(t, http.MethodPost, "/api/auth/register", req)
	require.Equal(t, http.StatusCreated, code)

	require.Len(t, env.store.vendors, 1)
	v := env.store.vendors[0]
	assert.Equal(t, body["userId"], v.UserID.Hex())
	assert.Equal(t, "Plumbing", v.ServiceType)
	assert.Equal(t, models.VendorStatusPending, v.VerificationStatus)
	assert.Equal(t, "Ravi Plumbing Works", v.BusinessName)
	assert.Equal(t, []string{events.SubjectVendorRegistered}, env.events.subjects)
}

func TestRegisterVendorWithoutServiceType(t *testing.T) {
	env := newTestEnv(t, nil)
	req := vendorRegistration("noservice@example.com")
	delete(req, "serviceType")

	code, _ := env.do(t, http.MethodPost, "/api/auth/register", req)
	require.Equal(t, http.StatusCreated, code)
	assert.Len(t, env.store.users, 1)
	assert.Empty(t, env.store.vendors)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t, nil)
	code, _ := env.do(t, http.MethodPost, "/api/auth/register", userRegistration("dup@example.com"))
	require.Equal(t, http.StatusCreated, code)

	code, body := env.do(t, http.MethodPost, "/api/auth/register", vendorRegistration("DUP@example.com"))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User with this email already exists", body["error"])
	assert.Len(t, env.store.users, 1)
	assert.Empty(t, env.store.vendors)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		message string
	}{
		{"missing name", func(m map[string]string) { delete(m, "name") }, "Missing required fields"},
		{"blank password", func(m map[string]string) { m["password"] = "" }, "Missing required fields"},
		{"missing user type", func(m map[string]string) { delete(m, "userType") }, "Missing required fields"},
		{"bad user type", func(m map[string]string) { m["userType"] = "admin" }, "Invalid user type"},
		{"bad service type", func(m map[string]string) { m["serviceType"] = "Alchemy" }, "Invalid service type"},
		{"bad email", func(m map[string]string) { m["email"] = "not-an-email" }, "Invalid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			req := vendorRegistration("v@example.com")
			tt.mutate(req)

			code, body := env.do(t, http.MethodPost, "/api/auth/register", req)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.message, body["error"])
			assert.Empty(t, env.store.users)
		})
	}
}

func TestRegisterPasswordTooLong(t *testing.T) {
	env := newTestEnv(t, nil)
	req := userRegistration("long@example.com")
	req["password"] = strings.Repeat("x", 73)

	code, body := env.do(t, http.MethodPost, "/api/auth/register", req)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Password is too long", body["error"])
	assert.Empty(t, env.store.users)
}

func TestRegisterMalformedBody(t *testing.T) {
	env := newTestEnv(t, nil)
	code, body := env.do(t, http.MethodPost, "/api/auth/register", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestRegisterRemovesUserWhenVendorInsertFails(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.vendorCreateErr = errors.New("write concern timeout")

	code, body := env.do(t, http.MethodPost, "/api/auth/register", vendorRegistration("broken@example.com"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Empty(t, env.store.users)
	assert.Empty(t, env.events.subjects)
	assert.Empty(t, env.mail.sent)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	code, reg := env.do(t, http.MethodPost, "/api/auth/register", userRegistration("asha@example.com"))
	require.Equal(t, http.StatusCreated, code)

	code, body := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": " ASHA@example.com", "password": "pa55word", "userType": "user",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful!", body["message"])

	user := body["user"].(map[string]interface{})
	assert.Equal(t, reg["userId"], user["id"])
	assert.Equal(t, "Asha Devi", user["name"])
	assert.Equal(t, "user", user["userType"])
	assert.Nil(t, user["vendorStatus"])
	_, hasPassword := user["password"]
	assert.False(t, hasPassword)

	claims, err := env.tokens.ParseJWT(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, reg["userId"], claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, "user", claims.UserType)
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.AuthSuccess))
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	env := newTestEnv(t, nil)
	code, _ := env.do(t, http.MethodPost, "/api/auth/register", vendorRegistration("ravi@example.com"))
	require.Equal(t, http.StatusCreated, code)

	attempts := []map[string]string{
		{"email": "ravi@example.com", "password": "wrong", "userType": "vendor"},
		{"email": "ravi@example.com", "password": "s3cret!", "userType": "user"},
		{"email": "nobody@example.com", "password": "s3cret!", "userType": "vendor"},
	}
	for _, a := range attempts {
		code, body := env.do(t, http.MethodPost, "/api/auth/login", a)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Invalid email or password", body["error"])
		assert.Nil(t, body["token"])
	}
}

func TestLoginMissingFields(t *testing.T) {
	env := newTestEnv(t, nil)
	code, body := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields", body["error"])
}

func TestLoginRateLimited(t *testing.T) {
	env := newTestEnv(t, &fixedLimiter{limit: 2})
	creds := map[string]string{"email": "x@example.com", "password": "nope", "userType": "user"}

	for i := 0; i < 2; i++ {
		code, _ := env.do(t, http.MethodPost, "/api/auth/login", creds)
		assert.Equal(t, http.StatusUnauthorized, code)
	}
	code, body := env.do(t, http.MethodPost, "/api/auth/login", creds)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, false, body["success"])
}

func TestLoginLimiterFailsOpen(t *testing.T) {
	env := newTestEnv(t, ratelimit.Unlimited{})
	code, _ := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "x@example.com", "password": "nope", "userType": "user",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t, nil)
	code, reg := env.do(t, http.MethodPost, "/api/auth/register", vendorRegistration("ravi@example.com"))
	require.Equal(t, http.StatusCreated, code)
	token, err := env.tokens.GenerateJWT(reg["userId"].(string), "ravi@example.com", "vendor")
	require.NoError(t, err)

	code, body := env.do(t, http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "ravi@example.com", user["email"])
	assert.Equal(t, "pending", user["vendorStatus"])
}

func TestGetProfileRequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body := env.do(t, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authorization header missing", body["error"])

	code, _ = env.do(t, http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer forged.token.value")
	assert.Equal(t, http.StatusUnauthorized, code)
}
