package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/ciphersafe/internal/common"
	"github.com/dmitrijs2005/ciphersafe/internal/logging"
	"github.com/dmitrijs2005/ciphersafe/internal/server/auth"
	"github.com/dmitrijs2005/ciphersafe/internal/server/models"
	"github.com/dmitrijs2005/ciphersafe/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeAccounts struct {
	registerUser  *models.User
	registerToken string
	registerErr   error
	loginUser     *models.User
	loginToken    string
	loginErr      error
}

func (f *fakeAccounts) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	return f.registerUser, f.registerToken, f.registerErr
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	return f.loginUser, f.loginToken, f.loginErr
}

type fakeVaults struct {
	data        *string
	version     int64
	getErr      error
	savedData   string
	savedVer    int64
	saveVersion int64
	saveErr     error
}

func (f *fakeVaults) GetVault(ctx context.Context, userID string) (*string, int64, error) {
	return f.data, f.version, f.getErr
}

func (f *fakeVaults) SaveVault(ctx context.Context, userID, encryptedData string, expectedVersion int64) (int64, error) {
	f.savedData = encryptedData
	f.savedVer = expectedVersion
	return f.saveVersion, f.saveErr
}

type fakeSettings struct {
	settings *models.Settings
	err      error
}

func (f *fakeSettings) GetSettings(ctx context.Context, userID string) (*models.Settings, error) {
	return f.settings, f.err
}

type fakeHealth struct {
	stats *services.HealthStats
	err   error
}

func (f *fakeHealth) Check(ctx context.Context) (*services.HealthStats, error) {
	return f.stats, f.err
}

type serverFakes struct {
	accounts *fakeAccounts
	vaults   *fakeVaults
	settings *fakeSettings
	health   *fakeHealth
}

func newTestServer(t *testing.T) (*HTTPServer, *serverFakes) {
	t.Helper()
	f := &serverFakes{
		accounts: &fakeAccounts{},
		vaults:   &fakeVaults{},
		settings: &fakeSettings{},
		health:   &fakeHealth{},
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := NewHTTPServer(":0", logger, f.accounts, f.vaults, f.settings, f.health, testSecret)
	return s, f
}

func jsonRequest(method, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authedRequest(t *testing.T, method, target, body, userID string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(userID, "alice@example.com", []byte(testSecret), time.Hour)
	require.NoError(t, err)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = jsonRequest(method, target, body)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestRegister_Created(t *testing.T) {
	s, f := newTestServer(t)
	f.accounts.registerUser = &models.User{ID: "u-1", Email: "alice@example.com"}
	f.accounts.registerToken = "tok"

	resp, err := s.app.Test(jsonRequest(http.MethodPost, "/api/register", `{"email":"alice@example.com","password":"secret1"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body authResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "tok", body.Token)
	assert.Equal(t, "u-1", body.User.ID)
	assert.Equal(t, "alice@example.com", body.User.Email)
}

func TestRegister_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		wantMsg string
	}{
		{"malformed json", `{not json`, nil, "invalid JSON payload"},
		{"missing password", `{"email":"alice@example.com"}`, nil, "email and password are required"},
		{"validation error", `{"email":"bad","password":"12345"}`, common.ErrorValidation, "invalid email or password format"},
		{"duplicate email", `{"email":"alice@example.com","password":"secret1"}`, common.ErrorAlreadyExists, "an account with this email already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, f := newTestServer(t)
			f.accounts.registerErr = tt.err

			resp, err := s.app.Test(jsonRequest(http.MethodPost, "/api/register", tt.body))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body errorResponse
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

func TestRegister_InternalError(t *testing.T) {
	s, f := newTestServer(t)
	f.accounts.registerErr = context.DeadlineExceeded

	resp, err := s.app.Test(jsonRequest(http.MethodPost, "/api/register", `{"email":"alice@example.com","password":"secret1"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// internal details must not leak to the client
	var body errorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "internal server error", body.Error)
}

func TestLogin_OK(t *testing.T) {
	s, f := newTestServer(t)
	f.accounts.loginUser = &models.User{ID: "u-1", Email: "alice@example.com"}
	f.accounts.loginToken = "tok"

	resp, err := s.app.Test(jsonRequest(http.MethodPost, "/api/login", `{"email":"alice@example.com","password":"secret1"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body authResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "tok", body.Token)
	assert.Equal(t, "u-1", body.User.ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s, f := newTestServer(t)
	f.accounts.loginErr = common.ErrorInvalidCredentials

	resp, err := s.app.Test(jsonRequest(http.MethodPost, "/api/login", `{"email":"alice@example.com","password":"wrong"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body errorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "invalid email or password", body.Error)
}

func TestAuthRequired(t *testing.T) {
	expired, err := auth.GenerateToken("u-1", "alice@example.com", []byte(testSecret), -time.Hour)
	require.NoError(t, err)
	wrongKey, err := auth.GenerateToken("u-1", "alice@example.com", []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"no header", "", http.StatusUnauthorized, "access token required"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "access token required"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "access token required"},
		{"garbage token", "Bearer not.a.jwt", http.StatusForbidden, "invalid token"},
		{"wrong key", "Bearer " + wrongKey, http.StatusForbidden, "invalid token"},
		{"expired", "Bearer " + expired, http.StatusForbidden, "session expired, please login again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			req := httptest.NewRequest(http.MethodGet, "/api/vault", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := s.app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body errorResponse
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

func TestGetVault_Empty(t *testing.T) {
	s, f := newTestServer(t)
	f.vaults.data = nil
	f.vaults.version = 1

	resp, err := s.app.Test(authedRequest(t, http.MethodGet, "/api/vault", "", "u-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body vaultResponse
	decodeBody(t, resp, &body)
	assert.Nil(t, body.EncryptedData)
	assert.Equal(t, int64(1), body.Version)
}

func TestGetVault_Existing(t *testing.T) {
	s, f := newTestServer(t)
	blob := "ciphertext"
	f.vaults.data = &blob
	f.vaults.version = 3

	resp, err := s.app.Test(authedRequest(t, http.MethodGet, "/api/vault", "", "u-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body vaultResponse
	decodeBody(t, resp, &body)
	require.NotNil(t, body.EncryptedData)
	assert.Equal(t, "ciphertext", *body.EncryptedData)
	assert.Equal(t, int64(3), body.Version)
}

func TestSaveVault_OK(t *testing.T) {
	s, f := newTestServer(t)
	f.vaults.saveVersion = 2

	resp, err := s.app.Test(authedRequest(t, http.MethodPost, "/api/vault", `{"encryptedData":"blob-A","version":1}`, "u-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body saveVaultResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(2), body.Version)
	assert.Equal(t, "blob-A", f.vaults.savedData)
	assert.Equal(t, int64(1), f.vaults.savedVer)
}

func TestSaveVault_MissingVersionDefaultsToOne(t *testing.T) {
	s, f := newTestServer(t)
	f.vaults.saveVersion = 2

	resp, err := s.app.Test(authedRequest(t, http.MethodPost, "/api/vault", `{"encryptedData":"blob-A"}`, "u-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), f.vaults.savedVer)
}

func TestSaveVault_EmptyStringPayloadIsAccepted(t *testing.T) {
	s, f := newTestServer(t)
	f.vaults.saveVersion = 2

	resp, err := s.app.Test(authedRequest(t, http.MethodPost, "/api/vault", `{"encryptedData":"","version":1}`, "u-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", f.vaults.savedData)
}

func TestSaveVault_MissingPayload(t *testing.T) {
	s, _ := newTestServer(t)

	resp, err := s.app.Test(authedRequest(t, http.MethodPost, "/api/vault", `{"version":1}`, "u-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "encrypted data is required", body.Error)
}

func TestSaveVault_Conflict(t *testing.T) {
	s, f := newTestServer(t)
	f.vaults.saveErr = common.ErrVersionConflict

	resp, err := s.app.Test(authedRequest(t, http.MethodPost, "/api/vault", `{"encryptedData":"blob-A","version":1}`, "u-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body errorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "vault was modified elsewhere; reload and try again", body.Error)
}

func TestSaveVault_InvalidVersion(t *testing.T) {
	s, f := newTestServer(t)
	f.vaults.saveErr = common.ErrorValidation

	resp, err := s.app.Test(authedRequest(t, http.MethodPost, "/api/vault", `{"encryptedData":"blob-A","version":-1}`, "u-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "invalid vault version", body.Error)
}

func TestGetSettings_OK(t *testing.T) {
	s, f := newTestServer(t)
	f.settings.settings = &models.Settings{UserID: "u-1", Theme: "dark", AutoLock: 30}

	resp, err := s.app.Test(authedRequest(t, http.MethodGet, "/api/settings", "", "u-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body settingsResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "dark", body.Theme)
	assert.Equal(t, 30, body.AutoLock)
}

func TestHealth_OK(t *testing.T) {
	s, f := newTestServer(t)
	f.health.stats = &services.HealthStats{Users: 2, Vaults: 1}

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body healthResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, "Connected", body.Database)
	require.NotNil(t, body.Stats)
	assert.Equal(t, int64(2), body.Stats.Users)
	assert.Equal(t, int64(1), body.Stats.Vaults)
}

func TestHealth_Down(t *testing.T) {
	s, f := newTestServer(t)
	f.health.err = context.DeadlineExceeded

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body healthResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "Error", body.Status)
	assert.Equal(t, "Disconnected", body.Database)
	assert.Nil(t, body.Stats)
}
