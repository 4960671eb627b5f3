package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	mu    sync.Mutex
	paths []string
	auth  []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.paths = append(b.paths, r.URL.Path)
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api:QC35j52Y/auth/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "Correct#1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"ERROR_CODE_ACCESS_DENIED","message":"Invalid Credentials."}`))
			return
		}
		_, _ = w.Write([]byte(`{"authToken":"cli-token","user_id":12}`))
	case "/api:QC35j52Y/auth/me":
		_, _ = w.Write([]byte(`{"id":12,"email":"dr@orl.fr","name":"Dr House","specialty":"ORL","role":"user","is_active":true}`))
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func setupEnv(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("XANO_BASE_URL", srv.URL)
	t.Setenv("XANO_AUTH_GROUP", "api:QC35j52Y")
	t.Setenv("TOKEN_STORE", "file")
	t.Setenv("TOKEN_FILE_PATH", filepath.Join(dir, "credentials.json"))
	t.Setenv("LOG_FILE_PATH", filepath.Join(dir, "orl.log"))
	t.Setenv("NATS_URL", "")
	t.Setenv("OTEL_ENABLED", "false")
	return b
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	b := setupEnv(t)

	out, err := run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")

	out, err = run(t, "", "login", "--email", "dr@orl.fr", "--password", "Correct#1")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in (user 12)")

	out, err = run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in.")

	out, err = run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Dr House <dr@orl.fr>")
	assert.Equal(t, "Bearer cli-token", b.auth[len(b.auth)-1])

	out, err = run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")

	out, err = run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
}

func TestLoginPromptsForMissingValues(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "dr@orl.fr\nCorrect#1\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Signed in")
}

func TestLoginWrongPassword(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "", "login", "-e", "dr@orl.fr", "-p", "Wrong#1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
	assert.NotContains(t, out, "Session expired")
}

func TestRegisterValidatesLocally(t *testing.T) {
	b := setupEnv(t)

	_, err := run(t, "", "register", "-n", "Dr House", "-e", "dr@orl.fr", "-p", "weak", "--rpps", "123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
	assert.Empty(t, b.paths, "nothing is sent when the form is invalid")
}

func TestWhoamiWithoutSession(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}
