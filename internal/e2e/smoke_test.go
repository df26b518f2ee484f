package e2e

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	server := newPlatformServer(t)

	env := []string{
		"GUESTPASS_PLATFORM_API_KEY=smoke-test-key",
		"GUESTPASS_PLATFORM_BASE_URL=" + server.URL + "/api",
		"GUESTPASS_PROVISION_SETTLE_DELAY=1ms",
		"GUESTPASS_RETRY_BASE_DELAY=1ms",
	}

	stdout, stderr, err := runGuestpass(t, binaryPath, home, env, "provision", "--name", "smoke", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "\"workspaceSlug\": \"guest-smoke\"")

	stdout, stderr, err = runGuestpass(t, binaryPath, home, env, "sessions", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "\"Count\": 1")

	stdout, stderr, err = runGuestpass(t, binaryPath, home, env, "cleanup", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "\"Deleted\": 1")

	stdout, stderr, err = runGuestpass(t, binaryPath, home, env, "sessions", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "\"Count\": 0")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "guestpass-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/guestpass")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build guestpass binary: %s", string(output))
	return binaryPath
}

func runGuestpass(t *testing.T, binaryPath, home string, env []string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(append(os.Environ(), "HOME="+home), env...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func newPlatformServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/admin/is-multi-user-mode", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"isMultiUser": true}`))
	})
	mux.HandleFunc("POST /api/v1/admin/users/new", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"user": {"id": 1}}`))
	})
	mux.HandleFunc("POST /api/v1/workspace/new", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"workspace": {"slug": "guest-smoke", "id": 1}}`))
	})
	mux.HandleFunc("GET /api/v1/documents/folder/custom-documents", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"documents": []}`))
	})
	mux.HandleFunc("POST /api/v1/admin/workspaces/{slug}/manage-users", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /api/v1/users/{id}/issue-auth-token", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token": "tok", "loginPath": "/sso/simple?token=tok"}`))
	})
	mux.HandleFunc("DELETE /api/v1/admin/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("DELETE /api/v1/workspace/{slug}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}
