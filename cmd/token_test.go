package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func init() {
	color.NoColor = true
}

func TestWriteEnvToken_PreservesOtherVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=4000\nGOOGLE_DRIVE_ACCESS_TOKEN=old\n"), 0o600))

	require.NoError(t, writeEnvToken(path, "ya29.new"))

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "ya29.new", env[AccessTokenEnv])
	assert.Equal(t, "4000", env["PORT"])
}

func TestWriteEnvToken_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	require.NoError(t, writeEnvToken(path, "ya29.fresh"))

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{AccessTokenEnv: "ya29.fresh"}, env)
}

func TestSetTokenCommand(t *testing.T) {
	got := setTokenCommand(3000, "ya29.abc")
	assert.Contains(t, got, "http://localhost:3000/set-token")
	assert.Contains(t, got, `{"accessToken":"ya29.abc"}`)
}

func TestReportToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	token := &oauth2.Token{AccessToken: "ya29.report", Expiry: time.Now().Add(time.Hour)}

	var buf bytes.Buffer
	require.NoError(t, reportToken(&buf, token, 3100, &tokenOptions{envFile: path, writeEnv: true}))

	out := buf.String()
	assert.Contains(t, out, "ya29.report")
	assert.Contains(t, out, "Expires:")
	assert.Contains(t, out, "localhost:3100")
	assert.Contains(t, out, "Saved: "+AccessTokenEnv)

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "ya29.report", env[AccessTokenEnv])
}

func TestReportToken_NoWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	var buf bytes.Buffer
	require.NoError(t, reportToken(&buf, &oauth2.Token{AccessToken: "t"}, 3000, &tokenOptions{envFile: path}))

	assert.NotContains(t, buf.String(), "Expires:")
	assert.NoFileExists(t, path)
}

func TestReportValidation(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, reportValidation(&buf, true))
	assert.Contains(t, buf.String(), "Token is valid")

	buf.Reset()
	assert.Error(t, reportValidation(&buf, false))
	assert.Contains(t, buf.String(), "invalid or expired")
}

func TestTokenRefresh_MissingCredentials(t *testing.T) {
	clearServeEnv(t)
	for _, key := range []string{"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REFRESH_TOKEN"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cmd := newTokenCmd()
	cmd.SetArgs([]string{"refresh", "--env-file", filepath.Join(t.TempDir(), "missing.env")})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_CLIENT_ID")
}

func TestTokenTest_NoToken(t *testing.T) {
	clearServeEnv(t)

	cmd := newTokenCmd()
	cmd.SetArgs([]string{"test", "--env-file", filepath.Join(t.TempDir(), "missing.env")})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), AccessTokenEnv)
}

func TestTokenGenerate_MissingKeyFile(t *testing.T) {
	clearServeEnv(t)

	cmd := newTokenCmd()
	cmd.SetArgs([]string{
		"generate",
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
		"--key-file", filepath.Join(t.TempDir(), "missing.json"),
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read service account key")
}
