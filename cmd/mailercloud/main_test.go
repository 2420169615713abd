package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"L1","name":"Leads"}]}`))
	}))
	t.Cleanup(api.Close)

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("MAILERCLOUD_STORE_DRIVER", "sqlite")
	t.Setenv("MAILERCLOUD_STORE_DSN", filepath.Join(dir, "options.db"))
	t.Setenv("MAILERCLOUD_MAILERCLOUD_BASE_URL", api.URL+"/v1")

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "sqlite store is up to date\n", out)

	_, err = run(t, "auth", "--apikey", "bad-key", "--label", "Main")
	assert.EqualError(t, err, "API authorization failed. Please make sure the API key is correct or contact support.")

	out, err = run(t, "auth", "--apikey", "good-key", "--label", "Main")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = run(t, "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Main")

	out, err = run(t, "lists", id)
	require.NoError(t, err)
	assert.Contains(t, out, "L1")
	assert.Contains(t, out, "Leads")

	_, err = run(t, "lists", "missing")
	assert.Error(t, err)

	out, err = run(t, "fields")
	require.NoError(t, err)
	assert.Contains(t, out, `"tag": "first_name"`)

	out, err = run(t, "accounts", "remove", id)
	require.NoError(t, err)
	assert.Equal(t, "removed "+id+"\n", out)

	_, err = run(t, "accounts", "remove", id)
	assert.Error(t, err)
}

func TestCommands_badConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MAILERCLOUD_STORE_DRIVER", "mysql")

	_, err := run(t, "fields")
	assert.ErrorContains(t, err, "unknown driver")
}
