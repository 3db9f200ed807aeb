package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/cartservice/internal/config"
)

func TestResolvePort(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "absent uses default", value: "", want: "3003"},
		{name: "whitespace uses default", value: "   ", want: "3003"},
		{name: "explicit port", value: "8080", want: "8080"},
		{name: "leading zeros normalised", value: "0443", want: "443"},
		{name: "ephemeral", value: "0", want: "0"},
		{name: "max port", value: "65535", want: "65535"},
		{name: "not a number", value: "http", wantErr: true},
		{name: "negative", value: "-1", wantErr: true},
		{name: "too large", value: "65536", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := config.ResolvePort(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	err := config.LoadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}

func TestLoadEnvFile_SetsUnsetVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CARTSERVICE_TEST_A=from-file\nCARTSERVICE_TEST_B=from-file\n"), 0o600))

	t.Setenv("CARTSERVICE_TEST_B", "from-env")
	os.Unsetenv("CARTSERVICE_TEST_A")
	t.Cleanup(func() { os.Unsetenv("CARTSERVICE_TEST_A") })

	require.NoError(t, config.LoadEnvFile(path))

	assert.Equal(t, "from-file", os.Getenv("CARTSERVICE_TEST_A"))
	assert.Equal(t, "from-env", os.Getenv("CARTSERVICE_TEST_B"), "existing variables must win")
}

func TestLoadEnvFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CARTSERVICE_TEST_C='unterminated\n"), 0o600))

	assert.Error(t, config.LoadEnvFile(path))
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, config.ParseOrigins(""))
	assert.Equal(t, []string{"*"}, config.ParseOrigins(" , "))
	assert.Equal(t,
		[]string{"https://a.example", "https://b.example"},
		config.ParseOrigins("https://a.example, https://b.example"),
	)
}

func TestConfigValidate(t *testing.T) {
	cfg := config.Config{DatabaseURL: "postgres://localhost/cart", BodyLimit: config.DefaultBodyLimit}
	assert.NoError(t, cfg.Validate())

	cfg.DatabaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://localhost/cart"
	cfg.BodyLimit = 0
	assert.Error(t, cfg.Validate())
}
