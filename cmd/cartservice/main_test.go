package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/cartservice/internal/config"
)

func runWithConfig(t *testing.T, args ...string) config.Config {
	t.Helper()

	var cfg config.Config
	called := false
	serve := func(c *cli.Context) error {
		called = true
		var err error
		cfg, err = loadConfig(c)
		return err
	}
	migrate := func(c *cli.Context) error {
		t.Fatal("migrate must not run")
		return nil
	}

	err := newApp(serve, migrate).Run(append([]string{"cartservice", "--database-url", "postgres://localhost/cart"}, args...))
	require.NoError(t, err)
	require.True(t, called, "serve action was not invoked")
	return cfg
}

func TestNewApp_ServeFlagsBeforeSubcommand(t *testing.T) {
	cfg := runWithConfig(t, "--port", "9000", "--cors-origins", "https://a.example,https://b.example", "--body-limit", "2048", "serve")

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, int64(2048), cfg.BodyLimit)
}

func TestNewApp_ServeFlagsOnDefaultAction(t *testing.T) {
	cfg := runWithConfig(t, "--port", "9001")

	assert.Equal(t, "9001", cfg.Port)
}

func TestNewApp_PortFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9002")

	cfg := runWithConfig(t, "serve")

	assert.Equal(t, "9002", cfg.Port)
}

func TestNewApp_InvalidPortFails(t *testing.T) {
	serve := func(c *cli.Context) error {
		_, err := loadConfig(c)
		return err
	}

	err := newApp(serve, serve).Run([]string{"cartservice", "--database-url", "postgres://localhost/cart", "--port", "http", "serve"})

	assert.Error(t, err)
}
