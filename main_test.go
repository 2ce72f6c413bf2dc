package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("STORAGE_DRIVER", "sqlite")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Contains(t, err.Error(), "unknown STORAGE_DRIVER")
}
