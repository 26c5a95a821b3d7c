package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSchema(t *testing.T) {
	for _, ok := range []string{"tenant_1", "_x", "acme"} {
		assert.NoError(t, ValidSchema(ok), ok)
	}
	for _, bad := range []string{"", "Tenant", "1abc", `x"; DROP SCHEMA public; --`, "a-b"} {
		assert.ErrorIs(t, ValidSchema(bad), ErrInvalidSchema, bad)
	}
}

func TestWithTenant_NotInitialized(t *testing.T) {
	prev := DB
	DB = nil
	t.Cleanup(func() { DB = prev })

	assert.ErrorIs(t, WithTenant("acme", nil), ErrNotInitialized)
	assert.ErrorIs(t, CreateSchema("acme"), ErrNotInitialized)
}
