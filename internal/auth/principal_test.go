package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperror"
)

func TestRequire(t *testing.T) {
	admin := &Principal{UserID: 1, Username: "admin", Roles: []string{RoleClient, RoleAdmin}}
	client := &Principal{UserID: 2, Username: "maria", Roles: []string{RoleClient}}

	t.Run("anonymous caller", func(t *testing.T) {
		_, err := Require(context.Background(), RoleAdmin)
		assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
	})

	t.Run("missing role", func(t *testing.T) {
		_, err := Require(WithPrincipal(context.Background(), client), RoleAdmin)
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})

	t.Run("granted", func(t *testing.T) {
		p, err := Require(WithPrincipal(context.Background(), admin), RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, "admin", p.Username)
		assert.True(t, p.IsAdmin())
	})

	t.Run("any authenticated caller", func(t *testing.T) {
		p, err := Require(WithPrincipal(context.Background(), client))
		require.NoError(t, err)
		assert.False(t, p.IsAdmin())
	})
}
