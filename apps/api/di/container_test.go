package di

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/madamaths/madamaths/apps/api/echo"
	"github.com/madamaths/madamaths/core"
	"github.com/madamaths/madamaths/core/account"
)

func TestNew(t *testing.T) {
	c := New(core.NewTestConfig)

	err := c.Invoke(func(db *sqlx.DB, svc *account.Service, server *echoapi.Server) {
		defer func() { _ = db.Close() }()
		assert.NotNil(t, server)

		// the container hands out a migrated database
		var roles int
		require.NoError(t, db.Get(&roles, `SELECT COUNT(*) FROM roles`))
		assert.Equal(t, 3, roles)
	})
	require.NoError(t, err)
}
