package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ENV", "")
		conf, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "DEV", conf.Env)
		assert.Equal(t, 5000, conf.Server.Port)
		assert.Equal(t, "0.0.0.0:5000", conf.Address())
		assert.Equal(t, 10*time.Second, conf.Server.ShutdownTimeout)
		assert.Equal(t, "sqlite3", conf.Database.Engine)
		assert.Equal(t, filepath.Join(wd, "ecole.db"), conf.Database.Path)
		assert.Equal(t, "ADM01", conf.Admin.Matricule)
		assert.Equal(t, "Direction", conf.Admin.Name)
		assert.Equal(t, "admin123", conf.Admin.Password)
		assert.False(t, conf.TestMode)
		assert.False(t, conf.Server.DisableCSRF)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("PORT", "8080")
		t.Setenv("SCOLARITE_DATABASE_ENGINE", "postgres")
		t.Setenv("SCOLARITE_DATABASE_PATH", "/var/lib/scolarite/ecole.db")
		t.Setenv("SCOLARITE_ADMIN_PASSWORD", "s3cret-admin")
		t.Setenv("SCOLARITE_SERVER_SHUTDOWNTIMEOUT", "3s")
		t.Setenv("SCOLARITE_SERVER_DISABLECSRF", "true")

		conf, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "TEST", conf.Env)
		assert.True(t, conf.TestMode)
		assert.Equal(t, 8080, conf.Server.Port)
		assert.Equal(t, "postgres", conf.Database.Engine)
		assert.Equal(t, "/var/lib/scolarite/ecole.db", conf.Database.Path)
		assert.Equal(t, "s3cret-admin", conf.Admin.Password)
		assert.Equal(t, 3*time.Second, conf.Server.ShutdownTimeout)
		assert.True(t, conf.Server.DisableCSRF)
	})

	t.Run("prefixed port wins", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("SCOLARITE_SERVER_PORT", "9090")
		conf, err := NewConfig()
		require.NoError(t, err)
		assert.Equal(t, 9090, conf.Server.Port)
	})

	t.Run("invalid port", func(t *testing.T) {
		t.Setenv("PORT", "-1")
		_, err := NewConfig()
		assert.Error(t, err)
	})
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Bob", CleanString("  Bob\t"))
	assert.Equal(t, "MAT-001", CleanString(" mat-001 ", true))
}
