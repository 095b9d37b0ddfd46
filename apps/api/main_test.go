package main

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/user"
	"github.com/trezcool/scolarite/storage/database"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func testConfig(engine, path string) *core.Config {
	conf := &core.Config{}
	conf.Database.Engine = engine
	conf.Database.Path = path
	conf.Admin.Matricule = "adm01"
	conf.Admin.Name = "Direction"
	conf.Admin.Password = "admin123"
	return conf
}

func Test_bootstrap(t *testing.T) {
	ctx := context.Background()
	database.SetMigrationLogger(log.New(io.Discard, "", 0))

	tests := []struct {
		name string
		conf *core.Config
	}{
		{name: "sqlite", conf: testConfig(database.EngineSQLite, filepath.Join(t.TempDir(), "ecole.db"))},
		{name: "memory", conf: testConfig(database.EngineMemory, "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := openStore(ctx, tt.conf)
			require.NoError(t, err)
			defer func() { _ = st.close() }()
			svc := user.NewService(st.users)

			// twice: idempotent
			require.NoError(t, seedAdmin(ctx, tt.conf, svc, nopLogger{}))
			require.NoError(t, seedAdmin(ctx, tt.conf, svc, nopLogger{}))

			isAdmin := true
			admins, err := st.users.QueryUsers(ctx, user.QueryFilter{IsAdmin: &isAdmin})
			require.NoError(t, err)
			require.Len(t, admins, 1)
			assert.Equal(t, "ADM01", admins[0].Matricule)
			assert.Equal(t, "Direction", admins[0].Name)
			assert.NoError(t, admins[0].CheckPassword("admin123"))

			_, err = svc.Authenticate(ctx, "ADM01", "admin123", true)
			assert.NoError(t, err)
		})
	}

	t.Run("sqlite survives a restart", func(t *testing.T) {
		conf := testConfig(database.EngineSQLite, filepath.Join(t.TempDir(), "ecole.db"))
		for i := 0; i < 2; i++ {
			st, err := openStore(ctx, conf)
			require.NoError(t, err)
			require.NoError(t, seedAdmin(ctx, conf, user.NewService(st.users), nopLogger{}))
			require.NoError(t, st.close())
		}

		st, err := openStore(ctx, conf)
		require.NoError(t, err)
		defer func() { _ = st.close() }()
		users, err := st.users.QueryUsers(ctx, user.QueryFilter{})
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}
