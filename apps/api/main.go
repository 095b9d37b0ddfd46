package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scolarite/apps/api/echo"
	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/grade"
	"github.com/trezcool/scolarite/core/user"
	"github.com/trezcool/scolarite/services/logger"
	"github.com/trezcool/scolarite/storage/database"
	"github.com/trezcool/scolarite/storage/database/inmem"
	"github.com/trezcool/scolarite/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	database.SetMigrationLogger(log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds))

	ctx := context.Background()

	// set up DB
	st, err := openStore(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = st.close(); err != nil {
			logger.Error("failed to close database", err)
		}
	}()

	// set up services
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	usrSvc := user.NewService(st.users)
	gradeSvc := grade.NewService(st.grades, validate)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	if err = seedAdmin(ctx, conf, usrSvc, logger); err != nil {
		logger.Fatal(fmt.Sprintf("seeding admin: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	if conf.Server.DebugHost != "" {
		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()
	}

	// =========================================================================
	// Start API Service

	server, err := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:     conf,
			Logger:   logger,
			UserSvc:  usrSvc,
			GradeSvc: gradeSvc,
			Validate: validate,
		},
	)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up server: %v", err), err)
	}

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		sctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

type store struct {
	users  user.Repository
	grades grade.Repository
	close  func() error
}

// openStore opens and migrates the configured database.
func openStore(ctx context.Context, conf *core.Config) (store, error) {
	if conf.Database.Engine == database.EngineMemory {
		db := inmemdb.Open()
		return store{
			users:  inmemdb.NewUserRepository(db),
			grades: inmemdb.NewGradeRepository(db),
			close:  func() error { return nil },
		}, nil
	}

	db, err := database.Open(conf)
	if err != nil {
		return store{}, err
	}
	if err = database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return store{}, err
	}
	return store{
		users:  sqlxrepos.NewUserRepository(db),
		grades: sqlxrepos.NewGradeRepository(db),
		close:  db.Close,
	}, nil
}

// seedAdmin creates the configured administrator unless its matricule is taken.
func seedAdmin(ctx context.Context, conf *core.Config, svc *user.Service, logger core.Logger) error {
	adm, created, err := svc.EnsureAdmin(ctx, conf.Admin.Matricule, conf.Admin.Name, conf.Admin.Password)
	if err != nil {
		return errors.Wrap(err, "ensuring admin")
	}
	if created {
		logger.Info(fmt.Sprintf("administrator %s created", adm.Matricule))
	}
	return nil
}
