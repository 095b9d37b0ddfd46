package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/grade"
	"github.com/trezcool/scolarite/core/user"
	"github.com/trezcool/scolarite/services/logger"
	"github.com/trezcool/scolarite/storage/database"
	"github.com/trezcool/scolarite/storage/database/sqlx"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds), conf)
	logger.Enable(!conf.Debug)
	database.SetMigrationLogger(log.New(os.Stdout, "DB : ", log.LstdFlags))

	if conf.Database.Engine == database.EngineMemory {
		logger.Fatal("the admin CLI needs a SQL database; set SCOLARITE_DATABASE_ENGINE")
	}

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:         db,
		usrSvc:     user.NewService(sqlxrepos.NewUserRepository(db)),
		gradeSvc:   grade.NewService(sqlxrepos.NewGradeRepository(db), validate),
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err))
		}
		os.Exit(1)
	}
}
