package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/scolarite/storage/database"
)

var gooseRunFunc = database.RunMigration // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errors.New("migrations need a SQL database")
	}
	return gooseRunFunc(context.Background(), cli.db, args[0], args[1:]...)
}
