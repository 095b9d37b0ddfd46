package main

import (
	"context"
	"fmt"

	"github.com/trezcool/scolarite/core/user"
)

func (cli *commandLine) addUser(nu user.NewUser) error {
	ctx := context.Background()
	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return cli.describe(err)
	}
	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return err
	}
	role := "student"
	if usr.IsAdmin {
		role = "administrator"
	}
	fmt.Fprintf(cli.out, "%s %s (%s) created with ID %d\n", role, usr.Name, usr.Matricule, usr.ID)
	return nil
}
