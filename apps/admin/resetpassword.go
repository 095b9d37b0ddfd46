package main

import (
	"context"
	"fmt"

	"github.com/trezcool/scolarite/core/user"
)

func (cli *commandLine) resetPassword(rp user.ResetUserPassword) error {
	if err := rp.Validate(cli.validate); err != nil {
		return cli.describe(err)
	}
	if err := cli.usrSvc.ResetPassword(context.Background(), rp); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password of %s updated\n", rp.Matricule)
	return nil
}
