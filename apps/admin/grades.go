package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/trezcool/scolarite/core/grade"
)

func (cli *commandLine) addSubject(ns grade.NewSubject) error {
	sub, err := cli.gradeSvc.CreateSubject(context.Background(), ns)
	if err != nil {
		return cli.describe(err)
	}
	fmt.Fprintf(cli.out, "subject %s created with ID %d\n", sub.Name, sub.ID)
	return nil
}

func (cli *commandLine) listSubjects() error {
	subjects, err := cli.gradeSvc.Subjects(context.Background())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPROFESSOR\tCOEFFICIENT")
	for _, sub := range subjects {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", sub.ID, sub.Name, sub.Professor, sub.Coefficient)
	}
	return w.Flush()
}

func (cli *commandLine) addGrade(matricule string, ng grade.NewGrade) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByMatricule(ctx, matricule)
	if err != nil {
		return err
	}
	ng.UserID = usr.ID

	grd, err := cli.gradeSvc.CreateGrade(ctx, ng)
	if err != nil {
		return cli.describe(err)
	}
	fmt.Fprintf(cli.out, "grade %.2f in %s recorded for %s (ID %d)\n", grd.Score, grd.Subject.Name, grd.Student.Matricule, grd.ID)
	if grd.IsFlagged() {
		fmt.Fprintln(cli.out, "grade flagged for review")
	}
	return nil
}
