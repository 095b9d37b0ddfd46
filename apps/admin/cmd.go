package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/scolarite/core"
	"github.com/trezcool/scolarite/core/grade"
	"github.com/trezcool/scolarite/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	usrSvc     *user.Service
	gradeSvc   *grade.Service
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run goose migration commands (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  adduser -name NAME -matricule CODE [-admin] - create a user; the password is prompted")
	fmt.Fprintln(cli.out, "  resetpassword -matricule CODE - reset a user's password; the password is prompted")
	fmt.Fprintln(cli.out, "  addsubject -name NAME [-professor NAME] [-coefficient N] - create a subject")
	fmt.Fprintln(cli.out, "  subjects - list subjects")
	fmt.Fprintln(cli.out, "  addgrade -matricule CODE -subject ID -score X [-session LABEL] [-error NOTE] - record a grade")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := cli.newFlagSet("adduser")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserMatricule := addUserCmd.String("matricule", "", "The user's matricule. The password will be prompted next.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Create an administrator.")

	resetPasswordCmd := cli.newFlagSet("resetpassword")
	resetPasswordMatricule := resetPasswordCmd.String("matricule", "", "The user's matricule. The password will be prompted next.")

	addSubjectCmd := cli.newFlagSet("addsubject")
	addSubjectName := addSubjectCmd.String("name", "", "The subject's name.")
	addSubjectProf := addSubjectCmd.String("professor", "", "The professor teaching the subject.")
	addSubjectCoef := addSubjectCmd.Int("coefficient", 1, "The subject's weight in the average.")

	addGradeCmd := cli.newFlagSet("addgrade")
	addGradeMatricule := addGradeCmd.String("matricule", "", "The student's matricule.")
	addGradeSubject := addGradeCmd.Int("subject", 0, "The subject ID (see `subjects`).")
	addGradeScore := addGradeCmd.Float64("score", 0, "The score obtained.")
	addGradeSession := addGradeCmd.String("session", "", "The session (term) label.")
	addGradeError := addGradeCmd.String("error", "", "An error reported on this grade; flags it for review.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserMatricule == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, confirm, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(user.NewUser{
			Name:            *addUserName,
			Matricule:       *addUserMatricule,
			Password:        pwd,
			PasswordConfirm: confirm,
			IsAdmin:         *addUserAdmin,
		})

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordMatricule == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, confirm, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(user.ResetUserPassword{
			Matricule:       *resetPasswordMatricule,
			Password:        pwd,
			PasswordConfirm: confirm,
		})

	case "addsubject":
		if err := addSubjectCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addSubjectName == "" {
			addSubjectCmd.Usage()
			return errHelp
		}
		return cli.addSubject(grade.NewSubject{
			Name:        *addSubjectName,
			Professor:   *addSubjectProf,
			Coefficient: *addSubjectCoef,
		})

	case "subjects":
		return cli.listSubjects()

	case "addgrade":
		if err := addGradeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addGradeMatricule == "" || *addGradeSubject == 0 {
			addGradeCmd.Usage()
			return errHelp
		}
		return cli.addGrade(*addGradeMatricule, grade.NewGrade{
			SubjectID: *addGradeSubject,
			Score:     *addGradeScore,
			Session:   *addGradeSession,
			ErrorNote: *addGradeError,
		})

	default:
		cli.printUsage()
		return errHelp
	}
}

// promptPassword reads the password and its confirmation without echoing them.
func (cli *commandLine) promptPassword() (string, string, error) {
	read := func(prompt string) (string, error) {
		fmt.Fprint(cli.out, prompt)
		pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
		fmt.Fprintln(cli.out)
		return string(pwd), err
	}

	pwd, err := read("Enter password:")
	if err != nil || pwd == "" {
		return "", "", err
	}
	confirm, err := read("Confirm password:")
	if err != nil {
		return "", "", err
	}
	return pwd, confirm, nil
}

// describe flattens validation errors into one "field: message" line each.
func (cli *commandLine) describe(err error) error {
	switch errors.Cause(err).(type) {
	case validator.ValidationErrors, *core.ValidationError:
		fldErrs := core.TranslateErrors(err, cli.translator)
		lines := make([]string, 0, len(fldErrs))
		for _, fe := range fldErrs {
			if fe.Field == "" {
				lines = append(lines, fe.Error)
				continue
			}
			lines = append(lines, fe.Field+": "+fe.Error)
		}
		return errors.New(strings.Join(lines, "\n"))
	}
	return err
}
