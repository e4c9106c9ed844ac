package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword      // mockable
	gooseRunFunc     = database.RunMigrations // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sqlx.DB
	accSvc   *account.Service
	validate *validator.Validate
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser (--username USERNAME | --student-code CODE) --name NAME --role ROLE [--class ID] - create an account")
	fmt.Fprintln(cli.out, "  resetpassword --identifier USERNAME|CODE - reset an account's password")
	fmt.Fprintln(cli.out, "  setactive --identifier USERNAME|CODE [--active=false] - enable or disable an account")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...] - run a goose command (up, down, status, version, redo, reset, ...)")
}

func (cli *commandLine) newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse parses args into fs, turning a help request into errHelp.
func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "adduser":
		fs := cli.newFlagSet("adduser")
		uname := fs.String("username", "", "The login of a staff account.")
		code := fs.String("student-code", "", "The login of a student account.")
		name := fs.String("name", "", "The account's full name.")
		role := fs.String("role", "", "One of admin, teacher, student.")
		classID := fs.Int64("class", 0, "The student's class id.")
		if err := parse(fs, args[2:]); err != nil {
			return err
		}
		if (*uname == "" && *code == "") || *name == "" || *role == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			fs.Usage()
			return errHelp
		}
		return cli.addUser(account.NewAccount{
			Username:    *uname,
			StudentCode: *code,
			FullName:    *name,
			Role:        account.Role(*role),
			ClassID:     *classID,
			Password:    pwd,
		})

	case "resetpassword":
		fs := cli.newFlagSet("resetpassword")
		identifier := fs.String("identifier", "", "The account's username or student code. The password will be prompted next.")
		if err := parse(fs, args[2:]); err != nil {
			return err
		}
		if *identifier == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			fs.Usage()
			return errHelp
		}
		return cli.resetPassword(*identifier, pwd)

	case "setactive":
		fs := cli.newFlagSet("setactive")
		identifier := fs.String("identifier", "", "The account's username or student code.")
		active := fs.Bool("active", true, "Whether the account may log in.")
		if err := parse(fs, args[2:]); err != nil {
			return err
		}
		if *identifier == "" {
			fs.Usage()
			return errHelp
		}
		return cli.setActive(*identifier, *active)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	default:
		cli.printUsage()
		return errHelp
	}
}
