package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	validate      *validator.Validate
	translator    ut.Translator
	purgeSessions func(ctx context.Context) (int, error)
	out           io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  checkpassword [-name NAME] [-email EMAIL] - check a password against the password policy")
	_, _ = fmt.Fprintln(cli.out, "  purgesessions -yes - log every user out")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	checkPasswordCmd := flag.NewFlagSet("checkpassword", flag.ContinueOnError)
	checkPasswordCmd.SetOutput(cli.out)
	checkPasswordName := checkPasswordCmd.String("name", "", "Name of the account owner. The password must not resemble it.")
	checkPasswordEmail := checkPasswordCmd.String("email", "", "Email of the account owner. The password must not resemble it.")

	purgeSessionsCmd := flag.NewFlagSet("purgesessions", flag.ContinueOnError)
	purgeSessionsCmd.SetOutput(cli.out)
	purgeSessionsYes := purgeSessionsCmd.Bool("yes", false, "Confirm that every session must be destroyed.")

	switch args[1] {
	case "checkpassword":
		if err := checkPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		_, _ = fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		_, _ = fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			checkPasswordCmd.Usage()
			return errHelp
		}
		return cli.checkPassword(strings.TrimSpace(*checkPasswordName), strings.TrimSpace(*checkPasswordEmail), string(pwd))
	case "purgesessions":
		if err := purgeSessionsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if !*purgeSessionsYes {
			purgeSessionsCmd.Usage()
			return errHelp
		}
		return cli.purge(context.Background())
	default:
		cli.printUsage()
		return errHelp
	}
}
